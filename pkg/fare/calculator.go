package fare

import (
	"strings"
)

// TripParams is everything the marketplace core knows about a trip when it
// asks for a price. The tariff internals stay on this side of the fence.
type TripParams struct {
	DistanceKM     float64 `json:"distance_km"`
	NumberOfSeats  int     `json:"number_of_seats"`
	VehicleType    string  `json:"vehicle_type"`
	City           string  `json:"city"`
	IsPeakHour     bool    `json:"is_peak_hour"`
	IsNightTime    bool    `json:"is_night_time"`
	TollCharges    float64 `json:"toll_charges,omitempty"`
	ParkingCharges float64 `json:"parking_charges,omitempty"`
	WaitingMinutes int     `json:"waiting_minutes,omitempty"`
}

// Calculator is a pure pricing function: no I/O, deterministic for a
// given params value.
type Calculator interface {
	Compute(params TripParams) float64
}

type Tariff struct {
	BaseFare          float64
	PricePerKM        float64
	MinimumFare       float64
	PeakMultiplier    float64
	NightMultiplier   float64
	WaitingRatePerMin float64
}

// TableCalculator prices trips from a per-city, per-vehicle tariff table
// with a default tariff for unknown markets.
type TableCalculator struct {
	tariffs  map[string]Tariff
	fallback Tariff
}

func NewTableCalculator() *TableCalculator {
	fallback := Tariff{
		BaseFare:          2.50,
		PricePerKM:        0.85,
		MinimumFare:       4.00,
		PeakMultiplier:    1.25,
		NightMultiplier:   1.15,
		WaitingRatePerMin: 0.20,
	}

	return &TableCalculator{
		fallback: fallback,
		tariffs: map[string]Tariff{
			tariffKey("new york", "sedan"): {
				BaseFare:          3.50,
				PricePerKM:        1.10,
				MinimumFare:       6.00,
				PeakMultiplier:    1.40,
				NightMultiplier:   1.20,
				WaitingRatePerMin: 0.35,
			},
			tariffKey("new york", "suv"): {
				BaseFare:          5.00,
				PricePerKM:        1.45,
				MinimumFare:       8.00,
				PeakMultiplier:    1.40,
				NightMultiplier:   1.20,
				WaitingRatePerMin: 0.45,
			},
			tariffKey("san francisco", "sedan"): {
				BaseFare:          3.00,
				PricePerKM:        1.00,
				MinimumFare:       5.50,
				PeakMultiplier:    1.35,
				NightMultiplier:   1.15,
				WaitingRatePerMin: 0.30,
			},
		},
	}
}

// WithTariff overrides or adds a market tariff; used by tests and market
// rollouts.
func (c *TableCalculator) WithTariff(city, vehicleType string, tariff Tariff) *TableCalculator {
	c.tariffs[tariffKey(city, vehicleType)] = tariff
	return c
}

func (c *TableCalculator) Compute(params TripParams) float64 {
	tariff, ok := c.tariffs[tariffKey(params.City, params.VehicleType)]
	if !ok {
		tariff = c.fallback
	}

	seats := params.NumberOfSeats
	if seats < 1 {
		seats = 1
	}

	perSeat := tariff.BaseFare + tariff.PricePerKM*params.DistanceKM
	if perSeat < tariff.MinimumFare {
		perSeat = tariff.MinimumFare
	}

	amount := perSeat * float64(seats)

	if params.IsPeakHour {
		amount *= tariff.PeakMultiplier
	}
	if params.IsNightTime {
		amount *= tariff.NightMultiplier
	}

	amount += params.TollCharges
	amount += params.ParkingCharges
	amount += float64(params.WaitingMinutes) * tariff.WaitingRatePerMin

	// Round to cents.
	return float64(int(amount*100+0.5)) / 100
}

func tariffKey(city, vehicleType string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "|" + strings.ToLower(strings.TrimSpace(vehicleType))
}
