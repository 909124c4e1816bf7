package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBaseFare(t *testing.T) {
	calc := NewTableCalculator()

	// new york sedan: 3.50 base + 1.10/km
	amount := calc.Compute(TripParams{
		DistanceKM:    20,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "new york",
	})

	assert.InDelta(t, 25.50, amount, 0.001)
}

func TestComputeScalesWithSeats(t *testing.T) {
	calc := NewTableCalculator()

	single := calc.Compute(TripParams{
		DistanceKM:    20,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "new york",
	})
	triple := calc.Compute(TripParams{
		DistanceKM:    20,
		NumberOfSeats: 3,
		VehicleType:   "sedan",
		City:          "new york",
	})

	assert.InDelta(t, single*3, triple, 0.001)
}

func TestComputeMinimumFareClamp(t *testing.T) {
	calc := NewTableCalculator()

	// 1 km trip lands under the 6.00 minimum
	amount := calc.Compute(TripParams{
		DistanceKM:    1,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "new york",
	})

	assert.InDelta(t, 6.00, amount, 0.001)
}

func TestComputePeakAndNightMultipliers(t *testing.T) {
	calc := NewTableCalculator()

	base := TripParams{
		DistanceKM:    20,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "new york",
	}

	plain := calc.Compute(base)

	peak := base
	peak.IsPeakHour = true
	assert.InDelta(t, plain*1.40, calc.Compute(peak), 0.01)

	night := base
	night.IsNightTime = true
	assert.InDelta(t, plain*1.20, calc.Compute(night), 0.01)
}

func TestComputeExtras(t *testing.T) {
	calc := NewTableCalculator()

	amount := calc.Compute(TripParams{
		DistanceKM:     20,
		NumberOfSeats:  1,
		VehicleType:    "sedan",
		City:           "new york",
		TollCharges:    4.50,
		ParkingCharges: 2.00,
		WaitingMinutes: 10, // 0.35/min in new york
	})

	assert.InDelta(t, 25.50+4.50+2.00+3.50, amount, 0.001)
}

func TestComputeFallbackTariff(t *testing.T) {
	calc := NewTableCalculator()

	amount := calc.Compute(TripParams{
		DistanceKM:    20,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "nowhere",
	})

	// fallback: 2.50 base + 0.85/km
	assert.InDelta(t, 19.50, amount, 0.001)
}

func TestComputeZeroSeatsTreatedAsOne(t *testing.T) {
	calc := NewTableCalculator()

	zero := calc.Compute(TripParams{DistanceKM: 20, NumberOfSeats: 0, City: "nowhere"})
	one := calc.Compute(TripParams{DistanceKM: 20, NumberOfSeats: 1, City: "nowhere"})

	assert.Equal(t, one, zero)
}

func TestWithTariffOverride(t *testing.T) {
	calc := NewTableCalculator().WithTariff("austin", "sedan", Tariff{
		BaseFare:    1.00,
		PricePerKM:  0.50,
		MinimumFare: 2.00,
	})

	amount := calc.Compute(TripParams{
		DistanceKM:    10,
		NumberOfSeats: 1,
		VehicleType:   "sedan",
		City:          "Austin",
	})

	assert.InDelta(t, 6.00, amount, 0.001)
}
