package maps

import (
	"context"
	"math"
)

const earthRadiusKM = 6371.0

// HaversineProvider is the fallback when no Maps API key is configured.
// Great-circle distance understates road distance.
type HaversineProvider struct{}

func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{}
}

func (h *HaversineProvider) RouteDistanceKM(ctx context.Context, origin, destination LatLng) (float64, error) {
	lat1 := origin.Latitude * math.Pi / 180
	lon1 := origin.Longitude * math.Pi / 180
	lat2 := destination.Latitude * math.Pi / 180
	lon2 := destination.Longitude * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c, nil
}
