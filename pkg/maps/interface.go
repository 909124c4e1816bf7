package maps

import "context"

// Provider resolves driving distance for a route. The booking engine only
// needs the kilometre figure it feeds to the fare calculator.
type Provider interface {
	RouteDistanceKM(ctx context.Context, origin, destination LatLng) (float64, error)
}

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
