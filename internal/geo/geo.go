// Package geo provides great-circle distance between coordinate pairs.
package geo

import (
	"math"

	"github.com/kidspark/kidspark-engine/internal/model"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance between a and b
// in kilometers.
func DistanceKm(a, b model.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
