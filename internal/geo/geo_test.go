package geo

import (
	"math"
	"testing"

	"github.com/kidspark/kidspark-engine/internal/model"
)

func TestDistanceKmZero(t *testing.T) {
	p := model.LatLng{Lat: 52.52, Lng: 13.405}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Berlin -> Munich is roughly 504 km great-circle.
	berlin := model.LatLng{Lat: 52.5200, Lng: 13.4050}
	munich := model.LatLng{Lat: 48.1351, Lng: 11.5820}
	d := DistanceKm(berlin, munich)
	if math.Abs(d-504) > 5 {
		t.Fatalf("Berlin-Munich = %v km, want ~504", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := model.LatLng{Lat: 40.7128, Lng: -74.0060}
	b := model.LatLng{Lat: 34.0522, Lng: -118.2437}
	if d1, d2 := DistanceKm(a, b), DistanceKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric distance: %v vs %v", d1, d2)
	}
}
