package geo

import (
	"math"
	"testing"
)

func TestDistanceCoincidentPoints(t *testing.T) {
	cases := [][2]float64{
		{27.7172, 85.3240}, // Kathmandu
		{0, 0},
		{-90, 0},
		{90, 180},
	}
	for _, p := range cases {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Distance of point to itself = %v, want 0", d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := [2]float64{27.7172, 85.3240}
	b := [2]float64{27.6176, 85.5392}

	ab := Distance(a[0], a[1], b[0], b[1])
	ba := Distance(b[0], b[1], a[0], a[1])
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKathmanduToBhaktapur(t *testing.T) {
	// Regression value computed with haversine, r=6371.
	d := Distance(27.7172, 85.3240, 27.6176, 85.5392)
	if d < 23 || d > 24 {
		t.Errorf("Distance = %v km, want between 23 and 24", d)
	}
}

func TestDistanceAntipodal(t *testing.T) {
	d := Distance(0, 0, 0, 180)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Fatalf("antipodal distance not finite: %v", d)
	}
	// Half the circumference of a 6371 km sphere.
	want := math.Pi * 6371
	if math.Abs(d-want) > 1 {
		t.Errorf("antipodal distance = %v, want ~%v", d, want)
	}
}

func TestETAMinutes(t *testing.T) {
	cases := []struct {
		distanceKM  float64
		avgSpeedKMH float64
		want        int
	}{
		{0, 25.0, 0},
		{-5, 25.0, 0},
		{25.0, 25.0, 60},
		{12.5, 25.0, 30},
		{1.0, 25.0, 2}, // 2.4 minutes, floored
	}
	for _, c := range cases {
		if got := ETAMinutes(c.distanceKM, c.avgSpeedKMH); got != c.want {
			t.Errorf("ETAMinutes(%v, %v) = %d, want %d", c.distanceKM, c.avgSpeedKMH, got, c.want)
		}
	}
}
