// Package geo provides great-circle distance and arrival estimation.
package geo

import "math"

const earthRadiusKM = 6371.0

// Distance computes the haversine great-circle distance in kilometers
// between two points given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return c * earthRadiusKM
}

// ETAMinutes estimates arrival time in whole minutes for a distance at
// the given average speed. avgSpeedKMH must be > 0; it is a deployment
// assumption (Kathmandu traffic averages ~25 km/h), not a per-request input.
func ETAMinutes(distanceKM, avgSpeedKMH float64) int {
	if distanceKM <= 0 {
		return 0
	}
	return int(distanceKM / avgSpeedKMH * 60)
}
