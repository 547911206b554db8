// Package geo provides flat-Earth and great-circle geometry for the
// kinematics core: distance, bearing, heading normalization, and position
// advance. All ranges the core operates in are under ~100 NM, so the
// flat-Earth approximation (midpoint-latitude cosine correction) is the
// one used by Kinematics; Haversine is provided for completeness and for
// callers outside the core's normal operating envelope.
package geo

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	NMPerDegreeLat = 60.0
	EarthRadiusNM  = 3440.065
	FtPerNM        = 6076.12
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Abs returns the absolute value of x.
func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts x to the closed range [low, high].
func Clamp[T constraints.Ordered](x, low, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Sign returns 1 if v > 0, -1 if v < 0, or 0 if v == 0.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// FlatEarthDistanceNM computes the distance between a and b using a
// midpoint-latitude cosine correction, accurate for ranges under ~100 NM.
func FlatEarthDistanceNM(a, b Point) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	midLat := (a.Lat + b.Lat) / 2
	cosLat := math.Cos(Radians(midLat))

	x := dLon * NMPerDegreeLat * cosLat
	y := dLat * NMPerDegreeLat
	return math.Sqrt(x*x + y*y)
}

// GreatCircleDistanceNM computes the Haversine great-circle distance
// between a and b. Provided for completeness; the core uses
// FlatEarthDistanceNM for all operational ranges.
func GreatCircleDistanceNM(a, b Point) float64 {
	lat1, lon1 := Radians(a.Lat), Radians(a.Lon)
	lat2, lon2 := Radians(b.Lat), Radians(b.Lon)
	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusNM * c
}

// AdvancePosition returns the point reached from p after travelling at
// speedKts on heading headingDeg (0=N, 90=E) for dt seconds. Zero speed
// returns p unchanged.
func AdvancePosition(p Point, headingDeg, speedKts, dt float64) Point {
	distanceNM := (speedKts / 3600.0) * dt
	h := Radians(headingDeg)

	deltaNorthNM := distanceNM * math.Cos(h)
	deltaEastNM := distanceNM * math.Sin(h)

	deltaLat := deltaNorthNM / NMPerDegreeLat
	cosLat := math.Cos(Radians(p.Lat))
	// Guard against the cosine collapsing near the poles; the core never
	// operates there, but a zero divisor must not produce Inf/NaN state.
	if Abs(cosLat) < 1e-9 {
		cosLat = Sign(cosLat) * 1e-9
		if cosLat == 0 {
			cosLat = 1e-9
		}
	}
	deltaLon := deltaEastNM / (NMPerDegreeLat * cosLat)

	return Point{Lat: p.Lat + deltaLat, Lon: p.Lon + deltaLon}
}

// BearingDeg returns the initial bearing from a to b using the standard
// spherical bearing formula, normalized to [0, 360).
func BearingDeg(a, b Point) float64 {
	lat1, lat2 := Radians(a.Lat), Radians(b.Lat)
	dLon := Radians(b.Lon - a.Lon)

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeHeading(Degrees(math.Atan2(x, y)))
}

// NormalizeHeading wraps h into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the signed shortest-path difference from
// current to target, in (-180, +180]. Positive is a right (clockwise) turn.
func HeadingDifference(current, target float64) float64 {
	d := math.Mod(target-current, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(r float64) float64 { return r * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(d float64) float64 { return d / 180 * math.Pi }
