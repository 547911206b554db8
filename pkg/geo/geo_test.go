package geo

import (
	"math"
	"testing"
)

func TestAdvancePositionZeroSpeed(t *testing.T) {
	p := Point{Lat: 43.5, Lon: -79.5}
	got := AdvancePosition(p, 90, 0, 1)
	if got != p {
		t.Errorf("zero speed should not move the aircraft: got %+v, want %+v", got, p)
	}
}

func TestHeadingDifferenceRoundTrip(t *testing.T) {
	for d := -179.0; d <= 180.0; d += 17 {
		h := 123.0
		target := NormalizeHeading(h + d)
		got := HeadingDifference(h, target)
		if math.Abs(got-d) > 1e-9 {
			t.Errorf("HeadingDifference(%v, %v) = %v, want %v", h, target, got, d)
		}
	}
}

func TestNormalizeHeadingWraps(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {-10, 350}, {720 + 5, 5}, {-370, 350},
	}
	for _, c := range cases {
		if got := NormalizeHeading(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFlatEarthDistanceSymmetric(t *testing.T) {
	a := Point{Lat: 43.6777, Lon: -79.6248}
	b := Point{Lat: 44.0, Lon: -79.0}
	if FlatEarthDistanceNM(a, b) != FlatEarthDistanceNM(b, a) {
		t.Errorf("distance should be symmetric")
	}
}

func TestBearingNormalized(t *testing.T) {
	a := Point{Lat: 43.6777, Lon: -79.6248}
	b := Point{Lat: 44.5, Lon: -79.6248}
	brg := BearingDeg(a, b)
	if brg < 0 || brg >= 360 {
		t.Errorf("bearing %v not normalized to [0,360)", brg)
	}
	// Due-north target should produce a bearing of ~0.
	if math.Abs(brg) > 0.01 {
		t.Errorf("expected ~0 bearing heading due north, got %v", brg)
	}
}

func TestAdvancePositionHeadingConvention(t *testing.T) {
	p := Point{Lat: 0, Lon: 0}
	// Heading 0 (due north) should only change latitude.
	north := AdvancePosition(p, 0, 600, 3600)
	if math.Abs(north.Lon) > 1e-9 {
		t.Errorf("due-north advance changed longitude: %+v", north)
	}
	if north.Lat <= p.Lat {
		t.Errorf("due-north advance should increase latitude: %+v", north)
	}

	// Heading 90 (due east) should only change longitude.
	east := AdvancePosition(p, 90, 600, 3600)
	if math.Abs(east.Lat) > 1e-9 {
		t.Errorf("due-east advance changed latitude: %+v", east)
	}
	if east.Lon <= p.Lon {
		t.Errorf("due-east advance should increase longitude: %+v", east)
	}
}
