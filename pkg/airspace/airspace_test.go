package airspace

import (
	"testing"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/geo"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/rand"
)

func TestDefaultRefSectorByPosition(t *testing.T) {
	ref := DefaultRef()

	s := ref.SectorByPosition(15, 5000)
	if s == nil || s.Name != "APPROACH" {
		t.Fatalf("expected APPROACH sector at 15nm/5000ft, got %+v", s)
	}

	if s := ref.SectorByPosition(5, 50000); s != nil {
		t.Fatalf("altitude out of every sector's range should return nil, got %+v", s)
	}
}

func TestCheckSectorTransitionRequiresInbound(t *testing.T) {
	ref := DefaultRef()

	_, _, ok := ref.CheckSectorTransition("ENTRY", 25, 30000, 20)
	if ok {
		t.Errorf("outbound movement (distance increasing) must not report a transition")
	}

	from, to, ok := ref.CheckSectorTransition("ENTRY", 25, 30000, 35)
	if !ok || from != "ENTRY" || to != "ENROUTE" {
		t.Errorf("expected inbound ENTRY->ENROUTE transition, got from=%q to=%q ok=%v", from, to, ok)
	}
}

func TestAtOuterBoundaryUsesHysteresis(t *testing.T) {
	ref := DefaultRef()
	s := ref.SectorByName("ENTRY")
	if s == nil {
		t.Fatal("ENTRY sector missing from defaults")
	}

	if ref.AtOuterBoundary("ENTRY", s.RadiusNmOuter-s.HysteresisNm-0.01) {
		t.Errorf("should not be at outer boundary just inside the hysteresis margin")
	}
	if !ref.AtOuterBoundary("ENTRY", s.RadiusNmOuter-s.HysteresisNm) {
		t.Errorf("should be at outer boundary exactly at the hysteresis margin")
	}
}

func TestNearestEntryFix(t *testing.T) {
	ref := DefaultRef()
	ref.EntryFixes = []EntryFix{
		{Name: "NEAR", Lat: 44.0, Lon: -79.6248},
		{Name: "FAR", Lat: 46.0, Lon: -79.6248},
	}

	got := ref.NearestEntryFix(geo.Point{Lat: 44.1, Lon: -79.6248})
	if got == nil || got.Name != "NEAR" {
		t.Errorf("expected NEAR, got %+v", got)
	}
}

func TestReflectionHeadingNormalized(t *testing.T) {
	r := rand.New()
	r.Seed(9)
	for i := 0; i < 100; i++ {
		h := ReflectionHeading(&r, 350)
		if h < 0 || h >= 360 {
			t.Fatalf("ReflectionHeading produced out-of-range heading: %v", h)
		}
	}
}

func TestSpawnZoneForFallsBackToDefault(t *testing.T) {
	ref := &Ref{}
	z := ref.SpawnZoneFor("ARRIVAL")
	if z.Sector != "ENTRY" {
		t.Errorf("expected default arrivals zone, got %+v", z)
	}
}

func TestGenerateEntryWaypointsCount(t *testing.T) {
	ref := DefaultRef()
	wps := ref.GenerateEntryWaypoints(30, 8)
	if len(wps) != 8 {
		t.Fatalf("expected 8 waypoints, got %d", len(wps))
	}
	for _, wp := range wps {
		d := geo.FlatEarthDistanceNM(ref.Center, geo.Point{Lat: wp.Lat, Lon: wp.Lon})
		if d < 29.5 || d > 30.5 {
			t.Errorf("waypoint %s at distance %v, want ~30nm", wp.Name, d)
		}
	}
}

func TestRunwayHeading(t *testing.T) {
	cases := map[string]float64{"05L": 50, "23R": 230, "06": 60}
	for name, want := range cases {
		got, ok := RunwayHeading(name)
		if !ok || got != want {
			t.Errorf("RunwayHeading(%q) = %v,%v want %v,true", name, got, ok, want)
		}
	}
	if _, ok := RunwayHeading("RWY"); ok {
		t.Errorf("expected false for a runway name with no digits")
	}
}

func TestLoadMissingFilesFallsBackToDefaults(t *testing.T) {
	ref, warnings := Load("/nonexistent/airspace.json", "/nonexistent/airport.json")
	if ref.ICAO != DefaultICAO {
		t.Errorf("expected default ICAO on missing files, got %q", ref.ICAO)
	}
	if len(warnings) != 2 {
		t.Errorf("expected a warning for each missing file, got %d", len(warnings))
	}
}
