// Package airspace loads the static airport and sector reference data
// the core consults every tick: the airport center and field elevation,
// the concentric sector ring used for handoff decisions, named entry
// fixes, and per-flight-type spawn zone parameters. A Ref is immutable
// after construction; callers share one instance across ticks.
package airspace

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/geo"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/rand"
)

// CYYZ defaults, baked in when no config file is supplied or it fails to
// parse.
const (
	DefaultICAO          = "CYYZ"
	DefaultLat           = 43.6777
	DefaultLon           = -79.6248
	DefaultElevationFt   = 569.0
	DefaultHysteresisNm  = 2.0
)

// Sector is one concentric annular volume around the airport center,
// bounded by range and altitude.
type Sector struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	RadiusNmInner  float64        `json:"radius_nm_inner"`
	RadiusNmOuter  float64        `json:"radius_nm_outer"`
	AltitudeFtMin  float64        `json:"altitude_ft_min"`
	AltitudeFtMax  float64        `json:"altitude_ft_max"`
	ControllerHint string         `json:"controller_hint"`
	HysteresisNm   float64        `json:"hysteresis_nm"`
	Behavior       string         `json:"behavior"`
	Params         map[string]any `json:"params"`
}

// EntryFix is a named waypoint on the outer ring used by arriving traffic.
type EntryFix struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// SpawnZone bounds where and how a new aircraft of a given flight type
// may be spawned.
type SpawnZone struct {
	Sector         string  `json:"sector"`
	RadiusNmMin    float64 `json:"radius_nm_min"`
	RadiusNmMax    float64 `json:"radius_nm_max"`
	AltitudeFtMin  float64 `json:"altitude_ft_min"`
	AltitudeFtMax  float64 `json:"altitude_ft_max"`
	SpeedKtsMin    float64 `json:"speed_kts_min"`
	SpeedKtsMax    float64 `json:"speed_kts_max"`
	RandomBearing  bool    `json:"random_bearing"`
}

// Runway is a single parsed runway feature from the airport GeoJSON.
type Runway struct {
	Name        string      `json:"name"`
	Ref         string      `json:"ref"`
	LengthFt    *float64    `json:"length"`
	WidthFt     *float64    `json:"width"`
	Coordinates [][]float64 `json:"coordinates"`
}

// config is the on-disk shape of the optional airspace JSON file.
type config struct {
	Airport *struct {
		Center struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		ElevationFt float64 `json:"elevation_ft"`
	} `json:"airport"`
	Sectors     []Sector             `json:"sectors"`
	EntryFixes  []EntryFix           `json:"entry_fixes"`
	SpawnZones  map[string]SpawnZone `json:"spawn_zones"`
}

// Ref is the immutable airspace + airport reference the Engine consults
// every tick.
type Ref struct {
	ICAO          string
	Center        geo.Point
	ElevationFt   float64
	Sectors       []Sector
	EntryFixes    []EntryFix
	SpawnZones    map[string]SpawnZone
	Runways       []Runway
}

// DefaultRef returns the built-in CYYZ sector configuration, used when no
// airspace JSON is supplied or the file fails to parse.
func DefaultRef() *Ref {
	return &Ref{
		ICAO:        DefaultICAO,
		Center:      geo.Point{Lat: DefaultLat, Lon: DefaultLon},
		ElevationFt: DefaultElevationFt,
		Sectors: []Sector{
			{
				Name: "ENTRY", Type: "ENTRY_EXIT",
				RadiusNmInner: 30, RadiusNmOuter: 60,
				AltitudeFtMin: 20000, AltitudeFtMax: 60000,
				ControllerHint: "ENTRY_ATC", HysteresisNm: DefaultHysteresisNm,
				Behavior: "random_drift",
			},
			{
				Name: "ENROUTE", Type: "ENROUTE",
				RadiusNmInner: 20, RadiusNmOuter: 30,
				AltitudeFtMin: 18000, AltitudeFtMax: 35000,
				ControllerHint: "ENROUTE_ATC", HysteresisNm: DefaultHysteresisNm,
				Behavior: "controlled_descent",
			},
			{
				Name: "APPROACH", Type: "APPROACH_DEPARTURE",
				RadiusNmInner: 10, RadiusNmOuter: 20,
				AltitudeFtMin: 0, AltitudeFtMax: 18000,
				ControllerHint: "APPROACH_ATC", HysteresisNm: DefaultHysteresisNm,
				Behavior: "approach_sequencing",
			},
			{
				Name: "RUNWAY", Type: "RUNWAY_OPS",
				RadiusNmInner: 0, RadiusNmOuter: 10,
				AltitudeFtMin: 0, AltitudeFtMax: 3000,
				ControllerHint: "TOWER_ATC", HysteresisNm: DefaultHysteresisNm,
				Behavior: "final_approach",
			},
		},
		SpawnZones: map[string]SpawnZone{
			"arrivals": {
				Sector: "ENTRY", RadiusNmMin: 40, RadiusNmMax: 60,
				AltitudeFtMin: 25000, AltitudeFtMax: 35000,
				SpeedKtsMin: 280, SpeedKtsMax: 350, RandomBearing: true,
			},
		},
	}
}

// Load reads the airspace JSON file at path and the airport GeoJSON file
// at airportPath. Either path may be empty, or missing on disk, in which
// case DefaultRef is used as the starting point and only the piece that
// did load is overlaid on top of it — a bad airspace file never loses a
// successfully parsed airport file and vice versa.
func Load(airspacePath, airportPath string) (*Ref, []error) {
	ref := DefaultRef()
	var warnings []error

	if airspacePath != "" {
		if err := loadAirspaceConfig(ref, airspacePath); err != nil {
			warnings = append(warnings, fmt.Errorf("airspace config %s: %w (using defaults)", airspacePath, err))
		}
	}

	if airportPath != "" {
		runways, err := loadAirportGeoJSON(airportPath)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("airport data %s: %w (using default center)", airportPath, err))
		} else {
			ref.Runways = runways
		}
	}

	return ref, warnings
}

func loadAirspaceConfig(ref *Ref, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var c config
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}

	if len(c.Sectors) > 0 {
		for i := range c.Sectors {
			if c.Sectors[i].HysteresisNm == 0 {
				c.Sectors[i].HysteresisNm = DefaultHysteresisNm
			}
			if c.Sectors[i].Behavior == "" {
				c.Sectors[i].Behavior = "controlled"
			}
		}
		ref.Sectors = c.Sectors
	}
	if c.EntryFixes != nil {
		ref.EntryFixes = c.EntryFixes
	}
	if c.SpawnZones != nil {
		ref.SpawnZones = c.SpawnZones
	}
	if c.Airport != nil {
		ref.Center = geo.Point{Lat: c.Airport.Center.Lat, Lon: c.Airport.Center.Lon}
		if c.Airport.ElevationFt != 0 {
			ref.ElevationFt = c.Airport.ElevationFt
		}
	}
	return nil
}

// geoJSON is the minimal FeatureCollection shape needed to pull runway
// features out of an airport GeoJSON file.
type geoJSON struct {
	Type     string `json:"type"`
	Features []struct {
		Properties struct {
			Aeroway string   `json:"aeroway"`
			Name    string   `json:"name"`
			Ref     string   `json:"ref"`
			Length  *float64 `json:"length"`
			Width   *float64 `json:"width"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func loadAirportGeoJSON(path string) ([]Runway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g geoJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	if g.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", g.Type)
	}

	var runways []Runway
	for _, f := range g.Features {
		if f.Properties.Aeroway != "runway" {
			continue
		}
		name := f.Properties.Name
		if name == "" {
			name = "Unknown"
		}
		runways = append(runways, Runway{
			Name:        name,
			Ref:         f.Properties.Ref,
			LengthFt:    f.Properties.Length,
			WidthFt:     f.Properties.Width,
			Coordinates: f.Geometry.Coordinates,
		})
	}
	return runways, nil
}

// SectorByPosition returns the innermost-first matching sector for the
// given distance and altitude, or nil if no sector claims the position.
func (r *Ref) SectorByPosition(distanceNm, altitudeFt float64) *Sector {
	sorted := make([]Sector, len(r.Sectors))
	copy(sorted, r.Sectors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RadiusNmInner < sorted[j].RadiusNmInner })

	for i := range sorted {
		s := &sorted[i]
		if distanceNm >= s.RadiusNmInner && distanceNm <= s.RadiusNmOuter &&
			altitudeFt >= s.AltitudeFtMin && altitudeFt <= s.AltitudeFtMax {
			for j := range r.Sectors {
				if r.Sectors[j].Name == s.Name {
					return &r.Sectors[j]
				}
			}
		}
	}
	return nil
}

// SectorByName looks up a sector by its name, or nil if none matches.
func (r *Ref) SectorByName(name string) *Sector {
	for i := range r.Sectors {
		if r.Sectors[i].Name == name {
			return &r.Sectors[i]
		}
	}
	return nil
}

// CheckSectorTransition reports the (from, to) sector name pair when the
// aircraft has moved into a new sector while inbound (distance strictly
// decreasing). Transitions are reported only for inbound movement — the
// core's handoff model is arrivals-only.
func (r *Ref) CheckSectorTransition(currentSector string, distanceNm, altitudeFt, prevDistanceNm float64) (from, to string, ok bool) {
	next := r.SectorByPosition(distanceNm, altitudeFt)
	if next == nil || next.Name == currentSector {
		return "", "", false
	}
	if distanceNm < prevDistanceNm {
		return currentSector, next.Name, true
	}
	return "", "", false
}

// AtOuterBoundary reports whether distanceNm has reached sector's outer
// ring minus its hysteresis margin.
func (r *Ref) AtOuterBoundary(sectorName string, distanceNm float64) bool {
	s := r.SectorByName(sectorName)
	if s == nil {
		return false
	}
	return distanceNm >= s.RadiusNmOuter-s.HysteresisNm
}

// NearestEntryFix returns the entry fix closest to p, or nil if none are
// configured.
func (r *Ref) NearestEntryFix(p geo.Point) *EntryFix {
	if len(r.EntryFixes) == 0 {
		return nil
	}
	nearest := &r.EntryFixes[0]
	min := geo.FlatEarthDistanceNM(p, geo.Point{Lat: nearest.Lat, Lon: nearest.Lon})
	for i := 1; i < len(r.EntryFixes); i++ {
		d := geo.FlatEarthDistanceNM(p, geo.Point{Lat: r.EntryFixes[i].Lat, Lon: r.EntryFixes[i].Lon})
		if d < min {
			min = d
			nearest = &r.EntryFixes[i]
		}
	}
	return nearest
}

// ReflectionHeading computes the heading an aircraft bouncing off the
// outer ring should take: roughly toward the center, ± a uniform random
// spread of up to 20 degrees either side.
func ReflectionHeading(r *rand.Rand, bearingToCenter float64) float64 {
	spread := r.FloatRange(-20, 20)
	return geo.NormalizeHeading(bearingToCenter + spread)
}

// SpawnZoneFor returns the configured spawn zone for flightType, falling
// back to the default arrivals zone when none is configured.
func (r *Ref) SpawnZoneFor(flightType string) SpawnZone {
	key := "departures"
	if flightType == "ARRIVAL" {
		key = "arrivals"
	}
	if z, ok := r.SpawnZones[key]; ok {
		return z
	}
	return SpawnZone{
		Sector: "ENTRY", RadiusNmMin: 40, RadiusNmMax: 60,
		AltitudeFtMin: 25000, AltitudeFtMax: 35000,
		SpeedKtsMin: 280, SpeedKtsMax: 350, RandomBearing: true,
	}
}

// GenerateEntryWaypoints produces count waypoints evenly spaced around a
// ring of radiusNm from the airport center, named <ICAO>_<compass><nm>.
func (r *Ref) GenerateEntryWaypoints(radiusNm float64, count int) []EntryFix {
	directions := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	waypoints := make([]EntryFix, 0, count)
	for i := 0; i < count; i++ {
		bearingDeg := (360.0 / float64(count)) * float64(i)
		bearingRad := geo.Radians(bearingDeg)

		deltaLat := (radiusNm / geo.NMPerDegreeLat) * math.Cos(bearingRad)
		deltaLon := (radiusNm / (geo.NMPerDegreeLat * math.Cos(geo.Radians(r.Center.Lat)))) * math.Sin(bearingRad)

		waypoints = append(waypoints, EntryFix{
			Name: fmt.Sprintf("%s_%s%d", r.ICAO, directions[i%len(directions)], int(radiusNm)),
			Lat:  r.Center.Lat + deltaLat,
			Lon:  r.Center.Lon + deltaLon,
		})
	}
	return waypoints
}

// RunwayHeading extracts the magnetic heading implied by a runway
// identifier such as "05L" or "23R": the first run of digits in the name
// times ten. Returns false if the name contains no digits.
func RunwayHeading(name string) (float64, bool) {
	digits := ""
	for _, c := range name {
		if c >= '0' && c <= '9' {
			digits += string(c)
		} else if digits != "" {
			break
		}
	}
	if digits == "" {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(digits, "%d", &n); err != nil {
		return 0, false
	}
	return float64(n * 10), true
}
