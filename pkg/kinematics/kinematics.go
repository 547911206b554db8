// Package kinematics implements the pure per-tick aircraft state update:
// speed, heading, altitude, and position advance under bank-angle and
// acceleration limits, with bounded random drift on any channel that has
// no active target.
package kinematics

import (
	"math"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/geo"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/rand"
)

// Defaults, all tunable. Named after the quantities they bound so a
// caller can override a subset via Constants without guessing units.
const (
	DefaultMinSpeedKts = 140.0
	DefaultMaxSpeedKts = 550.0

	AccelMaxKtPerSec = 0.6
	DecelMaxKtPerSec = 0.8

	BankMaxDeg = 25.0
	GravityMS2 = 9.80665
	KtsToMS    = 0.514444

	ClimbMaxFpmNormal   = 2500.0
	DescentMaxFpmNormal = 3000.0
	VerticalMaxFpmApproach = 1800.0

	// ApproachDistanceNm is the distance-to-airport threshold below
	// which vertical rate is capped at VerticalMaxFpmApproach even if
	// the caller doesn't assert IsApproach explicitly.
	ApproachDistanceNm = 20.0

	// GlideslopeDistanceNm is the distance inside which an absent
	// altitude target auto-tracks the glideslope instead of holding.
	GlideslopeDistanceNm = 30.0

	GlideslopeAngleDeg = 3.0

	DriftSpeedKt    = 5.0
	DriftHeadingDeg = 2.0
)

// GlideslopeSlope is tan(3 degrees), the constant-gradient approximation
// used by CalculateGlideslopeAltitude.
var GlideslopeSlope = math.Tan(geo.Radians(GlideslopeAngleDeg))

// Constants bundles the tunable performance envelope so tests can
// exercise non-default limits without a package-level variable.
type Constants struct {
	MinSpeedKts, MaxSpeedKts   float64
	AccelMaxKtPerSec           float64
	DecelMaxKtPerSec           float64
	BankMaxDeg                 float64
	ClimbMaxFpmNormal          float64
	DescentMaxFpmNormal        float64
	VerticalMaxFpmApproach     float64
	ApproachDistanceNm         float64
	GlideslopeDistanceNm       float64
	GlideslopeSlope            float64
	DriftSpeedKt, DriftHeadingDeg float64
}

// DefaultConstants returns the performance envelope spec'd in package
// constants above.
func DefaultConstants() Constants {
	return Constants{
		MinSpeedKts:            DefaultMinSpeedKts,
		MaxSpeedKts:            DefaultMaxSpeedKts,
		AccelMaxKtPerSec:       AccelMaxKtPerSec,
		DecelMaxKtPerSec:       DecelMaxKtPerSec,
		BankMaxDeg:             BankMaxDeg,
		ClimbMaxFpmNormal:      ClimbMaxFpmNormal,
		DescentMaxFpmNormal:    DescentMaxFpmNormal,
		VerticalMaxFpmApproach: VerticalMaxFpmApproach,
		ApproachDistanceNm:     ApproachDistanceNm,
		GlideslopeDistanceNm:   GlideslopeDistanceNm,
		GlideslopeSlope:        GlideslopeSlope,
		DriftSpeedKt:           DriftSpeedKt,
		DriftHeadingDeg:        DriftHeadingDeg,
	}
}

// Input is everything Step needs beyond the aircraft's current position:
// its targets, the field elevation for glideslope auto-targeting, and the
// PRNG to draw drift from. RunwayElevationFt and AirportCenter let the
// step compute distance-to-airport and the glideslope target without
// reaching back into AirspaceRef.
type Input struct {
	Position         domain.Position
	Targets          domain.Targets
	AirportCenter    geo.Point
	RunwayElevationFt float64
	IsApproach       bool
	DT               float64
	Rand             *rand.Rand
	C                Constants
}

// Result is the pure output of Step: the new position and the derived
// vertical speed and distance-to-airport that accompany it. distance_nm
// is computed from the POST-update position, per the resolved design
// decision (the source computed it pre-update but stored it alongside
// post-update state; computing it post-update is the consistent choice
// and is what this package does).
type Result struct {
	Position            domain.Position
	VerticalSpeedFpm    float64
	DistanceToAirportNm float64
}

// Clip restricts value to [lo, hi]. Named to match the formulas in the
// component design (clip, not Clamp) since this package's doc comments
// quote those formulas directly.
func Clip(value, lo, hi float64) float64 {
	return geo.Clamp(value, lo, hi)
}

// MaxTurnRateDegPerSec returns the bank-limited maximum turn rate in
// degrees/second for the given true airspeed and bank angle. Returns 0
// when speedKts converts to under 1 m/s, per the edge case guard: a
// stationary or near-stationary aircraft cannot generate any turn rate
// from a fixed bank angle.
func MaxTurnRateDegPerSec(speedKts, bankMaxDeg float64) float64 {
	speedMS := speedKts * KtsToMS
	if speedMS < 1.0 {
		return 0.0
	}
	omegaRad := (GravityMS2 * math.Tan(geo.Radians(bankMaxDeg))) / speedMS
	return geo.Degrees(omegaRad)
}

// TurnRadiusNm returns the turn radius at the given speed and bank angle.
// When tan(bank) falls under 1e-3 (an effectively wings-level bank), the
// radius saturates to a large sentinel rather than diverging.
func TurnRadiusNm(speedKts, bankMaxDeg float64) float64 {
	speedMS := speedKts * KtsToMS
	tanPhi := math.Tan(geo.Radians(bankMaxDeg))
	if tanPhi < 1e-3 {
		return 999999.0
	}
	radiusM := (speedMS * speedMS) / (GravityMS2 * tanPhi)
	return radiusM / 1852.0
}

// UpdateSpeed tracks targetSpeed under acceleration/deceleration limits
// and clamps to [minSpeed, maxSpeed].
func UpdateSpeed(current, target, dt, accelMax, decelMax, minSpeed, maxSpeed float64) float64 {
	speedError := target - current
	delta := Clip(speedError, -decelMax*dt, accelMax*dt)
	return Clip(current+delta, minSpeed, maxSpeed)
}

// UpdateHeading tracks targetHeading under the bank-limited turn rate for
// the given speed, wrapping the result into [0, 360).
func UpdateHeading(current, target, speedKts, dt, bankMaxDeg float64) float64 {
	headingError := geo.HeadingDifference(current, target)
	maxRate := MaxTurnRateDegPerSec(speedKts, bankMaxDeg)
	maxChange := maxRate * dt
	delta := Clip(headingError, -maxChange, maxChange)
	return geo.NormalizeHeading(current + delta)
}

// UpdateAltitude tracks targetAltitude under the vertical rate limits
// (approach caps apply when isApproach is set), returning the new
// altitude and the vertical speed in fpm that produced it.
func UpdateAltitude(current, target, dt float64, isApproach bool, c Constants) (newAltitude, verticalSpeedFpm float64) {
	altError := target - current

	maxClimbFpm := c.ClimbMaxFpmNormal
	maxDescentFpm := c.DescentMaxFpmNormal
	if isApproach {
		maxClimbFpm = c.VerticalMaxFpmApproach
		maxDescentFpm = c.VerticalMaxFpmApproach
	}

	maxClimbFt := (maxClimbFpm / 60.0) * dt
	maxDescentFt := -(maxDescentFpm / 60.0) * dt

	delta := Clip(altError, maxDescentFt, maxClimbFt)
	newAltitude = current + delta
	verticalSpeedFpm = (delta / dt) * 60.0
	return newAltitude, verticalSpeedFpm
}

// CalculateGlideslopeAltitude returns the target altitude MSL on a
// constant-gradient glideslope at distanceNm from the threshold:
// h*(D) = THR_elev + 6076*slope*D.
func CalculateGlideslopeAltitude(distanceNm, runwayElevationFt, slope float64) float64 {
	return runwayElevationFt + geo.FtPerNM*slope*distanceNm
}

// ApplyDrift draws a uniform value in [-amount, +amount] from r and adds
// it to current, wrapping into [0,360) when circular is set.
func ApplyDrift(r *rand.Rand, current, amount float64, circular bool) float64 {
	drift := r.FloatRange(-amount, amount)
	newValue := current + drift
	if circular {
		newValue = geo.NormalizeHeading(newValue)
	}
	return newValue
}

// Step advances one aircraft's kinematic state by in.DT seconds (1 s for
// the core's tick loop, but a parameter of the function so tests can
// exercise other step sizes). Each of speed, heading, and altitude is
// resolved independently: a set target is tracked under its rate limit;
// an absent target draws bounded drift from in.Rand, except altitude,
// which auto-tracks the glideslope inside GlideslopeDistanceNm and holds
// otherwise.
func Step(in Input) Result {
	c := in.C
	if c == (Constants{}) {
		c = DefaultConstants()
	}
	dt := in.DT
	if dt == 0 {
		dt = 1.0
	}

	pos := in.Position
	distanceNm := geo.FlatEarthDistanceNM(in.AirportCenter, geo.Point{Lat: pos.Lat, Lon: pos.Lon})
	isApproach := in.IsApproach || distanceNm < c.ApproachDistanceNm

	var newSpeed float64
	if in.Targets.SpeedKts != nil {
		newSpeed = UpdateSpeed(pos.SpeedKts, *in.Targets.SpeedKts, dt, c.AccelMaxKtPerSec, c.DecelMaxKtPerSec, c.MinSpeedKts, c.MaxSpeedKts)
	} else {
		newSpeed = Clip(ApplyDrift(in.Rand, pos.SpeedKts, c.DriftSpeedKt, false), c.MinSpeedKts, c.MaxSpeedKts)
	}

	var newHeading float64
	if in.Targets.HeadingDeg != nil {
		newHeading = UpdateHeading(pos.Heading, *in.Targets.HeadingDeg, pos.SpeedKts, dt, c.BankMaxDeg)
	} else {
		newHeading = ApplyDrift(in.Rand, pos.Heading, c.DriftHeadingDeg, true)
	}

	var newAltitude, verticalSpeedFpm float64
	switch {
	case in.Targets.AltitudeFt != nil:
		newAltitude, verticalSpeedFpm = UpdateAltitude(pos.AltitudeFt, *in.Targets.AltitudeFt, dt, isApproach, c)
	case distanceNm < c.GlideslopeDistanceNm:
		target := CalculateGlideslopeAltitude(distanceNm, in.RunwayElevationFt, c.GlideslopeSlope)
		newAltitude, verticalSpeedFpm = UpdateAltitude(pos.AltitudeFt, target, dt, true, c)
	default:
		newAltitude = pos.AltitudeFt
		verticalSpeedFpm = 0.0
	}
	if newAltitude < 0 {
		// Invariant violation guard: clamp to the boundary and let the
		// caller's logger record it at ERROR.
		newAltitude = 0
	}

	newPos := geo.AdvancePosition(geo.Point{Lat: pos.Lat, Lon: pos.Lon}, newHeading, newSpeed, dt)

	postDistanceNm := geo.FlatEarthDistanceNM(in.AirportCenter, newPos)

	return Result{
		Position: domain.Position{
			Lat:        newPos.Lat,
			Lon:        newPos.Lon,
			AltitudeFt: newAltitude,
			SpeedKts:   newSpeed,
			Heading:    newHeading,
		},
		VerticalSpeedFpm:    verticalSpeedFpm,
		DistanceToAirportNm: postDistanceNm,
	}
}
