package kinematics

import (
	"math"
	"testing"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/geo"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/rand"
)

var cyyz = geo.Point{Lat: 43.6777, Lon: -79.6248}

func straightLevelInput(r *rand.Rand) Input {
	return Input{
		Position: domain.Position{
			Lat: 44.0, Lon: -79.6248, AltitudeFt: 20000, SpeedKts: 300, Heading: 180,
		},
		AirportCenter:     cyyz,
		RunwayElevationFt: 569,
		DT:                1,
		Rand:              r,
		C:                 DefaultConstants(),
	}
}

func TestStepInvariants(t *testing.T) {
	r := rand.New()
	r.Seed(1)
	in := straightLevelInput(&r)

	for i := 0; i < 500; i++ {
		res := Step(in)

		if res.Position.Heading < 0 || res.Position.Heading >= 360 {
			t.Fatalf("tick %d: heading out of range: %v", i, res.Position.Heading)
		}
		if res.Position.SpeedKts < DefaultMinSpeedKts-1e-9 || res.Position.SpeedKts > DefaultMaxSpeedKts+1e-9 {
			t.Fatalf("tick %d: speed out of range: %v", i, res.Position.SpeedKts)
		}
		if res.Position.AltitudeFt < 0 {
			t.Fatalf("tick %d: altitude negative: %v", i, res.Position.AltitudeFt)
		}

		in.Position = res.Position
	}
}

func TestStepMaxHeadingChangeBound(t *testing.T) {
	r := rand.New()
	r.Seed(2)
	target := 90.0
	in := straightLevelInput(&r)
	in.Targets.HeadingDeg = &target

	res := Step(in)
	maxRate := MaxTurnRateDegPerSec(in.Position.SpeedKts, BankMaxDeg)
	change := geo.HeadingDifference(in.Position.Heading, res.Position.Heading)
	if math.Abs(change) > maxRate*in.DT+1e-6 {
		t.Errorf("heading change %v exceeds bank-limited max %v", change, maxRate*in.DT)
	}
}

func TestStepMaxSpeedChangeBound(t *testing.T) {
	r := rand.New()
	r.Seed(3)
	target := 550.0
	in := straightLevelInput(&r)
	in.Targets.SpeedKts = &target

	res := Step(in)
	delta := res.Position.SpeedKts - in.Position.SpeedKts
	if delta > AccelMaxKtPerSec*in.DT+1e-9 {
		t.Errorf("speed increase %v exceeds accel limit %v", delta, AccelMaxKtPerSec*in.DT)
	}
}

func TestStepDeterministic(t *testing.T) {
	r1 := rand.New()
	r1.Seed(42)
	r2 := rand.New()
	r2.Seed(42)

	in1 := straightLevelInput(&r1)
	in2 := straightLevelInput(&r2)

	res1 := Step(in1)
	res2 := Step(in2)

	if res1 != res2 {
		t.Errorf("identical seed/state produced different results:\n%+v\n%+v", res1, res2)
	}
}

func TestGlideslopeAtZeroDistanceReturnsThreshold(t *testing.T) {
	thr := 569.0
	got := CalculateGlideslopeAltitude(0, thr, GlideslopeSlope)
	if got != thr {
		t.Errorf("CalculateGlideslopeAltitude(0, thr, slope) = %v, want %v", got, thr)
	}
}

func TestMaxTurnRateZeroBelowOneMeterPerSecond(t *testing.T) {
	if got := MaxTurnRateDegPerSec(1.0, BankMaxDeg); got != 0 {
		t.Errorf("MaxTurnRateDegPerSec near-zero speed = %v, want 0", got)
	}
}

func TestTurnRadiusSaturatesAtShallowBank(t *testing.T) {
	got := TurnRadiusNm(300, 0.001)
	if got != 999999.0 {
		t.Errorf("TurnRadiusNm with near-zero bank = %v, want sentinel", got)
	}
}

func TestGlideslopeAutoTargetWithinApproachRange(t *testing.T) {
	r := rand.New()
	r.Seed(5)
	in := Input{
		Position:          domain.Position{Lat: 43.75, Lon: -79.6248, AltitudeFt: 5000, SpeedKts: 250, Heading: 180},
		AirportCenter:     cyyz,
		RunwayElevationFt: 569,
		DT:                1,
		Rand:              &r,
		C:                 DefaultConstants(),
	}

	for i := 0; i < 50; i++ {
		res := Step(in)
		if res.VerticalSpeedFpm > 0 || res.VerticalSpeedFpm < -1800.0-1e-6 {
			t.Fatalf("tick %d: vertical speed %v outside approach envelope", i, res.VerticalSpeedFpm)
		}
		in.Position = res.Position
	}
}
