package sensor

import "github.com/beka-birhanu/vinom-sim/physics"

// Report is the answer a sensor gives the engine for one candidate fixture.
type Report struct {
	accepted bool
	fraction float64
}

// Accept keeps the candidate and clips the ray at fraction.
func Accept(fraction float64) Report {
	return Report{accepted: true, fraction: fraction}
}

// Reject ignores the candidate and lets the ray continue unclipped.
func Reject() Report {
	return Report{}
}

func (r Report) Accepted() bool { return r.accepted }
func (r Report) Fraction() float64 { return r.fraction }

// Clip is the value handed back to the engine.
func (r Report) Clip() float64 {
	if !r.accepted {
		return -1
	}
	return r.fraction
}

// Hit is the closest accepted candidate of one ray.
type Hit struct {
	Valid    bool
	Point    physics.Vec2
	Normal   physics.Vec2
	Fraction float64
	Fixture  *physics.Fixture
}

// Inspect decides on a single candidate using the symmetric filter check.
func Inspect(filter physics.Filter, fixture *physics.Fixture, fraction float64) Report {
	if fixture == nil || !filter.Accepts(fixture.Filter()) {
		return Reject()
	}
	return Accept(fraction)
}

// Callback returns a ray cast callback recording the nearest accepted hit into hit.
// The world only reports candidates strictly closer than the last clip, so the
// last accepted candidate is the nearest one.
func Callback(filter physics.Filter, hit *Hit) physics.RayCastCallback {
	return func(fixture *physics.Fixture, point, normal physics.Vec2, fraction float64) float64 {
		report := Inspect(filter, fixture, fraction)
		if report.Accepted() {
			*hit = Hit{Valid: true, Point: point, Normal: normal, Fraction: fraction, Fixture: fixture}
		}
		return report.Clip()
	}
}
