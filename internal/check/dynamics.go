package check

import (
	"fmt"
	"math"

	"github.com/drivelab/oscheck/internal/geom"
	"github.com/drivelab/oscheck/internal/model"
)

// minVelocity is the velocity magnitude below which the swim angle is
// undefined and the sample is skipped.
const minVelocity = 1e-9

// DynamicsChecker derives speed, acceleration, and swim angle from each
// entity's declared trajectory waypoints and classifies every sample
// against the configured warning/error thresholds.
//
// Derivation is a finite difference over consecutive waypoints:
//
//	speed[i] = |pos[i] - pos[i-1]| / (t[i] - t[i-1])
//	accel[k] = (speed[k] - speed[k-1]) / (t[k] - t[k-1])
//	swim[i]  = normalize(heading[i] - atan2(dy, dx)), in (-pi, pi]
//
// Samples with a zero time delta are skipped (no division, no finding).
// Acceleration needs at least three waypoints; swim angle is skipped when
// the velocity magnitude is ~0. Entities without a trajectory, or with
// fewer than two waypoints, produce no findings.
//
// Consecutive breaching samples of the same severity are coalesced into a
// single finding spanning the first to the last breach of the run; the
// message reports the peak value.
type DynamicsChecker struct{}

// Name implements Checker.
func (c *DynamicsChecker) Name() string { return "dynamics" }

// sample is one derived value at a scenario timestamp.
type sample struct {
	t float64
	v float64
}

// Check implements Checker.
func (c *DynamicsChecker) Check(s *model.Scenario, cfg Config) []Finding {
	var findings []Finding
	// Entity declaration order keeps the raw finding sequence stable
	// before aggregation.
	for i := range s.Entities {
		id := s.Entities[i].ID
		tr := s.Trajectories[id]
		if tr == nil || len(tr.Waypoints) < 2 {
			continue
		}

		speeds, swims := deriveSamples(tr.Waypoints)
		accels := deriveAccel(speeds)

		findings = append(findings, coalesce(id, CategorySpeedThreshold,
			"speed", "m/s", speeds, cfg.SpeedWarn, cfg.SpeedError)...)
		findings = append(findings, coalesce(id, CategoryAccelerationThreshold,
			"acceleration", "m/s^2", accels, cfg.AccelWarn, cfg.AccelError)...)
		findings = append(findings, coalesce(id, CategorySwimAngleThreshold,
			"swim angle", "rad", swims, cfg.SwimAngleWarn, cfg.SwimAngleError)...)
	}
	return findings
}

// deriveSamples computes the speed and swim-angle series from waypoints.
// Duplicate timestamps yield no sample for either series.
func deriveSamples(wps []model.Waypoint) (speeds, swims []sample) {
	for i := 1; i < len(wps); i++ {
		dt := wps[i].Time - wps[i-1].Time
		if dt == 0 {
			continue
		}
		dx := wps[i].X - wps[i-1].X
		dy := wps[i].Y - wps[i-1].Y
		dist := math.Hypot(dx, dy)

		speeds = append(speeds, sample{t: wps[i].Time, v: dist / dt})

		if dist > minVelocity {
			course := math.Atan2(dy, dx)
			swim := geom.NormalizeAngle(wps[i].Heading - course)
			swims = append(swims, sample{t: wps[i].Time, v: swim})
		}
	}
	return speeds, swims
}

// deriveAccel computes the acceleration series from the speed series.
// With fewer than two speed samples acceleration is undefined and the
// result is empty ("insufficient data", not an error).
func deriveAccel(speeds []sample) []sample {
	var accels []sample
	for k := 1; k < len(speeds); k++ {
		dt := speeds[k].t - speeds[k-1].t
		if dt == 0 {
			continue
		}
		accels = append(accels, sample{
			t: speeds[k].t,
			v: (speeds[k].v - speeds[k-1].v) / dt,
		})
	}
	return accels
}

// coalesce classifies each sample by magnitude against (warn, err) and
// folds consecutive breaches of equal severity into range findings. The
// first and last breaching sample of a run bound the reported range; a
// severity change closes the run and opens a new one, so no breach is
// dropped. Only the higher severity is reported for any single sample.
func coalesce(entityID string, cat Category, quantity, unit string, samples []sample, warn, err float64) []Finding {
	var findings []Finding

	type run struct {
		sev        Severity
		start, end float64
		peak       float64
	}
	var cur *run

	flush := func() {
		if cur == nil {
			return
		}
		findings = append(findings, Finding{
			Severity: cur.sev,
			Category: cat,
			EntityID: entityID,
			Message: fmt.Sprintf("%s %s %s reaches %s threshold %s",
				quantity, formatFloat(cur.peak), unit, thresholdName(cur.sev), formatFloat(pick(cur.sev, warn, err))),
			Locator: AtTimeRange(cur.start, cur.end),
		})
		cur = nil
	}

	for _, s := range samples {
		mag := math.Abs(s.v)
		sev, breached := classify(mag, warn, err)
		if !breached {
			flush()
			continue
		}
		if cur != nil && cur.sev == sev {
			cur.end = s.t
			if mag > cur.peak {
				cur.peak = mag
			}
			continue
		}
		flush()
		cur = &run{sev: sev, start: s.t, end: s.t, peak: mag}
	}
	flush()

	return findings
}

func thresholdName(sev Severity) string {
	if sev == SeverityError {
		return "error"
	}
	return "warning"
}

func pick(sev Severity, warn, err float64) float64 {
	if sev == SeverityError {
		return err
	}
	return warn
}
