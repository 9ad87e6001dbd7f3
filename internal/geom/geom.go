// Package geom provides the pure spatial primitives used by the placement
// checks: poses, footprints, distance, and overlap tests.
//
// All functions are side-effect free. Overlap tests are strictly 2D - the
// z-component of a pose is carried for reporting but ignored here, and
// footprints are treated as axis-aligned (heading does not rotate them).
package geom

import "math"

// Pose is a position plus heading. Heading is in radians, measured
// counter-clockwise from the positive x-axis.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z,omitempty"`
	Heading float64 `json:"heading,omitempty"`
}

// FootprintKind enumerates the supported bounding shapes.
type FootprintKind int

const (
	// FootprintNone marks an entity without a declared bounding shape.
	// Entities without a footprint never overlap anything.
	FootprintNone FootprintKind = iota

	// FootprintRect is an axis-aligned rectangle centered on the pose.
	FootprintRect

	// FootprintCircle is a circle centered on the pose.
	FootprintCircle
)

// Footprint is the bounding shape used for overlap tests.
// Length extends along x, Width along y (both full extents, not half).
type Footprint struct {
	Kind   FootprintKind `json:"kind"`
	Length float64       `json:"length,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Radius float64       `json:"radius,omitempty"`
}

// Distance returns the 2D euclidean distance between two poses.
func Distance(a, b Pose) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Radius2D returns the radius of the smallest circle centered on the pose
// that encloses the footprint. Returns 0 for FootprintNone.
func (f Footprint) Radius2D() float64 {
	switch f.Kind {
	case FootprintRect:
		return math.Hypot(f.Length/2, f.Width/2)
	case FootprintCircle:
		return f.Radius
	default:
		return 0
	}
}

// Overlaps reports whether two footprints placed at the given poses
// intersect. Touching boundaries count as overlapping. Entities without a
// footprint (FootprintNone) never overlap.
func Overlaps(fa Footprint, pa Pose, fb Footprint, pb Pose) bool {
	if fa.Kind == FootprintNone || fb.Kind == FootprintNone {
		return false
	}

	// Cheap reject: circumscribed circles too far apart.
	if Distance(pa, pb) > fa.Radius2D()+fb.Radius2D() {
		return false
	}

	switch {
	case fa.Kind == FootprintRect && fb.Kind == FootprintRect:
		return rectRectOverlap(fa, pa, fb, pb)
	case fa.Kind == FootprintCircle && fb.Kind == FootprintCircle:
		return Distance(pa, pb) <= fa.Radius+fb.Radius
	case fa.Kind == FootprintRect && fb.Kind == FootprintCircle:
		return rectCircleOverlap(fa, pa, fb, pb)
	default:
		return rectCircleOverlap(fb, pb, fa, pa)
	}
}

// rectRectOverlap tests two axis-aligned rectangles via interval overlap
// on both axes.
func rectRectOverlap(fa Footprint, pa Pose, fb Footprint, pb Pose) bool {
	return math.Abs(pa.X-pb.X) <= (fa.Length+fb.Length)/2 &&
		math.Abs(pa.Y-pb.Y) <= (fa.Width+fb.Width)/2
}

// rectCircleOverlap tests an axis-aligned rectangle against a circle by
// clamping the circle center to the rectangle.
func rectCircleOverlap(rect Footprint, rp Pose, circ Footprint, cp Pose) bool {
	cx := clamp(cp.X, rp.X-rect.Length/2, rp.X+rect.Length/2)
	cy := clamp(cp.Y, rp.Y-rect.Width/2, rp.Y+rect.Width/2)
	return math.Hypot(cp.X-cx, cp.Y-cy) <= circ.Radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeAngle maps an angle in radians to the range (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
