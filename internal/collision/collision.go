// Package collision decides whether the straight segment between two
// trajectory knots passes through the structure around the speaker.
//
// Each region has a boolean check and a signed depth in metres. The depth is
// positive exactly when the boolean check is true, which lets the optimizer
// constrain Clearance (a smooth upper bound of the depths) instead of the
// disjunction itself.
package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
)

// degenerate is the smallest axis delta that is divided by when
// interpolating along that axis.
const degenerate = 1e-12

// InterpolateAtX returns y and z of the line through p1 and p2 at the given
// x. ok is false when p1 and p2 share the same x.
func InterpolateAtX(p1, p2 r3.Vec, x float64) (y, z float64, ok bool) {
	dx := p2.X - p1.X
	if math.Abs(dx) < degenerate {
		return 0, 0, false
	}
	t := (x - p1.X) / dx
	return p1.Y + t*(p2.Y-p1.Y), p1.Z + t*(p2.Z-p1.Z), true
}

// InterpolateAtY returns x and z of the line through p1 and p2 at the given
// y. ok is false when p1 and p2 share the same y.
func InterpolateAtY(p1, p2 r3.Vec, y float64) (x, z float64, ok bool) {
	dy := p2.Y - p1.Y
	if math.Abs(dy) < degenerate {
		return 0, 0, false
	}
	t := (y - p1.Y) / dy
	return p1.X + t*(p2.X-p1.X), p1.Z + t*(p2.Z-p1.Z), true
}

// strictlyBetween reports whether c lies strictly between a and b, in
// either order.
func strictlyBetween(a, b, c float64) bool {
	return (a < c && c < b) || (b < c && c < a)
}

// openingMargin is the smallest distance from (y, z) to an edge of the
// wall's opening; negative when the point is outside it.
func openingMargin(w field.Wall, y, z float64) float64 {
	return min(y-w.YMin, w.YMax-y, z-w.ZMin, w.ZMax-z)
}

// ThroughOpening reports whether the segment crosses the wall plane strictly
// inside the opening. This is the scoring passage, not an obstruction.
func ThroughOpening(w field.Wall, p1, p2 r3.Vec) bool {
	if !strictlyBetween(p1.X, p2.X, w.X) {
		return false
	}
	y, z, ok := InterpolateAtX(p1, p2, w.X)
	return ok && openingMargin(w, y, z) > 0
}

// ThroughFront reports whether the segment crosses the wall plane anywhere
// outside the opening: below it, above it or beside it.
func ThroughFront(w field.Wall, p1, p2 r3.Vec) bool {
	if !strictlyBetween(p1.X, p2.X, w.X) {
		return false
	}
	y, z, ok := InterpolateAtX(p1, p2, w.X)
	return ok && openingMargin(w, y, z) < 0
}

// ThroughFace reports whether the segment crosses the plane of the face
// panel inside the panel.
func ThroughFace(f field.FacePanel, p1, p2 r3.Vec) bool {
	if !strictlyBetween(p1.X, p2.X, f.X) {
		return false
	}
	y, z, ok := InterpolateAtX(p1, p2, f.X)
	if !ok {
		return false
	}
	return f.YMin < y && y < f.YMax && f.ZMin < z && z < f.ZMax
}

// ThroughSide reports whether the segment crosses the plane of side panel s
// inside its trapezoid.
func ThroughSide(s field.SidePanel, p1, p2 r3.Vec) bool {
	if !strictlyBetween(p1.Y, p2.Y, s.Y) {
		return false
	}
	x, z, ok := InterpolateAtY(p1, p2, s.Y)
	if !ok {
		return false
	}
	return s.XWall < x && x < s.XFront && s.Lower(x) < z && z < s.Upper(x)
}

// ThroughSides checks both side walls.
func ThroughSides(g field.Geometry, p1, p2 r3.Vec) bool {
	return ThroughSide(g.Sides[0], p1, p2) || ThroughSide(g.Sides[1], p1, p2)
}

// ThroughSlantedTop reports whether any point of the segment lies inside the
// slanted bar: between the wall and the lip, within the mouth width, and
// below h(x) but above the bar's underside.
func ThroughSlantedTop(b field.TopBar, p1, p2 r3.Vec) bool {
	return TopDepth(b, p1, p2) > 0
}

// CrossesObstruction is the danger-zone check for one segment.
func CrossesObstruction(g field.Geometry, p1, p2 r3.Vec) bool {
	return ThroughFront(g.Wall, p1, p2) ||
		ThroughFace(g.Face, p1, p2) ||
		ThroughSides(g, p1, p2) ||
		ThroughSlantedTop(g.Top, p1, p2)
}

// FirstCrossing returns the index k of the first segment (knots k, k+1) that
// crosses an obstruction, or -1.
func FirstCrossing(g field.Geometry, points []r3.Vec) int {
	for k := 0; k+1 < len(points); k++ {
		if CrossesObstruction(g, points[k], points[k+1]) {
			return k
		}
	}
	return -1
}
