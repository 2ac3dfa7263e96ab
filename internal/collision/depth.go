package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/field"
)

// Region indexes the entries returned by Depths.
type Region int

const (
	RegionFront Region = iota
	RegionFace
	RegionLeftSide
	RegionRightSide
	RegionTop
	numRegions
)

func (r Region) String() string {
	switch r {
	case RegionFront:
		return "front"
	case RegionFace:
		return "face"
	case RegionLeftSide:
		return "left_side"
	case RegionRightSide:
		return "right_side"
	case RegionTop:
		return "slanted_top"
	default:
		return "unknown"
	}
}

// planeDepth is the shared shape of the plane depths: the segment
// runs from a1 to a2 along the plane's normal axis and crosses the plane at
// coordinate c. margins are evaluated at the crossing and must all be
// positive for the crossing to lie inside the panel.
func planeDepth(a1, a2, c float64, margins func(t float64) float64) float64 {
	da := a2 - a1
	if math.Abs(da) < degenerate {
		return -math.Max(math.Abs(a1-c), degenerate)
	}
	sign := 1.0
	if da < 0 {
		sign = -1
	}
	span := math.Min((c-a1)*sign, (a2-c)*sign)
	return math.Min(span, margins((c-a1)/da))
}

// FrontDepth is positive iff ThroughFront is true. Outside the opening the
// margin is the distance to its nearest edge.
func FrontDepth(w field.Wall, p1, p2 r3.Vec) float64 {
	return planeDepth(p1.X, p2.X, w.X, func(t float64) float64 {
		y := p1.Y + t*(p2.Y-p1.Y)
		z := p1.Z + t*(p2.Z-p1.Z)
		return -openingMargin(w, y, z)
	})
}

// FaceDepth is positive iff ThroughFace is true.
func FaceDepth(f field.FacePanel, p1, p2 r3.Vec) float64 {
	return planeDepth(p1.X, p2.X, f.X, func(t float64) float64 {
		y := p1.Y + t*(p2.Y-p1.Y)
		z := p1.Z + t*(p2.Z-p1.Z)
		return min(y-f.YMin, f.YMax-y, z-f.ZMin, f.ZMax-z)
	})
}

// SideDepth is positive iff ThroughSide is true.
func SideDepth(s field.SidePanel, p1, p2 r3.Vec) float64 {
	return planeDepth(p1.Y, p2.Y, s.Y, func(t float64) float64 {
		x := p1.X + t*(p2.X-p1.X)
		z := p1.Z + t*(p2.Z-p1.Z)
		return min(x-s.XWall, s.XFront-x, z-s.Lower(x), s.Upper(x)-z)
	})
}

// affine is c + d·s over the segment parameter s ∈ [0, 1].
type affine struct{ c, d float64 }

func (a affine) at(s float64) float64 { return a.c + a.d*s }

// TopDepth is max over the segment of the smallest margin to the bar's
// faces; positive iff some point of the segment is inside the bar.
//
// Between the wall and the lip h(x) is affine in x, so every margin is
// affine in the segment parameter and the maximum of their minimum is found
// at an end point or where two margins cross.
func TopDepth(b field.TopBar, p1, p2 r3.Vec) float64 {
	tan := math.Tan(b.Incline)
	dx, dy, dz := p2.X-p1.X, p2.Y-p1.Y, p2.Z-p1.Z

	// h(x) = BaseHeight + (XFront - x)·tan for x <= XFront
	h := affine{b.BaseHeight + (b.XFront-p1.X)*tan, -dx * tan}
	z := affine{p1.Z, dz}

	margins := [...]affine{
		{p1.X - b.XWall, dx},
		{b.XFront - p1.X, -dx},
		{p1.Y - b.YMin, dy},
		{b.YMax - p1.Y, -dy},
		{h.c - z.c, h.d - z.d},
		{z.c - h.c + b.Thickness, z.d - h.d},
	}

	phi := func(s float64) float64 {
		m := math.Inf(1)
		for _, a := range margins {
			m = math.Min(m, a.at(s))
		}
		return m
	}

	best := math.Max(phi(0), phi(1))
	for i := 0; i < len(margins); i++ {
		for j := i + 1; j < len(margins); j++ {
			dd := margins[i].d - margins[j].d
			if math.Abs(dd) < degenerate {
				continue
			}
			s := (margins[j].c - margins[i].c) / dd
			if s > 0 && s < 1 {
				best = math.Max(best, phi(s))
			}
		}
	}
	return best
}

// Depths returns the signed depth of the segment into every region, indexed
// by Region.
func Depths(g field.Geometry, p1, p2 r3.Vec) [numRegions]float64 {
	return [numRegions]float64{
		RegionFront:     FrontDepth(g.Wall, p1, p2),
		RegionFace:      FaceDepth(g.Face, p1, p2),
		RegionLeftSide:  SideDepth(g.Sides[0], p1, p2),
		RegionRightSide: SideDepth(g.Sides[1], p1, p2),
		RegionTop:       TopDepth(g.Top, p1, p2),
	}
}

// Clearance is the log-sum-exp soft maximum of the region depths with
// smoothing tau. It is never below the largest depth, so Clearance <= 0
// guarantees CrossesObstruction is false.
func Clearance(g field.Geometry, p1, p2 r3.Vec, tau float64) float64 {
	d := Depths(g, p1, p2)
	return SoftMax(d[:], tau)
}

// SoftMax returns tau·log(Σ exp(v_i/tau)), computed around the maximum so
// large depths do not overflow.
func SoftMax(v []float64, tau float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}
	m := v[0]
	for _, x := range v[1:] {
		m = math.Max(m, x)
	}
	if tau <= 0 {
		return m
	}
	var sum float64
	for _, x := range v {
		sum += math.Exp((x - m) / tau)
	}
	return m + tau*math.Log(sum)
}
