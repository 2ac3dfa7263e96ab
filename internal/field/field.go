package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/config"
	"github.com/sciborgs1155/aion/internal/units"
)

// Target is the aim point the objective pulls the trajectory towards.
type Target struct {
	Position r3.Vec
	Radius   float64 // display only
}

// Window is the region behind the wall the final knot must land in. It
// sits inside the opening, inset by half the note's size on each edge.
type Window struct {
	WallX      float64 // final x must be strictly below this
	YMin, YMax float64
	ZMin, ZMax float64
}

// Contains reports whether p lies strictly inside the window volume behind
// the wall plane.
func (w Window) Contains(p r3.Vec) bool {
	return p.X < w.WallX && w.YMin < p.Y && p.Y < w.YMax && w.ZMin < p.Z && p.Z < w.ZMax
}

// Wall is the speaker wall, the plane x = X. It is solid everywhere except
// the rectangular opening.
type Wall struct {
	X          float64
	YMin, YMax float64 // opening
	ZMin, ZMax float64 // opening
}

// FacePanel is the solid face below the speaker mouth, a rectangle in the
// plane x = X at the hood's front lip.
type FacePanel struct {
	X          float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// SidePanel is one side wall of the speaker hood, a trapezoid in the plane
// y = Y spanning x ∈ (XWall, XFront). Its lower and upper edges are linear
// in x between the heights at the wall and at the front lip.
type SidePanel struct {
	Y             float64
	XWall, XFront float64
	LowAtWall     float64
	LowAtFront    float64
	HighAtWall    float64
	HighAtFront   float64
}

// Lower returns the panel's lower edge height at x.
func (s SidePanel) Lower(x float64) float64 {
	return lerp1(s.LowAtWall, s.LowAtFront, (x-s.XWall)/(s.XFront-s.XWall))
}

// Upper returns the panel's upper edge height at x.
func (s SidePanel) Upper(x float64) float64 {
	return lerp1(s.HighAtWall, s.HighAtFront, (x-s.XWall)/(s.XFront-s.XWall))
}

// TopBar is the slanted bar over the mouth. Its top surface is
// h(x) = BaseHeight + |x - XFront|·tan(Incline); the bar is Thickness deep
// below that surface.
type TopBar struct {
	XWall, XFront float64
	YMin, YMax    float64
	BaseHeight    float64
	Incline       float64 // radians
	Thickness     float64
}

// HeightAt returns h(x), the height of the bar's top surface.
func (b TopBar) HeightAt(x float64) float64 {
	return b.BaseHeight + math.Abs(x-b.XFront)*math.Tan(b.Incline)
}

// Geometry groups the obstruction regions around the speaker.
type Geometry struct {
	Wall  Wall
	Face  FacePanel
	Sides [2]SidePanel
	Top   TopBar
}

// Aero holds the note's physical and aerodynamic constants.
type Aero struct {
	Gravity        float64
	AirDensity     float64
	NoteDiameter   float64
	NoteWidth      float64
	Mass           float64
	DragCoeffBase  float64
	DragCoeffAngle float64
	LiftCoeffBase  float64
	LiftCoeffAngle float64
}

// RingArea is the annulus area presented face-on.
func (a Aero) RingArea() float64 {
	outer := a.NoteDiameter / 2
	inner := (a.NoteDiameter - a.NoteWidth) / 2
	return math.Pi*outer*outer - math.Pi*inner*inner
}

// RectangleArea is the edge-on profile area.
func (a Aero) RectangleArea() float64 {
	return a.NoteDiameter * a.NoteWidth
}

// Limits bounds the launch.
type Limits struct {
	MaxLaunchVelocity float64
	MinLaunchAngle    float64
	MaxLaunchAngle    float64
}

// Params is the immutable description of one solve's world.
type Params struct {
	FieldWidth    float64
	FieldLength   float64
	ShooterHeight float64
	KnotCount     int

	Target   Target
	Window   Window
	Geometry Geometry
	Aero     Aero
	Limits   Limits
}

// Default returns Params built from the built-in configuration defaults.
func Default() Params {
	return ParamsFromConfig(config.EmptyShotConfig())
}

// ParamsFromConfig builds Params from a loaded ShotConfig.
func ParamsFromConfig(cfg *config.ShotConfig) Params {
	width := cfg.GetFieldWidth()
	centerY := width / 2
	dy := cfg.GetSpeakerWidth()
	dx := cfg.GetSpeakerDepth()
	dz := cfg.GetSpeakerWindowHeight()
	incline := units.DegreesToRadians(cfg.GetSpeakerInclineDeg())
	lowEdge := cfg.GetSpeakerLowEdge()
	noteD := cfg.GetNoteDiameter()
	noteW := cfg.GetNoteWidth()

	barThickness := dz - 2*dx*math.Tan(incline)
	top := TopBar{
		XWall:      0,
		XFront:     dx,
		YMin:       centerY - dy/2,
		YMax:       centerY + dy/2,
		BaseHeight: cfg.GetSpeakerTopEdge() + barThickness,
		Incline:    incline,
		Thickness:  barThickness,
	}

	side := func(y float64) SidePanel {
		return SidePanel{
			Y:           y,
			XWall:       0,
			XFront:      dx,
			LowAtWall:   lowEdge,
			LowAtFront:  lowEdge,
			HighAtWall:  top.HeightAt(0),
			HighAtFront: top.HeightAt(dx),
		}
	}

	// the note's centre must clear the opening edges by half its size
	insetY := noteD / 2
	insetZ := noteW / 2

	return Params{
		FieldWidth:    width,
		FieldLength:   cfg.GetFieldLength(),
		ShooterHeight: cfg.GetShooterHeight(),
		KnotCount:     cfg.GetKnotCount(),
		Target: Target{
			Position: r3.Vec{X: cfg.GetTargetX(), Y: cfg.GetTargetY(), Z: cfg.GetTargetZ()},
			Radius:   cfg.GetTargetRadius(),
		},
		Window: Window{
			WallX: 0,
			YMin:  centerY - dy/2 + insetY,
			YMax:  centerY + dy/2 - insetY,
			ZMin:  lowEdge + insetZ,
			ZMax:  lowEdge + dz - insetZ,
		},
		Geometry: Geometry{
			Wall: Wall{
				X:    0,
				YMin: centerY - dy/2,
				YMax: centerY + dy/2,
				ZMin: lowEdge,
				ZMax: lowEdge + dz,
			},
			Face: FacePanel{
				X:    dx,
				YMin: centerY - dy/2,
				YMax: centerY + dy/2,
				ZMin: 0,
				ZMax: lowEdge,
			},
			Sides: [2]SidePanel{side(centerY - dy/2), side(centerY + dy/2)},
			Top:   top,
		},
		Aero: Aero{
			Gravity:        cfg.GetGravity(),
			AirDensity:     cfg.GetAirDensity(),
			NoteDiameter:   noteD,
			NoteWidth:      noteW,
			Mass:           cfg.GetNoteMass(),
			DragCoeffBase:  cfg.GetDragCoeffBase(),
			DragCoeffAngle: cfg.GetDragCoeffAngle(),
			LiftCoeffBase:  cfg.GetLiftCoeffBase(),
			LiftCoeffAngle: cfg.GetLiftCoeffAngle(),
		},
		Limits: Limits{
			MaxLaunchVelocity: cfg.GetMaxLaunchVelocity(),
			MinLaunchAngle:    cfg.GetMinLaunchAngle(),
			MaxLaunchAngle:    cfg.GetMaxLaunchAngle(),
		},
	}
}

// OnField reports whether ground position (x, y) is on the playing side of
// the speaker wall and within the field.
func (p Params) OnField(x, y float64) bool {
	return p.Window.WallX < x && x <= p.FieldLength && 0 <= y && y <= p.FieldWidth
}

// Shooter returns the launch point for a ground position.
func (p Params) Shooter(x, y float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: p.ShooterHeight}
}

func lerp1(a, b, t float64) float64 { return a + t*(b-a) }
