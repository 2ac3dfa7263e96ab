package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sciborgs1155/aion/internal/config"
)

func TestDefaultParams(t *testing.T) {
	p := Default()

	assert.Equal(t, 20, p.KnotCount)
	assert.InDelta(t, 8.2296/2, p.Target.Position.Y, 1e-12)
	assert.Equal(t, 2.0, p.Target.Position.Z)
	assert.Equal(t, 7.0, p.Limits.MaxLaunchVelocity)

	// opening in the wall: mouth width, Δz up from the low edge
	wall := p.Geometry.Wall
	assert.Equal(t, 0.0, wall.X)
	assert.InDelta(t, 4.1148-0.5255, wall.YMin, 1e-9)
	assert.InDelta(t, 4.1148+0.5255, wall.YMax, 1e-9)
	assert.InDelta(t, 2.002, wall.ZMin, 1e-12)
	assert.InDelta(t, 2.518, wall.ZMax, 1e-12)

	// window: the opening inset so the note's centre clears the edges
	assert.InDelta(t, wall.YMin+0.178, p.Window.YMin, 1e-9)
	assert.InDelta(t, wall.YMax-0.178, p.Window.YMax, 1e-9)
	assert.InDelta(t, 2.002+0.0254, p.Window.ZMin, 1e-9)
	assert.InDelta(t, 2.518-0.0254, p.Window.ZMax, 1e-9)
	assert.Equal(t, 0.0, p.Window.WallX)
}

func TestWindowInsideOpening(t *testing.T) {
	p := Default()
	w, o := p.Window, p.Geometry.Wall
	assert.Equal(t, o.X, w.WallX)
	assert.Greater(t, w.YMin, o.YMin)
	assert.Less(t, w.YMax, o.YMax)
	assert.Greater(t, w.ZMin, o.ZMin)
	assert.Less(t, w.ZMax, o.ZMax)
}

func TestFacePanel(t *testing.T) {
	p := Default()
	face := p.Geometry.Face
	assert.Equal(t, p.Geometry.Top.XFront, face.X)
	assert.Equal(t, 0.0, face.ZMin)
	assert.Equal(t, p.Geometry.Wall.ZMin, face.ZMax)
}

func TestOnField(t *testing.T) {
	p := Default()
	assert.True(t, p.OnField(2, p.FieldWidth/2))
	assert.True(t, p.OnField(p.FieldLength, 0))
	assert.False(t, p.OnField(0, p.FieldWidth/2), "on the wall plane")
	assert.False(t, p.OnField(-1, p.FieldWidth/2), "behind the wall")
	assert.False(t, p.OnField(2, -0.1))
	assert.False(t, p.OnField(p.FieldLength+0.1, 1))
}

func TestTopBarGeometry(t *testing.T) {
	bar := Default().Geometry.Top
	tan14 := math.Tan(14 * math.Pi / 180)

	assert.InDelta(t, 0.516-2*0.451*tan14, bar.Thickness, 1e-12)
	assert.InDelta(t, 2.124+bar.Thickness, bar.BaseHeight, 1e-12)

	// h is lowest at the front lip and rises toward the wall
	assert.InDelta(t, bar.BaseHeight, bar.HeightAt(bar.XFront), 1e-12)
	assert.InDelta(t, bar.BaseHeight+0.451*tan14, bar.HeightAt(bar.XWall), 1e-12)
	// |x - front| makes h symmetric about the lip
	assert.InDelta(t, bar.HeightAt(bar.XFront-0.1), bar.HeightAt(bar.XFront+0.1), 1e-12)
	// underside of the bar at the lip is the speaker top edge
	assert.InDelta(t, 2.124, bar.HeightAt(bar.XFront)-bar.Thickness, 1e-12)
}

func TestSidePanelEdges(t *testing.T) {
	p := Default()
	left, right := p.Geometry.Sides[0], p.Geometry.Sides[1]

	assert.InDelta(t, p.FieldWidth/2-1.051/2, left.Y, 1e-12)
	assert.InDelta(t, p.FieldWidth/2+1.051/2, right.Y, 1e-12)

	mid := (left.XWall + left.XFront) / 2
	assert.InDelta(t, 2.002, left.Lower(mid), 1e-12)
	assert.InDelta(t, (left.HighAtWall+left.HighAtFront)/2, left.Upper(mid), 1e-12)
	assert.InDelta(t, p.Geometry.Top.HeightAt(left.XFront), left.Upper(left.XFront), 1e-12)
}

func TestWindowContains(t *testing.T) {
	w := Default().Window
	inside := r3.Vec{X: -0.1, Y: (w.YMin + w.YMax) / 2, Z: (w.ZMin + w.ZMax) / 2}

	tests := []struct {
		name string
		p    r3.Vec
		want bool
	}{
		{"centre behind wall", inside, true},
		{"in front of wall", r3.Vec{X: 0.1, Y: inside.Y, Z: inside.Z}, false},
		{"on wall plane", r3.Vec{X: 0, Y: inside.Y, Z: inside.Z}, false},
		{"too high", r3.Vec{X: -0.1, Y: inside.Y, Z: w.ZMax + 0.01}, false},
		{"too far left", r3.Vec{X: -0.1, Y: w.YMin - 0.01, Z: inside.Z}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.p))
		})
	}
}

func TestAeroAreas(t *testing.T) {
	a := Default().Aero
	assert.InDelta(t, 0.356*0.0508, a.RectangleArea(), 1e-12)
	want := math.Pi*0.178*0.178 - math.Pi*0.1526*0.1526
	assert.InDelta(t, want, a.RingArea(), 1e-12)
}

func TestParamsFromConfigOverrides(t *testing.T) {
	cfg := config.DefaultShotConfig()
	width := 10.0
	cfg.FieldWidth = &width
	cfg.TargetY = nil

	p := ParamsFromConfig(cfg)
	assert.Equal(t, 5.0, p.Target.Position.Y)
	assert.Equal(t, 5.0-1.051/2, p.Geometry.Wall.YMin)
	assert.Equal(t, 5.0-1.051/2, p.Geometry.Face.YMin)
	assert.Equal(t, r3.Vec{X: 2, Y: 3, Z: 0.635}, p.Shooter(2, 3))
}
