package teleop

import (
	"image/color"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRenderer_RobotGlyphAtProjectedPose(t *testing.T) {
	r := NewFrameRenderer(200, 200, 200) // center (100, 100)
	r.ShowStatus = false

	pose := Transform2d{XMeters: 0, YMeters: 0, ThetaRadians: 0}
	img := r.Render(pose, true, nil, RobotStatus{})

	// Glyph center must be the projected live pose
	assert.Equal(t, r.Colors.Robot, img.RGBAAt(100, 100))
	// Background elsewhere
	assert.Equal(t, r.Colors.Background, img.RGBAAt(10, 190))
}

func TestFrameRenderer_MissingPoseSkipsGlyphOnly(t *testing.T) {
	r := NewFrameRenderer(200, 200, 200)
	r.ShowStatus = false

	nodes := []PoseGraphNode{{Tf: Transform2d{}, Scan: nil}}
	img := r.Render(Transform2d{}, false, nodes, RobotStatus{})

	// No robot fill at center, but the node ring still draws around it
	assert.NotEqual(t, r.Colors.Robot, img.RGBAAt(100, 100))
	assert.Equal(t, r.Colors.NodeRing, img.RGBAAt(100, 100-r.NodeRadiusPx))
}

func TestFrameRenderer_EmptyGraphDrawsOnlyRobot(t *testing.T) {
	r := NewFrameRenderer(200, 200, 200)
	r.ShowStatus = false

	img := r.Render(Transform2d{}, true, []PoseGraphNode{}, RobotStatus{})

	// Count non-background pixels; they must all belong to the glyph around
	// the center (circle radius + heading arms of 0.2m = 40px)
	bg := r.Colors.Background
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y) != bg {
				dx, dy := x-100, y-100
				if dx*dx+dy*dy > 45*45 {
					t.Fatalf("unexpected pixel at (%d,%d) far from robot glyph", x, y)
				}
			}
		}
	}
}

func TestFrameRenderer_ScanPointZeroHeading(t *testing.T) {
	r := NewFrameRenderer(400, 400, 100) // center (200, 200), 100 px/m
	r.ShowStatus = false
	r.ScanSizePx = 0 // single pixel, keeps the assertion exact

	// Node at (1, 0) heading 0 with one scan point 0.5m ahead: world (1.5, 0)
	node := PoseGraphNode{
		Tf:   Transform2d{XMeters: 1},
		Scan: []orb.Point{{0.5, 0}},
	}
	img := r.Render(Transform2d{}, false, []PoseGraphNode{node}, RobotStatus{})

	// project(1.5, 0) at 100 px/m, center (200,200) -> (200, 50)
	assert.Equal(t, r.Colors.ScanPoint, img.RGBAAt(200, 50))
}

func TestFrameRenderer_ScanPointRotated(t *testing.T) {
	r := NewFrameRenderer(400, 400, 100)
	r.ShowStatus = false
	r.ScanSizePx = 0

	// Heading π/2: scan point (0.5, 0) rotates to (0, -0.5) under the
	// x' = cosθ·x + sinθ·y, y' = cosθ·y − sinθ·x convention, so the world
	// point is (1, -0.5) and projects to (250, 100).
	node := PoseGraphNode{
		Tf:   Transform2d{XMeters: 1, ThetaRadians: math.Pi / 2},
		Scan: []orb.Point{{0.5, 0}},
	}
	img := r.Render(Transform2d{}, false, []PoseGraphNode{node}, RobotStatus{})

	assert.Equal(t, r.Colors.ScanPoint, img.RGBAAt(250, 100))
}

func TestFrameRenderer_Resize(t *testing.T) {
	r := NewFrameRenderer(200, 200, 200)
	r.ShowStatus = false
	r.Resize(400, 300)

	require.Equal(t, 400, r.Width)
	require.Equal(t, 300, r.Height)

	// Projector recentered in lockstep: origin now projects to (200, 150)
	img := r.Render(Transform2d{}, true, nil, RobotStatus{})
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
	assert.Equal(t, r.Colors.Robot, img.RGBAAt(200, 150))
}

func TestFrameRenderer_StatusOverlay(t *testing.T) {
	r := NewFrameRenderer(200, 200, 200)

	img := r.Render(Transform2d{}, false, nil, RobotStatus{Socket: true})

	// First swatch green (socket up), second red (lidar down)
	assert.Equal(t, r.Colors.StatusUp, img.RGBAAt(13, 12))
	assert.Equal(t, r.Colors.StatusDown, img.RGBAAt(13, 28))
}

func TestScanToWorld(t *testing.T) {
	node := PoseGraphNode{
		Tf:   Transform2d{XMeters: 1, YMeters: 2, ThetaRadians: 0},
		Scan: []orb.Point{{0.5, -0.25}},
	}
	world := ScanToWorld(&node)
	require.Len(t, world, 1)
	assert.InDelta(t, 1.5, world[0].X(), 1e-12)
	assert.InDelta(t, 1.75, world[0].Y(), 1e-12)
}

func TestDrawLine_Endpoints(t *testing.T) {
	r := NewFrameRenderer(50, 50, 100)
	img := r.Render(Transform2d{}, false, nil, RobotStatus{})
	c := color.RGBA{1, 2, 3, 255}
	drawLine(img, 5, 5, 20, 17, c)
	assert.Equal(t, c, img.RGBAAt(5, 5))
	assert.Equal(t, c, img.RGBAAt(20, 17))
}
