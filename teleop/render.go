package teleop

import (
	"fmt"
	"image"
	"image/color"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// headingArmMeters is the length of the two heading vectors drawn from the
// robot glyph, one along the forward axis and one along the lateral axis.
const headingArmMeters = 0.2

// Palette defines the colors used for a rendered frame
type Palette struct {
	Background color.RGBA
	Robot      color.RGBA
	Forward    color.RGBA // forward-axis heading arm
	Lateral    color.RGBA // lateral-axis heading arm
	NodeRing   color.RGBA
	ScanPoint  color.RGBA
	StatusUp   color.RGBA
	StatusDown color.RGBA
}

// DefaultPalette returns the dashboard's dark theme
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{24, 24, 28, 255},
		Robot:      color.RGBA{80, 160, 255, 255},
		Forward:    color.RGBA{255, 80, 80, 255},
		Lateral:    color.RGBA{80, 220, 120, 255},
		NodeRing:   color.RGBA{120, 120, 140, 255},
		ScanPoint:  color.RGBA{230, 230, 240, 255},
		StatusUp:   color.RGBA{80, 220, 120, 255},
		StatusDown: color.RGBA{255, 80, 80, 255},
	}
}

// FrameRenderer paints one complete frame of the trajectory view: background,
// live robot glyph, and every pose-graph node's ring and scan points. It never
// mutates the store; callers hand it a snapshot.
type FrameRenderer struct {
	Width, Height int
	Projector     *Projector
	Colors        Palette

	RobotRadiusPx int // robot glyph radius (default 6)
	NodeRadiusPx  int // node ring radius (default 3)
	ScanSizePx    int // scan point square size (default 2)
	ShowStatus    bool
}

// NewFrameRenderer creates a renderer over a fresh projector with the given
// scale and frame size.
func NewFrameRenderer(width, height int, scale float64) *FrameRenderer {
	return &FrameRenderer{
		Width:         width,
		Height:        height,
		Projector:     NewProjector(scale, width, height),
		Colors:        DefaultPalette(),
		RobotRadiusPx: 6,
		NodeRadiusPx:  3,
		ScanSizePx:    2,
		ShowStatus:    true,
	}
}

// Resize changes the frame size and recenters the projector in lockstep, so
// no frame is ever drawn with a stale center.
func (r *FrameRenderer) Resize(width, height int) {
	r.Width = width
	r.Height = height
	r.Projector.Resize(width, height)
}

// Render paints a snapshot into a new image. A missing live pose skips the
// robot glyph only; everything else still draws.
func (r *FrameRenderer) Render(livePose Transform2d, hasPose bool, nodes []PoseGraphNode, status RobotStatus) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	fill(img, r.Colors.Background)

	for i := range nodes {
		r.drawNode(img, &nodes[i])
	}

	if hasPose {
		r.drawRobot(img, livePose)
	}

	if r.ShowStatus {
		r.drawStatus(img, status)
	}
	return img
}

// drawRobot draws the live robot glyph: a filled circle at the projected pose
// plus the forward and lateral heading arms.
func (r *FrameRenderer) drawRobot(img *image.RGBA, pose Transform2d) {
	cx, cy := r.Projector.Project(pose.XMeters, pose.YMeters)
	drawCircle(img, int(cx), int(cy), r.RobotRadiusPx, r.Colors.Robot)

	forward := Compose(pose, Transform2d{XMeters: headingArmMeters})
	fx, fy := r.Projector.Project(forward.XMeters, forward.YMeters)
	drawLine(img, int(cx), int(cy), int(fx), int(fy), r.Colors.Forward)

	lateral := Compose(pose, Transform2d{YMeters: headingArmMeters})
	lx, ly := r.Projector.Project(lateral.XMeters, lateral.YMeters)
	drawLine(img, int(cx), int(cy), int(lx), int(ly), r.Colors.Lateral)
}

// drawNode draws a historical pose ring and the node's scan points rotated
// into the node's frame.
func (r *FrameRenderer) drawNode(img *image.RGBA, node *PoseGraphNode) {
	nx, ny := r.Projector.Project(node.Tf.XMeters, node.Tf.YMeters)
	drawRing(img, int(nx), int(ny), r.NodeRadiusPx, r.Colors.NodeRing)

	for _, sp := range node.Scan {
		rotated := RotatePoint(sp, node.Tf.ThetaRadians)
		wx := node.Tf.XMeters + rotated.X()
		wy := node.Tf.YMeters + rotated.Y()
		px, py := r.Projector.Project(wx, wy)
		drawSquare(img, int(px), int(py), r.ScanSizePx, r.Colors.ScanPoint)
	}
}

// drawStatus draws the connectivity flags in the top-left corner.
func (r *FrameRenderer) drawStatus(img *image.RGBA, status RobotStatus) {
	rows := []struct {
		label string
		up    bool
	}{
		{"socket", status.Socket},
		{"lidar", status.Lidar},
		{"arduino", status.Arduino},
	}

	y := 15
	for _, row := range rows {
		c := r.Colors.StatusDown
		state := "down"
		if row.up {
			c = r.Colors.StatusUp
			state = "up"
		}
		drawSquare(img, 13, y-3, 8, c)
		drawText(img, 24, y, fmt.Sprintf("%s: %s", row.label, state), color.RGBA{220, 220, 220, 255})
		y += 16
	}
}

// fill paints the whole image with a single color
func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawCircle draws a filled circle, clipped to the image bounds
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawRing draws a one-pixel-wide circle outline
func drawRing(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	inner := (radius - 1) * (radius - 1)
	outer := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := dx*dx + dy*dy
			if d > inner && d <= outer {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawSquare draws a filled square centered on (cx, cy)
func drawSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			setPixel(img, cx+dx, cy+dy, c)
		}
	}
}

// drawLine draws a one-pixel line using Bresenham's algorithm
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ScanToWorld converts a node's scan into world-frame points, rotating each
// point by the node heading and translating by the node position. Used by the
// vector renderer and exposed for diagnostics.
func ScanToWorld(node *PoseGraphNode) []orb.Point {
	out := make([]orb.Point, len(node.Scan))
	for i, sp := range node.Scan {
		rotated := RotatePoint(sp, node.Tf.ThetaRadians)
		out[i] = orb.Point{
			node.Tf.XMeters + rotated.X(),
			node.Tf.YMeters + rotated.Y(),
		}
	}
	return out
}
