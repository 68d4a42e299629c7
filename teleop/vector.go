package teleop

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders a pose-graph snapshot as vector graphics for offline
// inspection. Unlike the live FrameRenderer it fits its viewport to the data:
// bounds are computed from every node pose and world-frame scan point, then
// padded. Output units are meters scaled by UnitsPerMeter.
type VectorRenderer struct {
	Nodes    []PoseGraphNode
	LivePose *Transform2d // nil when no odometry has arrived yet

	UnitsPerMeter float64           // canvas units per world meter (default 100)
	Padding       float64           // padding around the data, meters
	GridSpacing   float64           // grid line spacing in meters; 0 disables
	Resolution    canvas.Resolution // PNG output resolution
}

// NewVectorRenderer creates a vector renderer with default settings
func NewVectorRenderer(nodes []PoseGraphNode, livePose *Transform2d) *VectorRenderer {
	return &VectorRenderer{
		Nodes:         nodes,
		LivePose:      livePose,
		UnitsPerMeter: 100.0,
		Padding:       0.5, // meters
		GridSpacing:   1.0, // 1m grid
		Resolution:    canvas.DPI(150),
	}
}

// canvasRenderer is the interface both the svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the pose graph as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.worldBounds()
	width := (maxX - minX + 2*r.Padding) * r.UnitsPerMeter
	height := (maxY - minY + 2*r.Padding) * r.UnitsPerMeter

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, maxX, maxY, width, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the pose graph as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.worldBounds()
	width := (maxX - minX + 2*r.Padding) * r.UnitsPerMeter
	height := (maxY - minY + 2*r.Padding) * r.UnitsPerMeter

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, maxX, maxY, width, height)
	return png.Encode(w, rast)
}

// renderToCanvas renders the snapshot to a canvas renderer (shared by SVG and PNG)
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, maxX, maxY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// Helper to map world meters to canvas units
	toCanvas := func(p orb.Point) (float64, float64) {
		return (p.X() - minX + r.Padding) * r.UnitsPerMeter,
			(p.Y() - minY + r.Padding) * r.UnitsPerMeter
	}

	// Grid lines
	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.5
		gridStyle.Dashes = []float64{4.0, 4.0}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			p := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{x, minY})
			x2, y2 := toCanvas(orb.Point{x, maxY})
			p.MoveTo(x1, y1)
			p.LineTo(x2, y2)
			renderer.RenderPath(p, gridStyle, canvas.Identity)
		}
		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			p := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{minX, y})
			x2, y2 := toCanvas(orb.Point{maxX, y})
			p.MoveTo(x1, y1)
			p.LineTo(x2, y2)
			renderer.RenderPath(p, gridStyle, canvas.Identity)
		}
	}

	// Trajectory polyline through the node poses, in graph order
	if len(r.Nodes) > 1 {
		trajStyle := canvas.DefaultStyle
		trajStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		trajStyle.Stroke = canvas.Paint{Color: color.RGBA{70, 130, 180, 255}}
		trajStyle.StrokeWidth = 1.5

		p := &canvas.Path{}
		for i := range r.Nodes {
			cx, cy := toCanvas(orb.Point{r.Nodes[i].Tf.XMeters, r.Nodes[i].Tf.YMeters})
			if i == 0 {
				p.MoveTo(cx, cy)
			} else {
				p.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(p, trajStyle, canvas.Identity)
	}

	// Scan points, world frame
	scanStyle := canvas.DefaultStyle
	scanStyle.Fill = canvas.Paint{Color: color.RGBA{105, 105, 105, 255}}
	scanStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

	for i := range r.Nodes {
		for _, wp := range ScanToWorld(&r.Nodes[i]) {
			cx, cy := toCanvas(wp)
			dot := canvas.Circle(1.0).Translate(cx, cy)
			renderer.RenderPath(dot, scanStyle, canvas.Identity)
		}
	}

	// Node pose rings
	nodeStyle := canvas.DefaultStyle
	nodeStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	nodeStyle.Stroke = canvas.Paint{Color: color.RGBA{70, 130, 180, 255}}
	nodeStyle.StrokeWidth = 1.0

	for i := range r.Nodes {
		cx, cy := toCanvas(orb.Point{r.Nodes[i].Tf.XMeters, r.Nodes[i].Tf.YMeters})
		ring := canvas.Circle(3.0).Translate(cx, cy)
		renderer.RenderPath(ring, nodeStyle, canvas.Identity)
	}

	// Live robot marker: filled circle plus heading tick
	if r.LivePose != nil {
		robotStyle := canvas.DefaultStyle
		robotStyle.Fill = canvas.Paint{Color: color.RGBA{255, 69, 0, 255}}
		robotStyle.Stroke = canvas.Paint{Color: canvas.Black}
		robotStyle.StrokeWidth = 1.0

		cx, cy := toCanvas(orb.Point{r.LivePose.XMeters, r.LivePose.YMeters})
		body := canvas.Circle(6.0).Translate(cx, cy)
		renderer.RenderPath(body, robotStyle, canvas.Identity)

		tip := Compose(*r.LivePose, Transform2d{XMeters: headingArmMeters})
		tx, ty := toCanvas(orb.Point{tip.XMeters, tip.YMeters})
		headingStyle := canvas.DefaultStyle
		headingStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		headingStyle.Stroke = canvas.Paint{Color: canvas.Black}
		headingStyle.StrokeWidth = 1.5

		line := &canvas.Path{}
		line.MoveTo(cx, cy)
		line.LineTo(tx, ty)
		renderer.RenderPath(line, headingStyle, canvas.Identity)
	}
}

// worldBounds computes the bounding box of all node poses, world-frame scan
// points, and the live pose. An empty graph yields a small box around the
// origin so the output is never degenerate.
func (r *VectorRenderer) worldBounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	extend := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	for i := range r.Nodes {
		extend(r.Nodes[i].Tf.XMeters, r.Nodes[i].Tf.YMeters)
		for _, wp := range ScanToWorld(&r.Nodes[i]) {
			extend(wp.X(), wp.Y())
		}
	}
	if r.LivePose != nil {
		extend(r.LivePose.XMeters, r.LivePose.YMeters)
	}

	if minX > maxX {
		// Nothing to draw yet
		return -1, -1, 1, 1
	}
	return minX, minY, maxX, maxY
}
