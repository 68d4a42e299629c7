package teleop

import "github.com/paulmach/orb"

// Projector maps world-frame meters to screen-frame pixels. The axis swap and
// negation put the robot's forward axis (+x world) toward the top of the frame
// and lateral (+y world) toward the left, matching the operator's view of the
// robot from behind. Scale is fixed for the process lifetime; only the center
// moves, and only on resize.
type Projector struct {
	Scale  float64 // pixels per meter
	center orb.Point
}

// NewProjector creates a projector centered on a w×h pixel frame.
func NewProjector(scale float64, width, height int) *Projector {
	p := &Projector{Scale: scale}
	p.Resize(width, height)
	return p
}

// Project maps a world point (meters) to a screen pixel coordinate.
func (p *Projector) Project(xMeters, yMeters float64) (float64, float64) {
	return -yMeters*p.Scale + p.center.X(), -xMeters*p.Scale + p.center.Y()
}

// ProjectPoint is Project for an orb.Point.
func (p *Projector) ProjectPoint(pt orb.Point) orb.Point {
	x, y := p.Project(pt.X(), pt.Y())
	return orb.Point{x, y}
}

// Resize recenters the projection on the midpoint of a w×h pixel frame.
func (p *Projector) Resize(width, height int) {
	p.center = orb.Point{float64(width) / 2, float64(height) / 2}
}

// Center returns the current recenter point (the screen position of the world
// origin).
func (p *Projector) Center() orb.Point {
	return p.center
}
