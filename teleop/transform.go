package teleop

import (
	"math"

	"github.com/paulmach/orb"
)

// Compose chains two poses: the rhs translation is rotated into the lhs frame,
// added, and the headings sum. Equivalent to multiplying the homogeneous
// transform matrices world→a and a→b.
func Compose(a, b Transform2d) Transform2d {
	cos := math.Cos(a.ThetaRadians)
	sin := math.Sin(a.ThetaRadians)
	return Transform2d{
		XMeters:      a.XMeters + b.XMeters*cos - b.YMeters*sin,
		YMeters:      a.YMeters + b.XMeters*sin + b.YMeters*cos,
		ThetaRadians: a.ThetaRadians + b.ThetaRadians,
	}
}

// RotatePoint rotates a sensor-local point into a pose frame with heading
// theta: x' = cosθ·x + sinθ·y, y' = cosθ·y − sinθ·x.
func RotatePoint(p orb.Point, theta float64) orb.Point {
	cos := math.Cos(theta)
	sin := math.Sin(theta)
	return orb.Point{
		cos*p.X() + sin*p.Y(),
		cos*p.Y() - sin*p.X(),
	}
}

// Exp integrates a twist applied for one unit of time into a pose delta,
// following the robot along a constant-curvature arc. Near-zero rotation uses
// the small-angle series to avoid dividing by dtheta.
func Exp(t Twist2d) Transform2d {
	var s, c float64
	if math.Abs(t.Dtheta) < 1e-9 {
		s = 1.0 - t.Dtheta*t.Dtheta/6.0
		c = 0.5 * t.Dtheta
	} else {
		s = math.Sin(t.Dtheta) / t.Dtheta
		c = (1.0 - math.Cos(t.Dtheta)) / t.Dtheta
	}
	return Transform2d{
		XMeters:      t.Dx*s - t.Dy*c,
		YMeters:      t.Dx*c + t.Dy*s,
		ThetaRadians: t.Dtheta,
	}
}

// NormalizeAngle wraps an angle in radians to (-π, π].
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta > math.Pi {
		theta -= 2 * math.Pi
	} else if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// Distance calculates Euclidean distance between two points
func Distance(p1, p2 orb.Point) float64 {
	dx := p2.X() - p1.X()
	dy := p2.Y() - p1.Y()
	return math.Sqrt(dx*dx + dy*dy)
}
