package teleop

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	initial := Transform2d{XMeters: 0.5, YMeters: 0.2, ThetaRadians: math.Pi / 2}
	delta := Transform2d{XMeters: 1.0, YMeters: 0.3, ThetaRadians: 1.0}

	got := Compose(initial, delta)
	assert.InDelta(t, 0.2, got.XMeters, 1e-9)
	assert.InDelta(t, 1.2, got.YMeters, 1e-9)
	assert.InDelta(t, math.Pi/2+1.0, got.ThetaRadians, 1e-9)
}

func TestCompose_Identity(t *testing.T) {
	pose := Transform2d{XMeters: 3, YMeters: -2, ThetaRadians: 0.7}
	got := Compose(pose, Transform2d{})
	assert.InDelta(t, pose.XMeters, got.XMeters, 1e-12)
	assert.InDelta(t, pose.YMeters, got.YMeters, 1e-12)
	assert.InDelta(t, pose.ThetaRadians, got.ThetaRadians, 1e-12)
}

func TestRotatePoint(t *testing.T) {
	t.Run("zero angle is identity", func(t *testing.T) {
		p := orb.Point{1.5, -0.25}
		got := RotatePoint(p, 0)
		if got != p {
			t.Errorf("RotatePoint(%v, 0) = %v, want unchanged", p, got)
		}
	})

	t.Run("quarter turn", func(t *testing.T) {
		got := RotatePoint(orb.Point{1, 0}, math.Pi/2)
		assert.InDelta(t, 0, got.X(), 1e-9)
		assert.InDelta(t, -1, got.Y(), 1e-9)
	})

	t.Run("preserves length", func(t *testing.T) {
		p := orb.Point{3, 4}
		got := RotatePoint(p, 1.234)
		assert.InDelta(t, 5.0, math.Hypot(got.X(), got.Y()), 1e-9)
	})
}

func TestExp(t *testing.T) {
	t.Run("pure translation", func(t *testing.T) {
		got := Exp(Twist2d{Dx: 2.0})
		assert.InDelta(t, 2.0, got.XMeters, 1e-9)
		assert.InDelta(t, 0.0, got.YMeters, 1e-9)
		assert.InDelta(t, 0.0, got.ThetaRadians, 1e-9)
	})

	t.Run("quarter arc", func(t *testing.T) {
		// Driving forward while turning π/2 traces a quarter circle: the
		// chord ends at (2r/π·π/2-ish); with dx=1, dtheta=π/2 the arc radius
		// is 2/π and the endpoint is (2/π, 2/π).
		got := Exp(Twist2d{Dx: 1.0, Dtheta: math.Pi / 2})
		assert.InDelta(t, 2/math.Pi, got.XMeters, 1e-9)
		assert.InDelta(t, 2/math.Pi, got.YMeters, 1e-9)
		assert.InDelta(t, math.Pi/2, got.ThetaRadians, 1e-9)
	})

	t.Run("small rotation stays continuous", func(t *testing.T) {
		exact := Exp(Twist2d{Dx: 1.0, Dtheta: 1e-6})
		series := Exp(Twist2d{Dx: 1.0, Dtheta: 1e-12})
		assert.InDelta(t, exact.XMeters, series.XMeters, 1e-6)
		assert.InDelta(t, exact.YMeters, series.YMeters, 1e-6)
	})
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-math.Pi / 2, -math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, NormalizeAngle(tc.in), 1e-9, "NormalizeAngle(%g)", tc.in)
	}
}

func TestDistance(t *testing.T) {
	d := Distance(orb.Point{0, 0}, orb.Point{3, 4})
	assert.InDelta(t, 5.0, d, 1e-12)
}
