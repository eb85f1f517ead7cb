package geom

import "math"

// Vec is a 2D vector in world units. The combat core runs on the top-down
// plane; height never participates in hit checks.
type Vec struct {
	X float64
	Y float64
}

func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns the unit vector and true, or the zero vector and false
// when the input is too short to carry a direction.
func (v Vec) Normalized() (Vec, bool) {
	length := v.Length()
	if length < 1e-9 {
		return Vec{}, false
	}
	return Vec{X: v.X / length, Y: v.Y / length}, true
}

func Dist(a, b Vec) float64 {
	return a.Sub(b).Length()
}

// WithinRadius avoids the square root for plain range checks.
func WithinRadius(a, b Vec, radius float64) bool {
	if radius < 0 {
		return false
	}
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y <= radius*radius
}

// InCone reports whether point lies inside the cone opening from origin along
// forward. minDot is the cosine of the half-angle; reach bounds the distance.
func InCone(origin, forward, point Vec, reach, minDot float64) bool {
	offset := point.Sub(origin)
	if !WithinRadius(origin, point, reach) {
		return false
	}
	dir, ok := offset.Normalized()
	if !ok {
		// Target standing on the origin counts as in front.
		return true
	}
	fwd, ok := forward.Normalized()
	if !ok {
		return false
	}
	return fwd.Dot(dir) >= minDot
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
