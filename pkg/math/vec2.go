package math

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Min returns the per-axis minimum of v and other.
func (v Vec2) Min(other Vec2) Vec2 {
	return Vec2{math.Min(v.X, other.X), math.Min(v.Y, other.Y)}
}

// Max returns the per-axis maximum of v and other.
func (v Vec2) Max(other Vec2) Vec2 {
	return Vec2{math.Max(v.X, other.X), math.Max(v.Y, other.Y)}
}
