package vfx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatWgsl renders a float32 as a WGSL f32 literal. The shortest exact
// representation is used, with a trailing dot appended when needed so the
// literal stays a float ("2" would be an abstract int in WGSL).
func FloatWgsl(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

// Vec2Wgsl renders a vec2<f32> constructor expression.
func Vec2Wgsl(v mgl32.Vec2) string {
	return fmt.Sprintf("vec2<f32>(%s, %s)", FloatWgsl(v.X()), FloatWgsl(v.Y()))
}

// Vec3Wgsl renders a vec3<f32> constructor expression.
func Vec3Wgsl(v mgl32.Vec3) string {
	return fmt.Sprintf("vec3<f32>(%s, %s, %s)", FloatWgsl(v.X()), FloatWgsl(v.Y()), FloatWgsl(v.Z()))
}

// Vec4Wgsl renders a vec4<f32> constructor expression.
func Vec4Wgsl(v mgl32.Vec4) string {
	return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)",
		FloatWgsl(v.X()), FloatWgsl(v.Y()), FloatWgsl(v.Z()), FloatWgsl(v.W()))
}

// QuatWgsl renders a quaternion as the vec4<f32> (x, y, z, w) form consumed
// by rotate_point in the shader templates.
func QuatWgsl(q mgl32.Quat) string {
	return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)",
		FloatWgsl(q.V.X()), FloatWgsl(q.V.Y()), FloatWgsl(q.V.Z()), FloatWgsl(q.W))
}
