package vfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFloatWgsl(t *testing.T) {
	assert.Equal(t, "2.", FloatWgsl(2))
	assert.Equal(t, "0.5", FloatWgsl(0.5))
	assert.Equal(t, "-3.25", FloatWgsl(-3.25))
	assert.Equal(t, "0.", FloatWgsl(0))
	assert.Equal(t, "9.81", FloatWgsl(9.81))
}

func TestVecWgsl(t *testing.T) {
	assert.Equal(t, "vec2<f32>(1., 2.)", Vec2Wgsl(mgl32.Vec2{1, 2}))
	assert.Equal(t, "vec3<f32>(1., 2., 3.)", Vec3Wgsl(mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, "vec4<f32>(1., 2., 3., 4.)", Vec4Wgsl(mgl32.Vec4{1, 2, 3, 4}))
}

func TestQuatWgsl(t *testing.T) {
	q := mgl32.Quat{W: 1, V: mgl32.Vec3{0, 0, 0}}
	assert.Equal(t, "vec4<f32>(0., 0., 0., 1.)", QuatWgsl(q))
}

func TestSingleValueRendersLiteral(t *testing.T) {
	assert.Equal(t, "5.", SingleValue(5).ToWgsl())
	assert.Equal(t, ValueSingle, SingleValue(5).Kind())
}

func TestUniformValueRendersRandCall(t *testing.T) {
	v := UniformValue(1, 3)
	assert.Equal(t, "(rand() * (3. - 1.) + 1.)", v.ToWgsl())
	assert.Equal(t, ValueUniform, v.Kind())
}

func TestValueRenderingIsDeterministic(t *testing.T) {
	v := UniformValue(0.25, 4.5)
	first := v.ToWgsl()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, v.ToWgsl())
	}
}

func TestZeroValueRendersZeroLiteral(t *testing.T) {
	var v Value
	assert.Equal(t, "0.", v.ToWgsl())
}
