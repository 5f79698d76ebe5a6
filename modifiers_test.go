package vfx

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// radiusLine extracts the emitted radius/extent statement from generated
// position code.
func radiusLine(t *testing.T, code string, marker string) string {
	t.Helper()
	for _, line := range strings.Split(code, "\n") {
		if strings.Contains(line, marker) {
			return line
		}
	}
	t.Fatalf("no line containing %q in generated code:\n%s", marker, code)
	return ""
}

func TestCircleSurfaceRadiusIsConstant(t *testing.T) {
	var layout InitLayout
	PositionCircleModifier{Radius: 2, Dimension: ShapeSurface}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "let r =")
	assert.Equal(t, "    let r = 2.;", line)
	assert.NotContains(t, line, "rand")
}

func TestSphereSurfaceRadiusIsConstant(t *testing.T) {
	var layout InitLayout
	PositionSphereModifier{Radius: 3.5, Dimension: ShapeSurface}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "let r =")
	assert.Equal(t, "    let r = 3.5;", line)
	assert.NotContains(t, line, "rand")
}

func TestCircleVolumeRadiusUsesAreaCorrection(t *testing.T) {
	var layout InitLayout
	PositionCircleModifier{Radius: 2, Dimension: ShapeVolume}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "let r =")
	assert.Contains(t, line, "sqrt(rand()) * 2.")
	assert.Equal(t, 1, strings.Count(line, "rand()"))
}

func TestSphereVolumeRadiusUsesVolumeCorrection(t *testing.T) {
	var layout InitLayout
	PositionSphereModifier{Radius: 2, Dimension: ShapeVolume}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "var r =")
	assert.Contains(t, line, "pow(rand(), 1./3.) * 2.")
	assert.Equal(t, 1, strings.Count(line, "rand()"))
}

func TestCubeVolumeExtentsUseComponentwiseSampling(t *testing.T) {
	var layout InitLayout
	PositionCubeModifier{
		Extents:   mgl32.Vec3{1, 2, 3},
		Dimension: ShapeVolume,
	}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "var extents =")
	assert.Contains(t, line, "rand3()")
	assert.Equal(t, 1, strings.Count(line, "rand3()"))
	// No distribution correction on a box.
	assert.NotContains(t, line, "sqrt")
	assert.NotContains(t, line, "pow")
}

func TestCubeSurfaceExtentsAreConstant(t *testing.T) {
	var layout InitLayout
	PositionCubeModifier{
		Extents:   mgl32.Vec3{1, 2, 3},
		Dimension: ShapeSurface,
	}.ApplyInit(&layout)

	line := radiusLine(t, layout.PositionCode, "let extents =")
	assert.Contains(t, line, "vec3<f32>(1., 2., 3.)")
	assert.NotContains(t, line, "rand")
}

func TestNormalAndRadialAgreeOnCircleAndSphere(t *testing.T) {
	speedNormal := SpeedVectorNormal(SingleValue(5))
	speedRadial := SpeedVectorRadial(SingleValue(5))

	var a, b InitLayout
	PositionCircleModifier{Radius: 1, Speed: speedNormal}.ApplyInit(&a)
	PositionCircleModifier{Radius: 1, Speed: speedRadial}.ApplyInit(&b)
	assert.Equal(t, a.PositionCode, b.PositionCode, "circle: normal and radial must emit the same text")

	a, b = InitLayout{}, InitLayout{}
	PositionSphereModifier{Radius: 1, Speed: speedNormal}.ApplyInit(&a)
	PositionSphereModifier{Radius: 1, Speed: speedRadial}.ApplyInit(&b)
	assert.Equal(t, a.PositionCode, b.PositionCode, "sphere: normal and radial must emit the same text")
}

func TestNormalAndRadialDifferOnCube(t *testing.T) {
	var a, b InitLayout
	cube := PositionCubeModifier{Extents: mgl32.Vec3{1, 1, 1}}

	cube.Speed = SpeedVectorNormal(SingleValue(5))
	cube.ApplyInit(&a)
	cube.Speed = SpeedVectorRadial(SingleValue(5))
	cube.ApplyInit(&b)

	assert.NotEqual(t, a.PositionCode, b.PositionCode)
	assert.Contains(t, a.PositionCode, "locked_axis_sign")
	assert.Contains(t, a.PositionCode, "normal[ si[0] ] = locked_axis_sign;")
	assert.Contains(t, b.PositionCode, "ret.vel = ret.pos * 5.;")
}

func TestLocalAndWorldSpeedVectors(t *testing.T) {
	var local, world InitLayout
	PositionSphereModifier{
		Radius: 1,
		Speed:  SpeedVectorLocal(SingleValue(1), SingleValue(2), SingleValue(3)),
	}.ApplyInit(&local)
	PositionSphereModifier{
		Radius: 1,
		Speed:  SpeedVectorWorld(SingleValue(1), SingleValue(2), SingleValue(3)),
	}.ApplyInit(&world)

	assert.Contains(t, local.PositionCode, "rotate_point(vec3<f32>(1., 2., 3.), rot)")
	assert.Contains(t, world.PositionCode, "ret.vel = vec3<f32>(1., 2., 3.);")
	assert.NotContains(t, world.PositionCode, "rotate_point(vec3<f32>(1., 2., 3.)")
}

func TestCircleBasisFollowsRotation(t *testing.T) {
	var layout InitLayout
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0})
	PositionCircleModifier{Radius: 1, Rotation: rot}.ApplyInit(&layout)

	tangent := Vec3Wgsl(rot.Rotate(mgl32.Vec3{1, 0, 0}))
	bitangent := Vec3Wgsl(rot.Rotate(mgl32.Vec3{0, 0, 1}))
	assert.Contains(t, layout.PositionCode, "let tangent = "+tangent+";")
	assert.Contains(t, layout.PositionCode, "let bitangent = "+bitangent+";")
}

func TestCubeWorldTranslationComesLast(t *testing.T) {
	var layout InitLayout
	PositionCubeModifier{
		Center:  mgl32.Vec3{1, 2, 3},
		Extents: mgl32.Vec3{1, 1, 1},
	}.ApplyInit(&layout)

	rotated := strings.Index(layout.PositionCode, "ret.pos = rotate_point(ret.pos, rot);")
	translated := strings.Index(layout.PositionCode, "ret.pos = ret.pos + c;")
	require.GreaterOrEqual(t, rotated, 0)
	require.GreaterOrEqual(t, translated, 0)
	assert.Less(t, rotated, translated, "rotation must happen before the world translation")
}

func TestSphereEndToEndScenario(t *testing.T) {
	var layout InitLayout
	PositionSphereModifier{
		Center:    mgl32.Vec3{0, 0, 0},
		Radius:    2.0,
		Dimension: ShapeVolume,
		Speed:     SpeedVectorRadial(SingleValue(5.0)),
	}.ApplyInit(&layout)

	assert.Contains(t, layout.PositionCode, "pow(rand(), 1./3.) * 2.")
	assert.Contains(t, layout.PositionCode, "ret.vel = dir * (5.);")
	assert.Contains(t, layout.PositionCode, "let c = vec3<f32>(0., 0., 0.);")
}

func TestPositionModifierOverwritesPreviousCode(t *testing.T) {
	var layout InitLayout
	PositionCircleModifier{Radius: 1}.ApplyInit(&layout)
	PositionSphereModifier{Radius: 2}.ApplyInit(&layout)

	assert.NotContains(t, layout.PositionCode, "bitangent", "sphere must fully replace the circle fragment")
	assert.Contains(t, layout.PositionCode, "Archimedes")
}

func TestModifierApplicationIsIdempotent(t *testing.T) {
	mods := []InitModifier{
		PositionCubeModifier{
			Center:    mgl32.Vec3{1, 2, 3},
			Extents:   mgl32.Vec3{4, 5, 6},
			Speed:     SpeedVectorNormal(UniformValue(1, 2)),
			Dimension: ShapeVolume,
		},
	}

	var a, b InitLayout
	for _, m := range mods {
		m.ApplyInit(&a)
	}
	for _, m := range mods {
		m.ApplyInit(&b)
	}
	assert.Equal(t, a, b, "generation must not depend on hidden state")
}

func TestAccelModifier(t *testing.T) {
	var layout UpdateLayout
	AccelModifier{Accel: mgl32.Vec3{0, -9.81, 0}}.ApplyUpdate(&layout)
	assert.Equal(t, mgl32.Vec3{0, -9.81, 0}, layout.Accel)
}

func TestForceFieldModifierPreservesSlotOrder(t *testing.T) {
	sources := make([]ForceFieldParam, FFNUM)
	for i := range sources {
		sources[i] = ForceFieldParam{Mass: float32(i + 1), MaxRadius: float32(i)}
	}

	m := NewForceFieldModifier(sources...)
	for i := range sources {
		assert.Equal(t, sources[i], m.ForceField[i], "slot %d", i)
	}
}

func TestForceFieldModifierRejectsTooManySources(t *testing.T) {
	sources := make([]ForceFieldParam, FFNUM+1)
	require.Panics(t, func() {
		NewForceFieldModifier(sources...)
	})
}

func TestForceFieldModifierEmptyHasSentinelInSlotZero(t *testing.T) {
	m := NewForceFieldModifier()
	assert.Equal(t, float32(0), m.ForceField[0].Mass, "slot 0 must stop evaluation immediately")
	assert.Equal(t, DefaultForceFieldParam(), m.ForceField[0])
}

func TestAddOrReplaceMutatesOnlyOneSlot(t *testing.T) {
	sources := make([]ForceFieldParam, FFNUM)
	for i := range sources {
		sources[i] = ForceFieldParam{Mass: float32(i + 1)}
	}
	m := NewForceFieldModifier(sources...)
	before := m.ForceField

	replacement := ForceFieldParam{Mass: -3, MinRadius: 0.2, MaxRadius: 9}
	m.AddOrReplace(replacement, 7)

	for i := 0; i < FFNUM; i++ {
		if i == 7 {
			assert.Equal(t, replacement, m.ForceField[i])
			continue
		}
		assert.Equal(t, before[i], m.ForceField[i], "slot %d must be untouched", i)
	}
}

func TestForceFieldApplyCopiesByValue(t *testing.T) {
	m := NewForceFieldModifier(ForceFieldParam{Mass: 2})
	var layout UpdateLayout
	m.ApplyUpdate(&layout)

	m.AddOrReplace(ForceFieldParam{Mass: 99}, 0)
	assert.Equal(t, float32(2), layout.ForceField[0].Mass, "layout must not alias the modifier array")
}

func TestRenderModifiersSetResolvedData(t *testing.T) {
	var colors ColorGradient
	colors.Add(0, mgl32.Vec4{1, 0, 0, 1}).Add(1, mgl32.Vec4{0, 0, 1, 0})
	var sizes SizeGradient
	sizes.Add(0, mgl32.Vec2{1, 1})

	handle := TextureHandle{id: "texture-1"}

	var layout RenderLayout
	ParticleTextureModifier{Texture: handle}.ApplyRender(&layout)
	ColorOverLifetimeModifier{Gradient: colors}.ApplyRender(&layout)
	SizeOverLifetimeModifier{Gradient: sizes}.ApplyRender(&layout)

	assert.Equal(t, handle.Id(), layout.ParticleTexture.Id())
	require.NotNil(t, layout.LifetimeColorGradient)
	require.NotNil(t, layout.LifetimeSizeGradient)
	assert.Len(t, layout.LifetimeColorGradient.Keys(), 2)

	// The layout owns a clone, not the modifier's gradient.
	colors.Add(0.5, mgl32.Vec4{0, 1, 0, 1})
	assert.Len(t, layout.LifetimeColorGradient.Keys(), 2)
}

func TestDefaultSpeedVectorIsUnitRadial(t *testing.T) {
	var layout InitLayout
	PositionSphereModifier{Radius: 1, Speed: DefaultSpeedVector()}.ApplyInit(&layout)
	assert.Contains(t, layout.PositionCode, "ret.vel = dir * (1.);")
}
