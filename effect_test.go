package vfx

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEffect() *EffectAsset {
	var colors ColorGradient
	colors.Add(0, mgl32.Vec4{1, 1, 1, 1}).Add(1, mgl32.Vec4{1, 1, 1, 0})

	return &EffectAsset{
		Name:      "test",
		Capacity:  256,
		SpawnRate: 100,
		Lifetime:  2,
		InitModifiers: []InitModifier{
			PositionSphereModifier{Radius: 2, Dimension: ShapeVolume, Speed: SpeedVectorRadial(SingleValue(5))},
		},
		UpdateModifiers: []UpdateModifier{
			AccelModifier{Accel: mgl32.Vec3{0, -9.81, 0}},
			NewForceFieldModifier(ForceFieldParam{Mass: 3, MaxRadius: 10, MinRadius: 0.5}),
		},
		RenderModifiers: []RenderModifier{
			ColorOverLifetimeModifier{Gradient: colors},
		},
	}
}

func TestCompilePopulatesLayouts(t *testing.T) {
	compiled := testEffect().Compile()

	assert.Contains(t, compiled.Init.PositionCode, "pow(rand(), 1./3.) * 2.")
	assert.Equal(t, mgl32.Vec3{0, -9.81, 0}, compiled.Update.Accel)
	assert.Equal(t, float32(3), compiled.Update.ForceField[0].Mass)
	assert.Equal(t, float32(0), compiled.Update.ForceField[1].Mass, "slot 1 is the sentinel")
	require.NotNil(t, compiled.Render.LifetimeColorGradient)
}

func TestCompileSubstitutesInitCode(t *testing.T) {
	compiled := testEffect().Compile()

	assert.NotContains(t, compiled.InitShader, initCodeMarker)
	assert.Contains(t, compiled.InitShader, "pow(rand(), 1./3.) * 2.")
	// Intrinsics the emitted fragments rely on must be defined.
	for _, intrinsic := range []string{"fn rand()", "fn rand3()", "fn rand_positive_int", "fn rotate_point", "const tau"} {
		assert.Contains(t, compiled.InitShader, intrinsic)
	}
}

func TestCompileWithoutTextureStripsTextureBlocks(t *testing.T) {
	compiled := testEffect().Compile()

	assert.NotContains(t, compiled.RenderShader, textureBindingsMarker)
	assert.NotContains(t, compiled.RenderShader, textureSampleMarker)
	assert.NotContains(t, compiled.RenderShader, "particle_texture")
}

func TestCompileWithTextureEmitsTextureBlocks(t *testing.T) {
	asset := testEffect()
	asset.RenderModifiers = append(asset.RenderModifiers, ParticleTextureModifier{
		Texture: TextureHandle{id: "tex"},
	})
	compiled := asset.Compile()

	assert.Contains(t, compiled.RenderShader, "var particle_texture")
	assert.Contains(t, compiled.RenderShader, "textureSample(particle_texture, particle_sampler, in.uv)")
	assert.NotContains(t, compiled.RenderShader, textureBindingsMarker)
}

func TestCompileIsIdempotent(t *testing.T) {
	asset := testEffect()
	a := asset.Compile()
	b := asset.Compile()

	assert.Equal(t, a.InitShader, b.InitShader)
	assert.Equal(t, a.UpdateShader, b.UpdateShader)
	assert.Equal(t, a.RenderShader, b.RenderShader)
	assert.Equal(t, a.Update, b.Update)
}

func TestCompileDefaultsCapacityAndLifetime(t *testing.T) {
	compiled := (&EffectAsset{Name: "empty"}).Compile()
	assert.Greater(t, compiled.Capacity, 0)
	assert.Greater(t, compiled.Lifetime, float32(0))
}

func TestUpdateShaderHasSentinelEarlyExit(t *testing.T) {
	compiled := testEffect().Compile()
	// The update pass must stop at the first zero-mass slot.
	idx := strings.Index(compiled.UpdateShader, "if (mass == 0.0)")
	require.GreaterOrEqual(t, idx, 0)
	rest := compiled.UpdateShader[idx:]
	assert.Contains(t, rest[:strings.Index(rest, "}")+1], "break;")
}
