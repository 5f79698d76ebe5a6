package vfx

import "strings"

const (
	initCodeMarker        = "{{INIT_CODE}}"
	textureBindingsMarker = "{{TEXTURE_BINDINGS}}"
	textureSampleMarker   = "{{TEXTURE_SAMPLE}}"
)

const particleTextureBindings = `@group(0) @binding(5) var particle_texture : texture_2d<f32>;
@group(0) @binding(6) var particle_sampler : sampler;`

const particleTextureSample = `    color = color * textureSample(particle_texture, particle_sampler, in.uv);`

// EffectAsset is the declarative description of one particle effect: a
// capacity, a spawn policy, and an ordered list of modifiers per role.
type EffectAsset struct {
	// Name of the effect, used for pipeline labels and logging.
	Name string
	// Capacity is the fixed particle pool size on the GPU.
	Capacity int
	// SpawnRate is the number of particles spawned per second.
	SpawnRate float32
	// Lifetime of each particle in seconds.
	Lifetime float32

	InitModifiers   []InitModifier
	UpdateModifiers []UpdateModifier
	RenderModifiers []RenderModifier
}

// CompiledEffect is the output of one compilation pass: the populated
// layout accumulators plus the assembled WGSL sources. It is read-only
// after Compile returns; recompiling builds a fresh one.
type CompiledEffect struct {
	Name      string
	Capacity  int
	SpawnRate float32
	Lifetime  float32

	Init   InitLayout
	Update UpdateLayout
	Render RenderLayout

	// InitShader, UpdateShader and RenderShader are complete WGSL modules.
	InitShader   string
	UpdateShader string
	RenderShader string
}

// Compile applies every modifier in registration order to fresh layouts
// and assembles the final shader sources. Later modifiers targeting the
// same layout field overwrite earlier ones.
func (a *EffectAsset) Compile() CompiledEffect {
	out := CompiledEffect{
		Name:      a.Name,
		Capacity:  a.Capacity,
		SpawnRate: a.SpawnRate,
		Lifetime:  a.Lifetime,
	}
	if out.Capacity <= 0 {
		out.Capacity = 1024
	}
	if out.Lifetime <= 0 {
		out.Lifetime = 1
	}

	for _, m := range a.InitModifiers {
		m.ApplyInit(&out.Init)
	}
	for _, m := range a.UpdateModifiers {
		m.ApplyUpdate(&out.Update)
	}
	for _, m := range a.RenderModifiers {
		m.ApplyRender(&out.Render)
	}

	out.InitShader = strings.ReplaceAll(initTemplateWGSL, initCodeMarker, out.Init.PositionCode)
	out.UpdateShader = updateTemplateWGSL

	render := renderTemplateWGSL
	if out.Render.ParticleTexture.Valid() {
		render = strings.ReplaceAll(render, textureBindingsMarker, particleTextureBindings)
		render = strings.ReplaceAll(render, textureSampleMarker, particleTextureSample)
	} else {
		render = strings.ReplaceAll(render, textureBindingsMarker, "")
		render = strings.ReplaceAll(render, textureSampleMarker, "")
	}
	out.RenderShader = render

	return out
}
