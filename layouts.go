package vfx

import "github.com/go-gl/mathgl/mgl32"

// InitLayout accumulates the WGSL fragments configuring how newly spawned
// particles are initialized. Position modifiers overwrite PositionCode
// wholesale; only one shape modifier should be applied per effect.
type InitLayout struct {
	// PositionCode is a self-contained WGSL statement block writing ret.pos
	// and ret.vel for the spawned particle.
	PositionCode string
}

// UpdateLayout accumulates the per-frame simulation parameters uploaded to
// the update compute pass.
type UpdateLayout struct {
	// Accel is a constant acceleration applied to every particle each frame.
	Accel mgl32.Vec3
	// ForceField is the fixed-size point-source array uploaded to the GPU.
	// Evaluation stops at the first zero-mass slot.
	ForceField [FFNUM]ForceFieldParam
}

// RenderLayout accumulates the resolved data consumed when building the
// render bind group. These are values, not generated code.
type RenderLayout struct {
	// ParticleTexture modulates the particle color when valid.
	ParticleTexture TextureHandle
	// LifetimeColorGradient maps particle lifetime ratio to color, nil when unset.
	LifetimeColorGradient *ColorGradient
	// LifetimeSizeGradient maps particle lifetime ratio to billboard size, nil when unset.
	LifetimeSizeGradient *SizeGradient
}
