package vfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// FFNUM is the fixed number of force field slots uploaded to the GPU.
// The update shader declares the array with this size.
const FFNUM = 16

// InitModifier customizes the initializing of newly spawned particles.
type InitModifier interface {
	// ApplyInit applies the modifier to the init layout of the effect instance.
	ApplyInit(layout *InitLayout)
}

// UpdateModifier customizes the updating of existing particles each frame.
type UpdateModifier interface {
	// ApplyUpdate applies the modifier to the update layout of the effect instance.
	ApplyUpdate(layout *UpdateLayout)
}

// RenderModifier customizes the rendering of alive particles each frame.
type RenderModifier interface {
	// ApplyRender applies the modifier to the render layout of the effect instance.
	ApplyRender(layout *RenderLayout)
}

// ShapeDimension selects which part of a shape spawn sampling targets.
type ShapeDimension uint8

const (
	// ShapeSurface samples the surface of the shape only.
	ShapeSurface ShapeDimension = iota
	// ShapeVolume samples the entire shape volume.
	ShapeVolume
)

type speedVectorKind uint8

const (
	speedRadial speedVectorKind = iota
	speedNormal
	speedLocal
	speedWorld
)

// SpeedVector is the direction and intensity rule for the initial particle
// velocity. The zero value is Radial with speed 0; DefaultSpeedVector
// returns Radial with speed 1.
type SpeedVector struct {
	kind    speedVectorKind
	speed   Value
	x, y, z Value
}

// SpeedVectorNormal ejects particles along the outward surface normal.
// For circles and spheres this is the same direction as Radial.
func SpeedVectorNormal(speed Value) SpeedVector {
	return SpeedVector{kind: speedNormal, speed: speed}
}

// SpeedVectorRadial ejects particles away from the shape center.
func SpeedVectorRadial(speed Value) SpeedVector {
	return SpeedVector{kind: speedRadial, speed: speed}
}

// SpeedVectorLocal ejects particles in a fixed direction in the shape's
// local (rotated) frame.
func SpeedVectorLocal(x, y, z Value) SpeedVector {
	return SpeedVector{kind: speedLocal, x: x, y: y, z: z}
}

// SpeedVectorWorld ejects particles in a fixed world-space direction,
// independent of the shape rotation.
func SpeedVectorWorld(x, y, z Value) SpeedVector {
	return SpeedVector{kind: speedWorld, x: x, y: y, z: z}
}

// DefaultSpeedVector returns Radial with unit speed.
func DefaultSpeedVector() SpeedVector {
	return SpeedVectorRadial(SingleValue(1.0))
}

// orientation treats the zero quaternion as identity so zero-value
// modifiers stay usable without an explicit rotation.
func orientation(q mgl32.Quat) mgl32.Quat {
	if q.W == 0 && q.V.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q
}

// sphericalSpeedCode emits the velocity statement for shapes whose outward
// normal equals the radial direction (circle, sphere). The generated code
// expects a unit direction in `dir`.
func sphericalSpeedCode(rot mgl32.Quat, speed SpeedVector) string {
	switch speed.kind {
	case speedLocal:
		return fmt.Sprintf(`
    let rot = %s;
    ret.vel = rotate_point(vec3<f32>(%s, %s, %s), rot);
`,
			QuatWgsl(rot), speed.x.ToWgsl(), speed.y.ToWgsl(), speed.z.ToWgsl())
	case speedWorld:
		return fmt.Sprintf("ret.vel = vec3<f32>(%s, %s, %s);",
			speed.x.ToWgsl(), speed.y.ToWgsl(), speed.z.ToWgsl())
	default: // normal and radial are the same direction on these shapes
		return fmt.Sprintf("ret.vel = dir * (%s);", speed.speed.ToWgsl())
	}
}

// PositionCircleModifier spawns particles on a circle/disc.
type PositionCircleModifier struct {
	// Center of the circle, relative to the emitter position.
	Center mgl32.Vec3
	// Rotation of the circle plane. Use a rotation of pi/2 around X for a
	// 2D game.
	Rotation mgl32.Quat
	// Radius of the circle.
	Radius float32
	// Speed of the particles on spawn.
	Speed SpeedVector
	// Dimension to spawn from.
	Dimension ShapeDimension
}

func (m PositionCircleModifier) ApplyInit(layout *InitLayout) {
	rot := orientation(m.Rotation)
	tangent := rot.Rotate(mgl32.Vec3{1, 0, 0})
	bitangent := rot.Rotate(mgl32.Vec3{0, 0, 1})

	var radiusCode string
	switch m.Dimension {
	case ShapeVolume:
		// Radius uniformly distributed in [0:1], then square-rooted to
		// account for the increased perimeter covered by increased radii.
		radiusCode = fmt.Sprintf("let r = sqrt(rand()) * %s;", FloatWgsl(m.Radius))
	default:
		radiusCode = fmt.Sprintf("let r = %s;", FloatWgsl(m.Radius))
	}

	layout.PositionCode = fmt.Sprintf(`
    // Circle center
    let c = %s;
    // Circle basis
    let tangent = %s;
    let bitangent = %s;
    // Circle radius
    %s
    // Spawn random point on/in circle
    let theta = rand() * tau;
    let dir = tangent * cos(theta) + bitangent * sin(theta);
    ret.pos = c + r * dir;
    // Speed
    %s
`,
		Vec3Wgsl(m.Center),
		Vec3Wgsl(tangent),
		Vec3Wgsl(bitangent),
		radiusCode,
		sphericalSpeedCode(rot, m.Speed),
	)
}

// PositionSphereModifier spawns particles on a sphere.
type PositionSphereModifier struct {
	// Center of the sphere, relative to the emitter position.
	Center mgl32.Vec3
	// Radius of the sphere.
	Radius float32
	// Rotation of the sphere relative to the world. Only relevant for
	// SpeedVectorLocal.
	Rotation mgl32.Quat
	// Speed of the particles on spawn.
	Speed SpeedVector
	// Dimension to spawn from.
	Dimension ShapeDimension
}

func (m PositionSphereModifier) ApplyInit(layout *InitLayout) {
	var radiusCode string
	switch m.Dimension {
	case ShapeVolume:
		// Radius uniformly distributed in [0:1], then scaled by ^(1/3) to
		// account for the increased volume covered by increased radii.
		radiusCode = fmt.Sprintf("var r = pow(rand(), 1./3.) * %s;", FloatWgsl(m.Radius))
	default:
		radiusCode = fmt.Sprintf("let r = %s;", FloatWgsl(m.Radius))
	}

	layout.PositionCode = fmt.Sprintf(`
    // Sphere center
    let c = %s;
    // Sphere radius
    %s
    // Spawn randomly along the sphere surface using Archimedes's theorem
    var theta = rand() * tau;
    var z = rand() * 2. - 1.;
    var phi = acos(z);
    var sinphi = sin(phi);
    var x = sinphi * cos(theta);
    var y = sinphi * sin(theta);
    var dir = vec3<f32>(x, y, z);
    ret.pos = c + r * dir;
    // Speed
    %s
`,
		Vec3Wgsl(m.Center),
		radiusCode,
		sphericalSpeedCode(orientation(m.Rotation), m.Speed),
	)
}

// PositionCubeModifier spawns particles on a box.
type PositionCubeModifier struct {
	// Center of the box, relative to the emitter position.
	Center mgl32.Vec3
	// Extents are the box half-sizes per axis.
	Extents mgl32.Vec3
	// Rotation of the box.
	Rotation mgl32.Quat
	// Speed of the particles on spawn.
	Speed SpeedVector
	// Dimension to spawn from.
	Dimension ShapeDimension
}

func (m PositionCubeModifier) ApplyInit(layout *InitLayout) {
	rot := orientation(m.Rotation)

	var extentsCode string
	switch m.Dimension {
	case ShapeVolume:
		// Per-axis uniform sampling is already volume-uniform in a box,
		// no distribution correction needed.
		extentsCode = fmt.Sprintf("var extents = (rand3() - vec3<f32>(0.5, 0.5, 0.5)) * %s;",
			Vec3Wgsl(m.Extents))
	default:
		extentsCode = fmt.Sprintf("let extents = %s;", Vec3Wgsl(m.Extents))
	}

	var speedCode string
	switch m.Speed.kind {
	case speedNormal:
		// Face normal is the locked axis with the face sign.
		speedCode = fmt.Sprintf(`
    var normal = vec3<f32>(0., 0., 0.);
    normal[ si[0] ] = locked_axis_sign;
    ret.vel = rotate_point(normal * %s, rot);
`,
			m.Speed.speed.ToWgsl())
	case speedLocal:
		speedCode = fmt.Sprintf("ret.vel = rotate_point(vec3<f32>(%s, %s, %s), rot);",
			m.Speed.x.ToWgsl(), m.Speed.y.ToWgsl(), m.Speed.z.ToWgsl())
	case speedWorld:
		speedCode = fmt.Sprintf("ret.vel = vec3<f32>(%s, %s, %s);",
			m.Speed.x.ToWgsl(), m.Speed.y.ToWgsl(), m.Speed.z.ToWgsl())
	default:
		// Velocity away from the box center; the position vector here is
		// still in local space, not a face normal.
		speedCode = fmt.Sprintf("ret.vel = ret.pos * %s;", m.Speed.speed.ToWgsl())
	}

	layout.PositionCode = fmt.Sprintf(`
    // Box center
    let c = %s;
    // Box rotation
    let rot = %s;
    // Box extents
    %s
    // Choose a face randomly and find a point on that face
    var s = rand_positive_int(6u);
    var si = vec3<u32>(s, s + 1u, s + 2u) %% 3u;
    // si[0] is the selected face: lock the corresponding coordinate
    var locked_axis_sign = 0.;
    if (s > 2u) {
        locked_axis_sign = 1.;
    } else {
        locked_axis_sign = -1.;
    }
    ret.pos[ si[0] ] = locked_axis_sign * .5 * extents[ si[0] ];
    // 2 degrees of freedom for the remaining coordinates
    ret.pos[ si[1] ] = (rand() - .5) * extents[ si[1] ];
    ret.pos[ si[2] ] = (rand() - .5) * extents[ si[2] ];
    // Apply rotation
    ret.pos = rotate_point(ret.pos, rot);
    // Speed
    %s
    // Put position in world space
    ret.pos = ret.pos + c;
`,
		Vec3Wgsl(m.Center),
		QuatWgsl(rot),
		extentsCode,
		speedCode,
	)
}

// ParticleTextureModifier modulates each particle's color by sampling a texture.
type ParticleTextureModifier struct {
	// Texture image to modulate the particle color with.
	Texture TextureHandle
}

func (m ParticleTextureModifier) ApplyRender(layout *RenderLayout) {
	layout.ParticleTexture = m.Texture.Clone()
}

// ColorOverLifetimeModifier modulates each particle's color over its
// lifetime with a gradient curve.
type ColorOverLifetimeModifier struct {
	Gradient ColorGradient
}

func (m ColorOverLifetimeModifier) ApplyRender(layout *RenderLayout) {
	layout.LifetimeColorGradient = m.Gradient.Clone()
}

// SizeOverLifetimeModifier modulates each particle's size over its
// lifetime with a gradient curve.
type SizeOverLifetimeModifier struct {
	Gradient SizeGradient
}

func (m SizeOverLifetimeModifier) ApplyRender(layout *RenderLayout) {
	layout.LifetimeSizeGradient = m.Gradient.Clone()
}

// AccelModifier applies a constant acceleration to all particles each
// frame, typically some kind of gravity.
type AccelModifier struct {
	Accel mgl32.Vec3
}

func (m AccelModifier) ApplyUpdate(layout *UpdateLayout) {
	layout.Accel = m.Accel
}

// ForceFieldParam describes one point source of the force field.
type ForceFieldParam struct {
	// Position of the source.
	Position mgl32.Vec3
	// MaxRadius of the sphere of influence, outside of which the force is null.
	MaxRadius float32
	// MinRadius of the sphere of influence, inside of which the force is
	// null, avoiding the singularity at the source position.
	MinRadius float32
	// Mass scales the force intensity. Negative mass repulses. The update
	// shader stops evaluating at the first source with a mass of zero.
	Mass float32
	// ForceExponent n makes the force proportional to 1 / distance^n.
	ForceExponent float32
	// ConformToSphere makes particles entering MinRadius conform to a
	// sphere around the source instead of passing through it.
	ConformToSphere bool
}

// DefaultForceFieldParam returns the inactive source (mass 0), which acts
// as the evaluation-stop sentinel on the GPU.
func DefaultForceFieldParam() ForceFieldParam {
	return ForceFieldParam{MinRadius: 0.1}
}

// ForceFieldModifier applies a force field of up to FFNUM point sources to
// all particles each frame. Slot order is evaluation order.
type ForceFieldModifier struct {
	ForceField [FFNUM]ForceFieldParam
}

// NewForceFieldModifier builds a modifier from the given sources, filling
// the remaining slots with the inactive sentinel. Panics if more than
// FFNUM sources are given; the GPU array cannot grow.
func NewForceFieldModifier(sources ...ForceFieldParam) ForceFieldModifier {
	if len(sources) > FFNUM {
		panic(fmt.Sprintf("too many force field sources: %d > %d", len(sources), FFNUM))
	}
	var m ForceFieldModifier
	for i := range m.ForceField {
		m.ForceField[i] = DefaultForceFieldParam()
	}
	copy(m.ForceField[:], sources)
	return m
}

// AddOrReplace overwrites the slot at index. The index must be < FFNUM;
// out-of-range indices fault like any slice access.
func (m *ForceFieldModifier) AddOrReplace(param ForceFieldParam, index int) {
	m.ForceField[index] = param
}

func (m ForceFieldModifier) ApplyUpdate(layout *UpdateLayout) {
	layout.ForceField = m.ForceField
}
