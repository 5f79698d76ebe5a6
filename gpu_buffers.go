package vfx

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleStride matches the WGSL Particle struct:
// struct Particle {
//    pos : vec3<f32>; age : f32;      (16)
//    vel : vec3<f32>; lifetime : f32; (16)
// }; -> 32 bytes
const ParticleStride = 32

// RampWidth is the texel width of the baked gradient ramp textures.
const RampWidth = 256

// ParticleBufferSize returns the storage buffer size for a particle pool.
func ParticleBufferSize(capacity int) uint64 {
	if capacity < 1 {
		capacity = 1
	}
	return uint64(capacity) * ParticleStride
}

// ToBytes packs the param to match the WGSL ForceFieldSource struct:
// struct ForceFieldSource {
//    position_max_radius : vec4<f32>; (16)
//    params : vec4<f32>;              (16)
// }; -> 32 bytes
func (p ForceFieldParam) ToBytes() []byte {
	buf := make([]byte, 32)

	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.Position.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Position.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Position.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.MaxRadius))

	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(p.MinRadius))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(p.Mass))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(p.ForceExponent))
	var conform float32
	if p.ConformToSphere {
		conform = 1
	}
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(conform))

	return buf
}

// ForceFieldBytes packs the full slot array for the update pass uniform.
// Slot order is preserved; the shader stops at the first zero-mass slot.
func (l *UpdateLayout) ForceFieldBytes() []byte {
	buf := make([]byte, 0, FFNUM*32)
	for i := range l.ForceField {
		buf = append(buf, l.ForceField[i].ToBytes()...)
	}
	return buf
}

// SimParams is the per-frame uniform block shared by the init and update
// passes. Matches the WGSL SimParams struct (48 bytes).
type SimParams struct {
	Dt           float32
	Time         float32
	NumParticles uint32
	SpawnCursor  uint32
	SpawnCount   uint32
	Lifetime     float32
	Accel        mgl32.Vec3
}

func (p SimParams) ToBytes() []byte {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.Dt))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Time))
	binary.LittleEndian.PutUint32(buf[8:12], p.NumParticles)
	binary.LittleEndian.PutUint32(buf[12:16], p.SpawnCursor)
	binary.LittleEndian.PutUint32(buf[16:20], p.SpawnCount)
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(p.Lifetime))
	// 8 bytes of padding before the vec4.
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(p.Accel.X()))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(p.Accel.Y()))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(p.Accel.Z()))
	return buf
}

// CameraParams is the render pass uniform block. Matches the WGSL
// CameraParams struct (96 bytes); SizeScale rides in right.w and rescales
// the normalized size ramp back to world units.
type CameraParams struct {
	ViewProj  mgl32.Mat4
	Right     mgl32.Vec3
	SizeScale float32
	Up        mgl32.Vec3
}

func (p CameraParams) ToBytes() []byte {
	buf := make([]byte, 96)
	for i, v := range p.ViewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(p.Right.X()))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(p.Right.Y()))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(p.Right.Z()))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(p.SizeScale))
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(p.Up.X()))
	binary.LittleEndian.PutUint32(buf[84:88], math.Float32bits(p.Up.Y()))
	binary.LittleEndian.PutUint32(buf[88:92], math.Float32bits(p.Up.Z()))
	return buf
}

// BakeColorRamp samples the gradient into a RampWidth x 1 RGBA8 strip.
// A nil gradient bakes to opaque white.
func BakeColorRamp(g *ColorGradient) []byte {
	buf := make([]byte, RampWidth*4)
	for i := 0; i < RampWidth; i++ {
		c := mgl32.Vec4{1, 1, 1, 1}
		if g != nil && len(g.Keys()) > 0 {
			c = g.Sample(float32(i) / float32(RampWidth-1))
		}
		for j := 0; j < 4; j++ {
			buf[i*4+j] = unormByte(c[j])
		}
	}
	return buf
}

// BakeSizeRamp samples the gradient into a RampWidth x 1 RGBA8 strip with
// sizes normalized by the returned scale. A nil gradient bakes to a
// constant unit size.
func BakeSizeRamp(g *SizeGradient) ([]byte, float32) {
	sizes := make([]mgl32.Vec2, RampWidth)
	var maxSize float32 = 1
	for i := range sizes {
		s := mgl32.Vec2{1, 1}
		if g != nil && len(g.Keys()) > 0 {
			s = g.Sample(float32(i) / float32(RampWidth-1))
		}
		sizes[i] = s
		if s.X() > maxSize {
			maxSize = s.X()
		}
		if s.Y() > maxSize {
			maxSize = s.Y()
		}
	}
	buf := make([]byte, RampWidth*4)
	for i, s := range sizes {
		buf[i*4+0] = unormByte(s.X() / maxSize)
		buf[i*4+1] = unormByte(s.Y() / maxSize)
		buf[i*4+3] = 0xFF
	}
	return buf, maxSize
}

func unormByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFF
	}
	return byte(v*255 + 0.5)
}
