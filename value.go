package vfx

import "fmt"

// ValueKind discriminates the Value variants.
type ValueKind uint8

const (
	// ValueSingle is a constant scalar.
	ValueSingle ValueKind = iota
	// ValueUniform is a uniform random sample in [lo, hi), drawn on the GPU
	// at spawn time, not on the host.
	ValueUniform
)

// Value is a scalar or a scalar distribution that renders itself to WGSL
// source text. The zero value is Single(0).
//
// Rendering is pure: the same Value always renders to the same text. For
// ValueUniform the randomness happens at shader execution time via rand().
type Value struct {
	kind   ValueKind
	lo, hi float32
}

// SingleValue returns a constant Value.
func SingleValue(v float32) Value {
	return Value{kind: ValueSingle, lo: v}
}

// UniformValue returns a Value sampled uniformly in [lo, hi) per particle.
func UniformValue(lo, hi float32) Value {
	return Value{kind: ValueUniform, lo: lo, hi: hi}
}

// Kind returns the variant of the Value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// ToWgsl renders the Value as a WGSL expression.
func (v Value) ToWgsl() string {
	switch v.kind {
	case ValueUniform:
		return fmt.Sprintf("(rand() * (%s - %s) + %s)",
			FloatWgsl(v.hi), FloatWgsl(v.lo), FloatWgsl(v.lo))
	default:
		return FloatWgsl(v.lo)
	}
}
