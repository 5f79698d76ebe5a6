package vfx

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// ColorKey is one (ratio, color) keyframe of a ColorGradient. Ease shapes
// the interpolation toward the next key; nil means linear.
type ColorKey struct {
	Ratio float32
	Color mgl32.Vec4
	Ease  ease.TweenFunc
}

// ColorGradient is an ordered sequence of color keyframes over the particle
// lifetime ratio in [0, 1]. Keys stay sorted by ratio; sampling clamps to
// the first/last key outside the covered range.
type ColorGradient struct {
	keys []ColorKey
}

// Add inserts a linear keyframe and returns the gradient for chaining.
func (g *ColorGradient) Add(ratio float32, color mgl32.Vec4) *ColorGradient {
	return g.AddEased(ratio, color, nil)
}

// AddEased inserts a keyframe with an explicit easing function applied on
// the segment from this key to the next.
func (g *ColorGradient) AddEased(ratio float32, color mgl32.Vec4, fn ease.TweenFunc) *ColorGradient {
	g.keys = append(g.keys, ColorKey{Ratio: ratio, Color: color, Ease: fn})
	sort.SliceStable(g.keys, func(i, j int) bool { return g.keys[i].Ratio < g.keys[j].Ratio })
	return g
}

// Keys returns the sorted keyframes.
func (g *ColorGradient) Keys() []ColorKey {
	return g.keys
}

// Sample evaluates the gradient at the given lifetime ratio.
func (g *ColorGradient) Sample(ratio float32) mgl32.Vec4 {
	if len(g.keys) == 0 {
		return mgl32.Vec4{}
	}
	if ratio <= g.keys[0].Ratio {
		return g.keys[0].Color
	}
	last := g.keys[len(g.keys)-1]
	if ratio >= last.Ratio {
		return last.Color
	}
	for i := 0; i < len(g.keys)-1; i++ {
		k0, k1 := g.keys[i], g.keys[i+1]
		if ratio > k1.Ratio {
			continue
		}
		d := k1.Ratio - k0.Ratio
		if d <= 0 {
			return k1.Color
		}
		fn := k0.Ease
		if fn == nil {
			fn = ease.Linear
		}
		t := ratio - k0.Ratio
		var out mgl32.Vec4
		for c := 0; c < 4; c++ {
			out[c] = fn(t, k0.Color[c], k1.Color[c]-k0.Color[c], d)
		}
		return out
	}
	return last.Color
}

// Clone returns an independent copy of the gradient.
func (g *ColorGradient) Clone() *ColorGradient {
	out := &ColorGradient{keys: make([]ColorKey, len(g.keys))}
	copy(out.keys, g.keys)
	return out
}

// SizeKey is one (ratio, size) keyframe of a SizeGradient. The size is a
// per-axis billboard scale.
type SizeKey struct {
	Ratio float32
	Size  mgl32.Vec2
	Ease  ease.TweenFunc
}

// SizeGradient is an ordered sequence of size keyframes over the particle
// lifetime ratio in [0, 1].
type SizeGradient struct {
	keys []SizeKey
}

// Add inserts a linear keyframe and returns the gradient for chaining.
func (g *SizeGradient) Add(ratio float32, size mgl32.Vec2) *SizeGradient {
	return g.AddEased(ratio, size, nil)
}

// AddEased inserts a keyframe with an explicit easing function applied on
// the segment from this key to the next.
func (g *SizeGradient) AddEased(ratio float32, size mgl32.Vec2, fn ease.TweenFunc) *SizeGradient {
	g.keys = append(g.keys, SizeKey{Ratio: ratio, Size: size, Ease: fn})
	sort.SliceStable(g.keys, func(i, j int) bool { return g.keys[i].Ratio < g.keys[j].Ratio })
	return g
}

// Keys returns the sorted keyframes.
func (g *SizeGradient) Keys() []SizeKey {
	return g.keys
}

// Sample evaluates the gradient at the given lifetime ratio.
func (g *SizeGradient) Sample(ratio float32) mgl32.Vec2 {
	if len(g.keys) == 0 {
		return mgl32.Vec2{}
	}
	if ratio <= g.keys[0].Ratio {
		return g.keys[0].Size
	}
	last := g.keys[len(g.keys)-1]
	if ratio >= last.Ratio {
		return last.Size
	}
	for i := 0; i < len(g.keys)-1; i++ {
		k0, k1 := g.keys[i], g.keys[i+1]
		if ratio > k1.Ratio {
			continue
		}
		d := k1.Ratio - k0.Ratio
		if d <= 0 {
			return k1.Size
		}
		fn := k0.Ease
		if fn == nil {
			fn = ease.Linear
		}
		t := ratio - k0.Ratio
		var out mgl32.Vec2
		for c := 0; c < 2; c++ {
			out[c] = fn(t, k0.Size[c], k1.Size[c]-k0.Size[c], d)
		}
		return out
	}
	return last.Size
}

// Clone returns an independent copy of the gradient.
func (g *SizeGradient) Clone() *SizeGradient {
	out := &SizeGradient{keys: make([]SizeKey, len(g.keys))}
	copy(out.keys, g.keys)
	return out
}
