package vfx

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// effectFile is the on-disk YAML schema of an effect definition.
type effectFile struct {
	Name      string  `yaml:"name"`
	Capacity  int     `yaml:"capacity"`
	SpawnRate float32 `yaml:"spawn_rate"`
	Lifetime  float32 `yaml:"lifetime"`

	Shape         *shapeConfig       `yaml:"shape"`
	Accel         *[3]float32        `yaml:"accel"`
	ForceFields   []forceFieldConfig `yaml:"force_fields"`
	ColorGradient []colorKeyConfig   `yaml:"color_gradient"`
	SizeGradient  []sizeKeyConfig    `yaml:"size_gradient"`
	Texture       string             `yaml:"texture"`
}

type shapeConfig struct {
	Type      string       `yaml:"type"` // circle | sphere | cube
	Center    [3]float32   `yaml:"center"`
	Radius    float32      `yaml:"radius"`
	Extents   [3]float32   `yaml:"extents"`
	Rotation  *[4]float32  `yaml:"rotation"`  // quaternion x, y, z, w
	Dimension string       `yaml:"dimension"` // surface | volume
	Speed     *speedConfig `yaml:"speed"`
}

type speedConfig struct {
	Mode      string         `yaml:"mode"` // normal | radial | local | world
	Value     valueConfig    `yaml:"value"`
	Direction [3]valueConfig `yaml:"direction"`
}

type forceFieldConfig struct {
	Position        [3]float32 `yaml:"position"`
	MaxRadius       float32    `yaml:"max_radius"`
	MinRadius       float32    `yaml:"min_radius"`
	Mass            float32    `yaml:"mass"`
	ForceExponent   float32    `yaml:"force_exponent"`
	ConformToSphere bool       `yaml:"conform_to_sphere"`
}

type colorKeyConfig struct {
	Ratio float32    `yaml:"ratio"`
	Color [4]float32 `yaml:"color"`
}

type sizeKeyConfig struct {
	Ratio float32    `yaml:"ratio"`
	Size  [2]float32 `yaml:"size"`
}

// valueConfig accepts either a scalar (constant) or a two-element list
// (uniform range) in YAML.
type valueConfig struct {
	value Value
}

func (v *valueConfig) UnmarshalYAML(node *yaml.Node) error {
	var single float32
	if err := node.Decode(&single); err == nil {
		v.value = SingleValue(single)
		return nil
	}
	var pair [2]float32
	if err := node.Decode(&pair); err == nil {
		v.value = UniformValue(pair[0], pair[1])
		return nil
	}
	return fmt.Errorf("value must be a scalar or a [lo, hi] pair, got %q", node.Value)
}

// LoadEffectAsset reads a YAML effect definition. Texture references are
// resolved through the given asset server; server may be nil when the file
// declares no texture.
func LoadEffectAsset(path string, server *AssetServer) (*EffectAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading effect file: %w", err)
	}
	return ParseEffectAsset(data, server)
}

// ParseEffectAsset builds an EffectAsset from YAML bytes.
func ParseEffectAsset(data []byte, server *AssetServer) (*EffectAsset, error) {
	var file effectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing effect file: %w", err)
	}

	asset := &EffectAsset{
		Name:      file.Name,
		Capacity:  file.Capacity,
		SpawnRate: file.SpawnRate,
		Lifetime:  file.Lifetime,
	}

	if file.Shape != nil {
		mod, err := file.Shape.modifier()
		if err != nil {
			return nil, err
		}
		asset.InitModifiers = append(asset.InitModifiers, mod)
	}

	if file.Accel != nil {
		asset.UpdateModifiers = append(asset.UpdateModifiers, AccelModifier{
			Accel: mgl32.Vec3{file.Accel[0], file.Accel[1], file.Accel[2]},
		})
	}

	if len(file.ForceFields) > 0 {
		if len(file.ForceFields) > FFNUM {
			return nil, fmt.Errorf("effect declares %d force field sources, maximum is %d",
				len(file.ForceFields), FFNUM)
		}
		sources := make([]ForceFieldParam, len(file.ForceFields))
		for i, ff := range file.ForceFields {
			sources[i] = ForceFieldParam{
				Position:        mgl32.Vec3{ff.Position[0], ff.Position[1], ff.Position[2]},
				MaxRadius:       ff.MaxRadius,
				MinRadius:       ff.MinRadius,
				Mass:            ff.Mass,
				ForceExponent:   ff.ForceExponent,
				ConformToSphere: ff.ConformToSphere,
			}
		}
		asset.UpdateModifiers = append(asset.UpdateModifiers, NewForceFieldModifier(sources...))
	}

	if len(file.ColorGradient) > 0 {
		var g ColorGradient
		for _, k := range file.ColorGradient {
			g.Add(k.Ratio, mgl32.Vec4{k.Color[0], k.Color[1], k.Color[2], k.Color[3]})
		}
		asset.RenderModifiers = append(asset.RenderModifiers, ColorOverLifetimeModifier{Gradient: g})
	}

	if len(file.SizeGradient) > 0 {
		var g SizeGradient
		for _, k := range file.SizeGradient {
			g.Add(k.Ratio, mgl32.Vec2{k.Size[0], k.Size[1]})
		}
		asset.RenderModifiers = append(asset.RenderModifiers, SizeOverLifetimeModifier{Gradient: g})
	}

	if file.Texture != "" {
		if server == nil {
			return nil, fmt.Errorf("effect %q declares texture %q but no asset server was given",
				file.Name, file.Texture)
		}
		asset.RenderModifiers = append(asset.RenderModifiers, ParticleTextureModifier{
			Texture: server.LoadTexture(file.Texture),
		})
	}

	return asset, nil
}

func (s *shapeConfig) modifier() (InitModifier, error) {
	rotation := mgl32.QuatIdent()
	if s.Rotation != nil {
		rotation = mgl32.Quat{
			W: s.Rotation[3],
			V: mgl32.Vec3{s.Rotation[0], s.Rotation[1], s.Rotation[2]},
		}
	}

	var dimension ShapeDimension
	switch s.Dimension {
	case "", "surface":
		dimension = ShapeSurface
	case "volume":
		dimension = ShapeVolume
	default:
		return nil, fmt.Errorf("unknown shape dimension %q", s.Dimension)
	}

	speed := DefaultSpeedVector()
	if s.Speed != nil {
		var err error
		speed, err = s.Speed.speedVector()
		if err != nil {
			return nil, err
		}
	}

	center := mgl32.Vec3{s.Center[0], s.Center[1], s.Center[2]}

	switch s.Type {
	case "circle":
		return PositionCircleModifier{
			Center:    center,
			Rotation:  rotation,
			Radius:    s.Radius,
			Speed:     speed,
			Dimension: dimension,
		}, nil
	case "sphere":
		return PositionSphereModifier{
			Center:    center,
			Rotation:  rotation,
			Radius:    s.Radius,
			Speed:     speed,
			Dimension: dimension,
		}, nil
	case "cube":
		return PositionCubeModifier{
			Center:    center,
			Rotation:  rotation,
			Extents:   mgl32.Vec3{s.Extents[0], s.Extents[1], s.Extents[2]},
			Speed:     speed,
			Dimension: dimension,
		}, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", s.Type)
	}
}

func (s *speedConfig) speedVector() (SpeedVector, error) {
	switch s.Mode {
	case "normal":
		return SpeedVectorNormal(s.Value.value), nil
	case "", "radial":
		return SpeedVectorRadial(s.Value.value), nil
	case "local":
		return SpeedVectorLocal(s.Direction[0].value, s.Direction[1].value, s.Direction[2].value), nil
	case "world":
		return SpeedVectorWorld(s.Direction[0].value, s.Direction[1].value, s.Direction[2].value), nil
	default:
		return SpeedVector{}, fmt.Errorf("unknown speed mode %q", s.Mode)
	}
}
