package spline

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileFormat mirrors the spline authoring file layout: `[spline]` header
// with `closed`, `[sampling]` spacing, and `[[control_points]]` with
// position and twist.
type fileFormat struct {
	Spline struct {
		Closed bool `toml:"closed"`
	} `toml:"spline"`
	Sampling struct {
		Spacing float64 `toml:"spacing"`
	} `toml:"sampling"`
	ControlPoints []struct {
		Position [3]float64 `toml:"position"`
		Twist    float64    `toml:"twist"`
	} `toml:"control_points"`
}

// LoadFile parses a `.spline.toml` file into a Definition.
func LoadFile(path string) (Definition, error) {
	var raw fileFormat
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Definition{}, fmt.Errorf("spline: decode %s: %w", path, err)
	}

	def := Definition{
		Closed:  raw.Spline.Closed,
		Spacing: raw.Sampling.Spacing,
	}
	if def.Spacing <= 0 {
		def.Spacing = 2.0
	}

	for _, cp := range raw.ControlPoints {
		def.ControlPoints = append(def.ControlPoints, ControlPoint{
			Position: vec3From(cp.Position),
			Twist:    cp.Twist,
		})
	}
	if len(def.ControlPoints) < 2 {
		return Definition{}, fmt.Errorf("spline: %s needs at least 2 control points, got %d", path, len(def.ControlPoints))
	}

	return def, nil
}
