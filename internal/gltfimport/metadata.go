package gltfimport

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"flint/internal/render"
)

// MaterialOverride overrides a subset of a glTF-authored material's
// fields, keyed by material name, read from a YAML sidecar living
// alongside the .glb (e.g. "crate.glb" next to "crate.meta.yaml").
// Authors use this to retarget a shared mesh's look per scene without
// re-exporting the asset.
type MaterialOverride struct {
	BaseColor *[4]float64 `yaml:"base_color"`
	Metallic  *float64    `yaml:"metallic"`
	Roughness *float64    `yaml:"roughness"`
}

type sidecarMetadata struct {
	Materials map[string]MaterialOverride `yaml:"materials"`
}

// LoadSidecar reads glbPath's ".meta.yaml" sidecar if present. Sidecars
// are optional: a missing file returns a nil map and no error.
func LoadSidecar(glbPath string) (map[string]MaterialOverride, error) {
	metaPath := strings.TrimSuffix(glbPath, ".glb") + ".meta.yaml"
	raw, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var meta sidecarMetadata
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta.Materials, nil
}

// ApplyMaterialOverrides mutates each node's materials in place,
// matching overrides by material name.
func ApplyMaterialOverrides(nodes []render.ImportedNode, overrides map[string]MaterialOverride) {
	if len(overrides) == 0 {
		return
	}
	for i := range nodes {
		for j := range nodes[i].Materials {
			mat := &nodes[i].Materials[j]
			ov, ok := overrides[mat.Name]
			if !ok {
				continue
			}
			if ov.BaseColor != nil {
				mat.BaseColor = *ov.BaseColor
			}
			if ov.Metallic != nil {
				mat.Metallic = *ov.Metallic
			}
			if ov.Roughness != nil {
				mat.Roughness = *ov.Roughness
			}
		}
	}
}
