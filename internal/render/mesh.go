package render

import (
	"strings"

	"flint/internal/mathutil"
)

// Vertex is the renderer's shared vertex layout: position, normal,
// vertex color, UV, and up to four skinning joint influences.
type Vertex struct {
	Position mathutil.Vec3
	Normal   mathutil.Vec3
	Color    [4]float64
	U, V     float64
	Joints   [4]int
	Weights  [4]float64
}

type Material struct {
	Name             string
	BaseColor        [4]float64
	Metallic         float64
	Roughness        float64
	BaseColorTexture string
	NormalTexture    string
	MetallicRoughnessTexture string
}

func DefaultMaterial() Material {
	return Material{BaseColor: [4]float64{0.5, 0.5, 0.5, 1}, Roughness: 0.5}
}

// Mesh is one GPU-resident mesh primitive: vertex/index data plus its
// material.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Material Material
}

// SkinnedMesh additionally carries the skin index its bone matrices are
// read from.
type SkinnedMesh struct {
	Mesh
	SkinIndex int
}

// ImportedNode is the shape a glTF importer hands the mesh cache: one
// node's mesh data plus the accumulated world transform needed to bake
// it.
type ImportedNode struct {
	Name      string
	Meshes    [][]Vertex // one slice of vertices per primitive on this node
	Indices   [][]uint32
	Materials []Material
	Transform mathutil.Mat4
}

// Cache is the asset-name -> GPU mesh list store. Deduplicates per-scene
// loads: re-uploading the same asset name is a no-op.
type Cache struct {
	byName map[string][]Mesh
}

func NewCache() *Cache {
	return &Cache{byName: make(map[string][]Mesh)}
}

func (c *Cache) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Cache) Get(name string) ([]Mesh, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// GetPrefixed concatenates every cached mesh list whose key is
// "prefix/<node>", the layout UploadFlattened uses for a multi-node
// glTF asset uploaded under name=prefix. Entities reference the asset
// by prefix alone without needing to know its node names.
func (c *Cache) GetPrefixed(prefix string) []Mesh {
	var out []Mesh
	want := prefix + "/"
	for key, meshes := range c.byName {
		if strings.HasPrefix(key, want) {
			out = append(out, meshes...)
		}
	}
	return out
}

// Upload registers an already-flattened mesh list under name, a no-op
// if the name is already cached.
func (c *Cache) Upload(name string, meshes []Mesh) {
	if c.Has(name) {
		return
	}
	c.byName[name] = meshes
}

// UploadFlattened bakes each imported node's vertex data into its
// accumulated world transform and uploads it under "<name>/<node>",
// eliminating the visual artifacts non-uniform parent scales would
// otherwise cause when driving the hierarchy from ECS transforms, where
// rotation and non-uniform scale do not commute. The normal matrix is
// the inverse-transpose of the baked transform, the standard fix for
// normals under non-uniform scale.
func (c *Cache) UploadFlattened(name string, nodes []ImportedNode) {
	for _, node := range nodes {
		key := name + "/" + node.Name
		if c.Has(key) {
			continue
		}
		normalMat, invertible := node.Transform.Inverse()
		if !invertible {
			normalMat = mathutil.Mat4Identity
		} else {
			normalMat = normalMat.Transpose()
		}

		var meshes []Mesh
		for i, verts := range node.Meshes {
			baked := make([]Vertex, len(verts))
			for j, v := range verts {
				baked[j] = v
				baked[j].Position = node.Transform.TransformPoint(v.Position)
				baked[j].Normal = normalMat.TransformDirection(v.Normal).Normalize()
			}
			mat := DefaultMaterial()
			if i < len(node.Materials) {
				mat = node.Materials[i]
			}
			idx := []uint32(nil)
			if i < len(node.Indices) {
				idx = node.Indices[i]
			}
			meshes = append(meshes, Mesh{Vertices: baked, Indices: idx, Material: mat})
		}
		c.byName[key] = meshes
	}
}
