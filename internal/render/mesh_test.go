package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/mathutil"
)

func TestCacheUploadDeduplicatesByName(t *testing.T) {
	c := NewCache()
	c.Upload("crate", []Mesh{{Material: DefaultMaterial()}})
	c.Upload("crate", []Mesh{{Material: Material{Name: "should-not-replace"}}})

	meshes, ok := c.Get("crate")
	require.True(t, ok)
	require.Len(t, meshes, 1)
	assert.Equal(t, DefaultMaterial(), meshes[0].Material)
}

func TestUploadFlattenedBakesWorldTransformIntoVertices(t *testing.T) {
	c := NewCache()
	transform := mathutil.Translation(mathutil.Vec3{X: 10, Y: 0, Z: 0})

	nodes := []ImportedNode{
		{
			Name: "body",
			Meshes: [][]Vertex{
				{{Position: mathutil.Vec3{X: 0, Y: 0, Z: 0}, Normal: mathutil.Up}},
			},
			Indices:   [][]uint32{{0}},
			Materials: []Material{DefaultMaterial()},
			Transform: transform,
		},
	}

	c.UploadFlattened("robot", nodes)

	meshes, ok := c.Get("robot/body")
	require.True(t, ok)
	require.Len(t, meshes, 1)
	require.Len(t, meshes[0].Vertices, 1)
	assert.InDelta(t, 10.0, meshes[0].Vertices[0].Position.X, 1e-9)
}

func TestUploadFlattenedIsDeduplicatedPerNode(t *testing.T) {
	c := NewCache()
	nodes := []ImportedNode{
		{Name: "a", Meshes: [][]Vertex{{{Position: mathutil.Zero}}}, Transform: mathutil.Mat4Identity},
	}
	c.UploadFlattened("scene1", nodes)
	c.UploadFlattened("scene1", nodes)

	_, ok := c.Get("scene1/a")
	assert.True(t, ok)
}

func TestUploadFlattenedNormalizesNormalsUnderNonUniformScale(t *testing.T) {
	c := NewCache()
	transform := mathutil.Scaling(mathutil.Vec3{X: 2, Y: 1, Z: 1})

	nodes := []ImportedNode{
		{
			Name:      "stretched",
			Meshes:    [][]Vertex{{{Position: mathutil.Vec3{X: 1, Y: 0, Z: 0}, Normal: mathutil.Vec3{X: 1, Y: 0, Z: 0}}}},
			Materials: []Material{DefaultMaterial()},
			Transform: transform,
		},
	}

	c.UploadFlattened("obj", nodes)

	meshes, _ := c.Get("obj/stretched")
	n := meshes[0].Vertices[0].Normal
	assert.InDelta(t, 1.0, n.Length(), 1e-6)
}
