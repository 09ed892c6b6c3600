package gltfimport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGLB packs a minimal glb container: one triangle, one root node
// with one child node offset along X, both referencing the same mesh.
func buildGLB(t *testing.T) []byte {
	t.Helper()

	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	var posBuf bytes.Buffer
	for _, f := range positions {
		require.NoError(t, binary.Write(&posBuf, binary.LittleEndian, f))
	}
	binData := posBuf.Bytes()

	doc := map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"scene": 0,
		"scenes": []any{
			map[string]any{"nodes": []int{0}},
		},
		"nodes": []any{
			map[string]any{
				"name":        "root",
				"translation": []float64{5, 0, 0},
				"children":    []int{1},
			},
			map[string]any{
				"name": "child",
				"mesh": 0,
			},
		},
		"meshes": []any{
			map[string]any{
				"name": "triangle",
				"primitives": []any{
					map[string]any{
						"attributes": map[string]any{"POSITION": 0},
					},
				},
			},
		},
		"accessors": []any{
			map[string]any{
				"bufferView":    0,
				"componentType": componentFloat,
				"count":         3,
				"type":          "VEC3",
			},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": len(binData)},
		},
		"buffers": []any{
			map[string]any{"byteLength": len(binData)},
		},
	}
	jsonBytes, err := json.Marshal(doc)
	require.NoError(t, err)

	// pad json chunk to a 4-byte boundary per the glb spec
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}
	for len(binData)%4 != 0 {
		binData = append(binData, 0)
	}

	var buf bytes.Buffer
	totalLen := uint32(12 + 8 + len(jsonBytes) + 8 + len(binData))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(glbMagic)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(2)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, totalLen))

	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(jsonBytes))))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(chunkTypeJSON)))
	buf.Write(jsonBytes)

	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(binData))))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(chunkTypeBin)))
	buf.Write(binData)

	return buf.Bytes()
}

func TestReadGLBParsesHeaderAndChunks(t *testing.T) {
	doc, err := ReadGLB(bytes.NewReader(buildGLB(t)))
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "root", doc.Nodes[0].Name)
	require.Len(t, doc.Buffers, 1)
	assert.NotEmpty(t, doc.Buffers[0].Data)
}

func TestReadGLBRejectsBadMagic(t *testing.T) {
	_, err := ReadGLB(bytes.NewReader([]byte("not a glb file at all, padded out")))
	assert.Error(t, err)
}

func TestConvertFlattensChildWorldTransform(t *testing.T) {
	doc, err := ReadGLB(bytes.NewReader(buildGLB(t)))
	require.NoError(t, err)

	nodes, err := Convert(doc)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	// child has identity local transform but root translates by (5,0,0)
	got := nodes[0].Transform.Translation()
	assert.InDelta(t, 5.0, got.X, 1e-9)
	assert.Equal(t, "child", nodes[0].Name)
}

func TestConvertReadsPositionsAsVertices(t *testing.T) {
	doc, err := ReadGLB(bytes.NewReader(buildGLB(t)))
	require.NoError(t, err)

	nodes, err := Convert(doc)
	require.NoError(t, err)
	require.Len(t, nodes[0].Meshes, 1)
	require.Len(t, nodes[0].Meshes[0], 3)
	assert.Equal(t, 1.0, nodes[0].Meshes[0][1].Position.X)
}

func TestConvertGeneratesSequentialIndicesWhenNoneAuthored(t *testing.T) {
	doc, err := ReadGLB(bytes.NewReader(buildGLB(t)))
	require.NoError(t, err)

	nodes, err := Convert(doc)
	require.NoError(t, err)
	require.Len(t, nodes[0].Indices, 1)
	assert.Equal(t, []uint32{0, 1, 2}, nodes[0].Indices[0])
}

func TestConvertErrorsOnEmptyScenes(t *testing.T) {
	_, err := Convert(&Document{})
	assert.Error(t, err)
}
