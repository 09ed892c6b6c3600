// Package gltfimport reads glTF 2.0 binary (.glb) scenes into the
// flat node/mesh/material/skin shape internal/render needs to bake
// meshes into its cache.
package gltfimport

// Document mirrors the subset of the glTF 2.0 JSON schema this
// importer understands: the same accessor/bufferView/buffer chain a
// minimal glTF reader walks, but extended to the full scene graph
// rather than a single mesh, since multi-node assets need every node
// baked to world space.
type Document struct {
	Scene       int          `json:"scene"`
	Scenes      []SceneDesc  `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []MeshDesc   `json:"meshes"`
	Accessors   []Accessor   `json:"accessors"`
	BufferViews []BufferView `json:"bufferViews"`
	Buffers     []BufferDesc `json:"buffers"`
	Materials   []MaterialDesc `json:"materials"`
	Textures    []TextureDesc  `json:"textures"`
	Images      []ImageDesc    `json:"images"`
	Skins       []SkinDesc     `json:"skins"`
	Animations  []AnimationDesc `json:"animations"`
}

type SceneDesc struct {
	Nodes []int `json:"nodes"`
}

type Node struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Mesh        *int      `json:"mesh"`
	Skin        *int      `json:"skin"`
	Translation *[3]float64 `json:"translation"`
	Rotation    *[4]float64 `json:"rotation"` // x,y,z,w
	Scale       *[3]float64 `json:"scale"`
	Matrix      *[16]float64 `json:"matrix"`
}

type MeshDesc struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
}

const (
	componentByte          = 5120
	componentUnsignedByte  = 5121
	componentShort         = 5122
	componentUnsignedShort = 5123
	componentUnsignedInt   = 5125
	componentFloat         = 5126
)

type Accessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"` // "SCALAR", "VEC2", "VEC3", "VEC4"
	Normalized    bool   `json:"normalized"`
}

func (a Accessor) componentsPerElement() int {
	switch a.Type {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	case "MAT4":
		return 16
	default:
		return 0
	}
}

type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

type BufferDesc struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri"`
	Data       []byte `json:"-"`
}

type MaterialDesc struct {
	Name                 string                `json:"name"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness"`
	NormalTexture        *TextureRef           `json:"normalTexture"`
}

type PBRMetallicRoughness struct {
	BaseColorFactor          *[4]float64 `json:"baseColorFactor"`
	BaseColorTexture         *TextureRef `json:"baseColorTexture"`
	MetallicFactor           *float64    `json:"metallicFactor"`
	RoughnessFactor          *float64    `json:"roughnessFactor"`
	MetallicRoughnessTexture *TextureRef `json:"metallicRoughnessTexture"`
}

type TextureRef struct {
	Index int `json:"index"`
}

type TextureDesc struct {
	Source *int `json:"source"`
}

type ImageDesc struct {
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	BufferView *int   `json:"bufferView"`
	URI        string `json:"uri"`
}

type SkinDesc struct {
	Name                string `json:"name"`
	Joints              []int  `json:"joints"`
	InverseBindMatrices *int   `json:"inverseBindMatrices"`
}

type AnimationDesc struct {
	Name     string             `json:"name"`
	Channels []AnimationChannel `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

type AnimationChannel struct {
	Sampler int                 `json:"sampler"`
	Target  AnimationChanTarget `json:"target"`
}

type AnimationChanTarget struct {
	Node *int   `json:"node"`
	Path string `json:"path"` // "translation", "rotation", "scale", "weights"
}

type AnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation"`
}

func (m PBRMetallicRoughness) metallic() float64 {
	if m.MetallicFactor != nil {
		return *m.MetallicFactor
	}
	return 1.0
}

func (m PBRMetallicRoughness) roughness() float64 {
	if m.RoughnessFactor != nil {
		return *m.RoughnessFactor
	}
	return 1.0
}

func (m PBRMetallicRoughness) baseColor() [4]float64 {
	if m.BaseColorFactor != nil {
		return *m.BaseColorFactor
	}
	return [4]float64{1, 1, 1, 1}
}
