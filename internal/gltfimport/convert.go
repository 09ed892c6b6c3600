package gltfimport

import (
	"fmt"

	"flint/internal/mathutil"
	"flint/internal/render"
)

// Convert walks a Document's default scene and returns one
// render.ImportedNode per mesh-bearing node, with Transform already
// the accumulated world transform (parent chain composed down to that
// node), ready for render.Cache.UploadFlattened. Unlike a single-node
// importer, this walks the full scene graph so multi-node meshes are
// baked to world space on import.
func Convert(doc *Document) ([]render.ImportedNode, error) {
	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("gltfimport: document has no scenes")
	}
	scene := doc.Scenes[doc.Scene]

	var out []render.ImportedNode
	for _, rootIdx := range scene.Nodes {
		if err := walkNode(doc, rootIdx, mathutil.Mat4Identity, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func walkNode(doc *Document, nodeIdx int, parentWorld mathutil.Mat4, out *[]render.ImportedNode) error {
	if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
		return fmt.Errorf("gltfimport: node index %d out of range", nodeIdx)
	}
	node := doc.Nodes[nodeIdx]
	local := localTransform(node)
	world := parentWorld.Mul(local)

	if node.Mesh != nil {
		imported, err := convertMesh(doc, *node.Mesh, node.Name, world)
		if err != nil {
			return err
		}
		*out = append(*out, imported)
	}

	for _, child := range node.Children {
		if err := walkNode(doc, child, world, out); err != nil {
			return err
		}
	}
	return nil
}

func localTransform(node Node) mathutil.Mat4 {
	if node.Matrix != nil {
		return mathutil.Mat4(*node.Matrix)
	}
	translation := mathutil.Zero
	rotation := mathutil.QuatIdentity
	scale := mathutil.Vec3{X: 1, Y: 1, Z: 1}
	if node.Translation != nil {
		translation = mathutil.Vec3{X: node.Translation[0], Y: node.Translation[1], Z: node.Translation[2]}
	}
	if node.Rotation != nil {
		rotation = mathutil.Quat{X: node.Rotation[0], Y: node.Rotation[1], Z: node.Rotation[2], W: node.Rotation[3]}
	}
	if node.Scale != nil {
		scale = mathutil.Vec3{X: node.Scale[0], Y: node.Scale[1], Z: node.Scale[2]}
	}
	return mathutil.TRS(translation, rotation, scale)
}

func convertMesh(doc *Document, meshIdx int, nodeName string, world mathutil.Mat4) (render.ImportedNode, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return render.ImportedNode{}, fmt.Errorf("gltfimport: mesh index %d out of range", meshIdx)
	}
	mesh := doc.Meshes[meshIdx]

	node := render.ImportedNode{Name: nodeName, Transform: world}
	if node.Name == "" {
		node.Name = mesh.Name
	}

	for _, prim := range mesh.Primitives {
		verts, err := convertPrimitiveVertices(doc, prim)
		if err != nil {
			return render.ImportedNode{}, err
		}
		node.Meshes = append(node.Meshes, verts)

		if prim.Indices != nil {
			idx, err := doc.readIndices(*prim.Indices)
			if err != nil {
				return render.ImportedNode{}, err
			}
			node.Indices = append(node.Indices, idx)
		} else {
			idx := make([]uint32, len(verts))
			for i := range idx {
				idx[i] = uint32(i)
			}
			node.Indices = append(node.Indices, idx)
		}

		node.Materials = append(node.Materials, convertMaterial(doc, prim.Material))
	}
	return node, nil
}

func convertPrimitiveVertices(doc *Document, prim Primitive) ([]render.Vertex, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("gltfimport: primitive missing POSITION attribute")
	}
	positions, err := doc.readFloats(posIdx)
	if err != nil {
		return nil, err
	}

	verts := make([]render.Vertex, len(positions))
	for i, p := range positions {
		verts[i].Position = mathutil.Vec3{X: p[0], Y: p[1], Z: p[2]}
		verts[i].Color = [4]float64{1, 1, 1, 1}
	}

	if normIdx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := doc.readFloats(normIdx)
		if err != nil {
			return nil, err
		}
		for i, n := range normals {
			if i < len(verts) {
				verts[i].Normal = mathutil.Vec3{X: n[0], Y: n[1], Z: n[2]}
			}
		}
	}

	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := doc.readFloats(uvIdx)
		if err != nil {
			return nil, err
		}
		for i, uv := range uvs {
			if i < len(verts) {
				verts[i].U, verts[i].V = uv[0], uv[1]
			}
		}
	}

	if colIdx, ok := prim.Attributes["COLOR_0"]; ok {
		cols, err := doc.readFloats(colIdx)
		if err != nil {
			return nil, err
		}
		for i, c := range cols {
			if i >= len(verts) {
				continue
			}
			switch len(c) {
			case 4:
				verts[i].Color = [4]float64{c[0], c[1], c[2], c[3]}
			case 3:
				verts[i].Color = [4]float64{c[0], c[1], c[2], 1}
			}
		}
	}

	if jointIdx, ok := prim.Attributes["JOINTS_0"]; ok {
		joints, err := doc.readFloats(jointIdx)
		if err != nil {
			return nil, err
		}
		for i, j := range joints {
			if i >= len(verts) {
				continue
			}
			for k := 0; k < 4 && k < len(j); k++ {
				verts[i].Joints[k] = int(j[k])
			}
		}
	}

	if weightIdx, ok := prim.Attributes["WEIGHTS_0"]; ok {
		weights, err := doc.readFloats(weightIdx)
		if err != nil {
			return nil, err
		}
		for i, w := range weights {
			if i >= len(verts) {
				continue
			}
			for k := 0; k < 4 && k < len(w); k++ {
				verts[i].Weights[k] = w[k]
			}
		}
	}

	return verts, nil
}

func convertMaterial(doc *Document, materialIdx *int) render.Material {
	if materialIdx == nil || *materialIdx < 0 || *materialIdx >= len(doc.Materials) {
		return render.DefaultMaterial()
	}
	mat := doc.Materials[*materialIdx]
	out := render.Material{Name: mat.Name, BaseColor: [4]float64{1, 1, 1, 1}, Roughness: 1.0}
	if mat.PBRMetallicRoughness != nil {
		pbr := mat.PBRMetallicRoughness
		out.BaseColor = pbr.baseColor()
		out.Metallic = pbr.metallic()
		out.Roughness = pbr.roughness()
		if pbr.BaseColorTexture != nil {
			out.BaseColorTexture = textureName(doc, pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessTexture = textureName(doc, pbr.MetallicRoughnessTexture.Index)
		}
	}
	if mat.NormalTexture != nil {
		out.NormalTexture = textureName(doc, mat.NormalTexture.Index)
	}
	return out
}

func textureName(doc *Document, textureIdx int) string {
	if textureIdx < 0 || textureIdx >= len(doc.Textures) {
		return ""
	}
	tex := doc.Textures[textureIdx]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return ""
	}
	img := doc.Images[*tex.Source]
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("image_%d", *tex.Source)
}
