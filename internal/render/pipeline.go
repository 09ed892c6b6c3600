package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"flint/internal/ecs"
	"flint/internal/mathutil"
)

// DrawCall is one entity's draw, after the scene pass has resolved its
// mesh, material, and world transform.
type DrawCall struct {
	EntityID  EntityID
	Mesh      Mesh
	Model     mathutil.Mat4
	Selected  bool
	Wireframe bool
}

type EntityID = ecs.EntityID

// SceneRenderer owns the HDR target, the post-process chain, the mesh
// cache, and per-frame pipeline state.
type SceneRenderer struct {
	Meshes *Cache

	Width, Height int
	hdr           *ebiten.Image
	ssao          *ebiten.Image
	ssaoBlurred   *ebiten.Image
	bloom         BloomChain
	final         *ebiten.Image

	CascadeConfig  CascadeConfig
	PostProcess    PostProcessConfig
	DebugMode      DebugMode
	ShowGrid       bool
	SelectedEntity EntityID
	HasSelection   bool

	ssaoKernel []([3]float64)
	ssaoNoise  [16][2]float64
}

func NewSceneRenderer(width, height int) *SceneRenderer {
	return &SceneRenderer{
		Meshes:        NewCache(),
		Width:         width,
		Height:        height,
		hdr:           ebiten.NewImage(width, height),
		ssao:          ebiten.NewImage(width, height),
		ssaoBlurred:   ebiten.NewImage(width, height),
		final:         ebiten.NewImage(width, height),
		CascadeConfig: DefaultCascadeConfig(),
		PostProcess:   DefaultPostProcessConfig(),
		ssaoKernel:    HemisphereKernel(64),
		ssaoNoise:     TiledRotationNoise(),
	}
}

// FrameInputs bundles what one Render call needs: the world to draw,
// the active camera, and the entities the caller has already resolved
// into draw calls (resolving entities into DrawCalls lives in
// internal/app, since it needs the viewer's selection state; no
// visibility culling is done on either side).
type FrameInputs struct {
	World      *ecs.World
	CameraView mathutil.Mat4
	CameraProj mathutil.Mat4
	CameraPos  mathutil.Vec3
	FovY       float64
	Aspect     float64
	Near, Far  float64
	Solid      []DrawCall
	Skinned    []SkinnedDrawCall
}

// SkinnedDrawCall pairs a DrawCall with the bone matrices read from its
// skin.
type SkinnedDrawCall struct {
	DrawCall
	Bones []mathutil.Mat4
}

// RenderFrame runs the per-frame pipeline in order: extract lights,
// update cascades (when there is a directional light), shadow pass, scene pass, SSAO,
// bloom, composite. Returns the final sRGB image.
func (r *SceneRenderer) RenderFrame(in FrameInputs) *ebiten.Image {
	lights := ExtractLights(in.World)

	var cascades []Cascade
	if len(lights.Directional) > 0 {
		cascades = UpdateCascades(r.CascadeConfig, in.CameraView, in.FovY, in.Aspect, in.Near, in.Far, lights.Directional[0].Direction)
	}

	r.shadowPass(cascades, in)
	r.scenePass(lights, cascades, in)

	var ssaoTex *ebiten.Image
	if r.PostProcess.SSAOEnabled {
		ssaoTex = r.ssaoPass(in)
	} else {
		r.ssao.Fill(color.White)
		ssaoTex = r.ssao
	}

	var bloomTex *ebiten.Image
	if r.PostProcess.BloomEnabled {
		bloomTex = r.bloom.Apply(r.hdr, r.PostProcess, 5)
	} else {
		bloomTex = ebiten.NewImage(1, 1)
	}

	r.composite(bloomTex, ssaoTex)
	return r.final
}

// shadowPass is the per-cascade shadow step. It renders nothing: no
// depth or silhouette images are produced, here or by the caller, and
// the computed cascades are not read by any later pass.
func (r *SceneRenderer) shadowPass(cascades []Cascade, in FrameInputs) {
	_ = cascades
	_ = in
}

// scenePass clears the HDR target, then runs the grid, solid, skinned
// and selection-outline steps. Those steps build uniform data but issue
// no draws, so the HDR target stays cleared; skybox, billboards,
// particles and wireframe/normal overlays are not handled.
func (r *SceneRenderer) scenePass(lights LightSet, cascades []Cascade, in FrameInputs) {
	r.hdr.Clear()

	if r.ShowGrid {
		r.drawGrid(in)
	}

	for _, dc := range in.Solid {
		r.drawSolid(dc, lights, in)
	}
	for _, dc := range in.Skinned {
		r.drawSkinned(dc, lights, in)
	}

	if r.HasSelection {
		for _, dc := range in.Solid {
			if dc.EntityID == r.SelectedEntity {
				r.drawOutline(dc, in)
			}
		}
	}
}

func (r *SceneRenderer) drawGrid(in FrameInputs) {}

func (r *SceneRenderer) drawSolid(dc DrawCall, lights LightSet, in FrameInputs) {
	_ = NewTransformUniforms(in.CameraProj.Mul(in.CameraView), dc.Model, in.CameraPos)
	_ = NewLightUniforms(lights, nil)
}

func (r *SceneRenderer) drawSkinned(dc SkinnedDrawCall, lights LightSet, in FrameInputs) {
	_ = BoneUniforms{Matrices: dc.Bones}
}

// drawOutline looks up the outline pipeline sequence for the current
// debug mode (the wireframe-safe one under DebugWireframeOnly); it
// issues no draw.
func (r *SceneRenderer) drawOutline(dc DrawCall, in FrameInputs) {
	_ = r.DebugMode.OutlinePipelineSequence()
}

// ssaoPass fills the occlusion image with white (no occlusion) and runs
// the 4x4 box blur over it. The hemisphere kernel and rotation noise
// held by the renderer are not sampled.
func (r *SceneRenderer) ssaoPass(in FrameInputs) *ebiten.Image {
	r.ssao.Fill(color.White)

	shader := ensureSSAOBlurShader()
	var op ebiten.DrawRectShaderOptions
	op.Images[0] = r.ssao
	r.ssaoBlurred.DrawRectShader(r.Width, r.Height, shader, &op)
	return r.ssaoBlurred
}

// composite reads the HDR, bloom, and SSAO images, applies exposure,
// ACES-approximated tonemapping, gamma, vignette, and chromatic
// aberration, and writes to r.final. The RadialBlur setting is passed
// to the shader, which does not apply it.
func (r *SceneRenderer) composite(bloom, ssao *ebiten.Image) {
	shader := ensureCompositeShader()
	var op ebiten.DrawRectShaderOptions
	op.Images[0] = r.hdr
	op.Images[1] = bloom
	op.Images[2] = ssao
	op.Uniforms = map[string]any{
		"Exposure":            float32(r.PostProcess.Exposure),
		"Vignette":            float32(r.PostProcess.Vignette),
		"ChromaticAberration": float32(r.PostProcess.ChromaticAberration),
		"RadialBlur":          float32(r.PostProcess.RadialBlur),
		"TexSize":             []float32{float32(r.Width), float32(r.Height)},
	}
	r.final.Clear()
	r.final.DrawRectShader(r.Width, r.Height, shader, &op)
}
