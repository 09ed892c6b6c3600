package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// PostProcessConfig controls the composite pass's tonemap/vignette/
// chromatic-aberration/radial-blur parameters.
type PostProcessConfig struct {
	Exposure            float64
	BloomEnabled        bool
	BloomThreshold      float64
	BloomIntensity      float64
	SSAOEnabled         bool
	SSAORadius          float64
	SSAOIntensity       float64
	Vignette            float64
	ChromaticAberration float64
	RadialBlur          float64
}

func DefaultPostProcessConfig() PostProcessConfig {
	return PostProcessConfig{
		Exposure:       1.0,
		BloomEnabled:   true,
		BloomThreshold: 1.0,
		BloomIntensity: 0.6,
		SSAOEnabled:    true,
		SSAORadius:     0.5,
		SSAOIntensity:  1.0,
	}
}

// --- Kage shader sources ---
//
// Each is a //kage:unit pixels fragment shader compiled once and reused
// via DrawRectShader. The Kawase-style downsample/upsample bloom chain
// below follows the usual iterative halve-then-composite structure.

const bloomThresholdShaderSrc = `//kage:unit pixels
package main

var Threshold float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	lum := 0.2126*c.r + 0.7152*c.g + 0.0722*c.b
	if lum <= Threshold {
		return vec4(0)
	}
	scale := (lum - Threshold) / max(lum, 0.0001)
	return vec4(c.rgb*scale*c.a, c.a)
}
`

const compositeShaderSrc = `//kage:unit pixels
package main

var Exposure float
var Vignette float
var ChromaticAberration float
var RadialBlur float
var TexSize vec2

func acesApprox(x vec3) vec3 {
	a := 2.51
	b := 0.03
	c := 2.43
	d := 0.59
	e := 0.14
	return clamp((x*(a*x+b))/(x*(c*x+d)+e), 0, 1)
}

func sampleChroma(uv vec2, offset vec2) vec3 {
	r := imageSrc0At(uv + offset).r
	g := imageSrc0At(uv).g
	b := imageSrc0At(uv - offset).b
	return vec3(r, g, b)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	uv := src / TexSize
	center := vec2(0.5, 0.5)
	toCenter := uv - center

	offset := toCenter * ChromaticAberration
	hdr := sampleChroma(src, offset*TexSize)

	bloom := imageSrc1At(src)
	if bloom.a > 0 {
		bloom.rgb /= bloom.a
	}
	ao := imageSrc2At(src).r

	col := (hdr + bloom.rgb) * ao * Exposure
	col = acesApprox(col)
	col = pow(col, vec3(1.0/2.2))

	dist := length(toCenter)
	vign := 1.0 - Vignette*dist*dist
	col *= clamp(vign, 0, 1)

	return vec4(col, 1.0)
}
`

const ssaoBlurShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	sum := 0.0
	for dy := -1; dy <= 2; dy++ {
		for dx := -1; dx <= 2; dx++ {
			sum += imageSrc0At(src + vec2(float(dx), float(dy))).r
		}
	}
	avg := sum / 16.0
	return vec4(avg, avg, avg, 1.0)
}
`

var (
	bloomThresholdShader *ebiten.Shader
	compositeShader      *ebiten.Shader
	ssaoBlurShader       *ebiten.Shader
)

func ensureBloomThresholdShader() *ebiten.Shader {
	if bloomThresholdShader == nil {
		s, err := ebiten.NewShader([]byte(bloomThresholdShaderSrc))
		if err != nil {
			panic("render: failed to compile bloom threshold shader: " + err.Error())
		}
		bloomThresholdShader = s
	}
	return bloomThresholdShader
}

func ensureCompositeShader() *ebiten.Shader {
	if compositeShader == nil {
		s, err := ebiten.NewShader([]byte(compositeShaderSrc))
		if err != nil {
			panic("render: failed to compile composite shader: " + err.Error())
		}
		compositeShader = s
	}
	return compositeShader
}

func ensureSSAOBlurShader() *ebiten.Shader {
	if ssaoBlurShader == nil {
		s, err := ebiten.NewShader([]byte(ssaoBlurShaderSrc))
		if err != nil {
			panic("render: failed to compile SSAO blur shader: " + err.Error())
		}
		ssaoBlurShader = s
	}
	return ssaoBlurShader
}

// BloomChain holds the progressive half-size mip images used by the
// downsample/additive-upsample bloom pass, the same temp-image
// management a Kawase-style blur filter needs.
type BloomChain struct {
	mips []*ebiten.Image
}

func (b *BloomChain) ensureMips(w, h, count int) {
	for len(b.mips) < count {
		b.mips = append(b.mips, nil)
	}
	for i := count; i < len(b.mips); i++ {
		if b.mips[i] != nil {
			b.mips[i].Deallocate()
			b.mips[i] = nil
		}
	}
	b.mips = b.mips[:count]
	for i := 0; i < count; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		if b.mips[i] == nil || b.mips[i].Bounds().Dx() != w || b.mips[i].Bounds().Dy() != h {
			if b.mips[i] != nil {
				b.mips[i].Deallocate()
			}
			b.mips[i] = ebiten.NewImage(w, h)
		}
	}
}

// Apply extracts bright pixels above cfg.BloomThreshold from hdr, builds
// a progressive half-size downsample chain, then additively upsamples
// back to mip 0, returning the mip-0 bloom image.
func (b *BloomChain) Apply(hdr *ebiten.Image, cfg PostProcessConfig, mipCount int) *ebiten.Image {
	bounds := hdr.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b.ensureMips(w, h, mipCount)

	shader := ensureBloomThresholdShader()
	m0 := b.mips[0]
	m0.Clear()
	dw, dh := m0.Bounds().Dx(), m0.Bounds().Dy()

	scaled := ebiten.NewImage(dw, dh)
	var imgOp ebiten.DrawImageOptions
	imgOp.GeoM.Scale(float64(dw)/float64(w), float64(dh)/float64(h))
	imgOp.Filter = ebiten.FilterLinear
	scaled.DrawImage(hdr, &imgOp)

	var shaderOp ebiten.DrawRectShaderOptions
	shaderOp.Images[0] = scaled
	shaderOp.Uniforms = map[string]any{"Threshold": float32(cfg.BloomThreshold)}
	m0.DrawRectShader(dw, dh, shader, &shaderOp)
	scaled.Deallocate()

	current := m0
	for i := 1; i < mipCount; i++ {
		dst := b.mips[i]
		dst.Clear()
		dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()
		sw, sh := current.Bounds().Dx(), current.Bounds().Dy()
		var downOp ebiten.DrawImageOptions
		downOp.GeoM.Scale(float64(dw)/float64(sw), float64(dh)/float64(sh))
		downOp.Filter = ebiten.FilterLinear
		dst.DrawImage(current, &downOp)
		current = dst
	}

	for i := mipCount - 2; i >= 0; i-- {
		dst := b.mips[i]
		sw, sh := current.Bounds().Dx(), current.Bounds().Dy()
		dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()
		var upOp ebiten.DrawImageOptions
		upOp.GeoM.Scale(float64(dw)/float64(sw), float64(dh)/float64(sh))
		upOp.Filter = ebiten.FilterLinear
		upOp.Blend = ebiten.BlendLighter
		upOp.ColorScale.ScaleAlpha(float32(cfg.BloomIntensity))
		dst.DrawImage(current, &upOp)
		current = dst
	}

	return b.mips[0]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// HemisphereKernel generates count deterministic hemisphere sample
// vectors for SSAO. Samples are biased toward the kernel center and
// scaled so more fall near the origin, the standard SSAO kernel
// distribution.
func HemisphereKernel(count int) [][3]float64 {
	kernel := make([][3]float64, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count)
		golden := math.Mod(float64(i)*0.6180339887498949, 1.0)
		theta := 2 * math.Pi * golden
		z := 0.01 + 0.99*t // hemisphere (z in [0.01,1])
		r := math.Sqrt(1 - z*z)
		x := r * math.Cos(theta)
		y := r * math.Sin(theta)

		scale := 0.1 + 0.9*t*t // bias samples toward the origin
		kernel[i] = [3]float64{x * scale, y * scale, z * scale}
	}
	return kernel
}

// TiledRotationNoise generates a deterministic 4x4 tile of rotation
// vectors used to jitter the SSAO kernel per-pixel.
func TiledRotationNoise() [16][2]float64 {
	var noise [16][2]float64
	for i := 0; i < 16; i++ {
		angle := 2 * math.Pi * float64(i) / 16.0
		noise[i] = [2]float64{math.Cos(angle), math.Sin(angle)}
	}
	return noise
}
