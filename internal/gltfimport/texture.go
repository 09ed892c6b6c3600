package gltfimport

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	ximagedraw "golang.org/x/image/draw"
)

// DecodeTexture decodes an embedded image (png/jpeg, referenced by a
// material's texture index) into an image.NRGBA, resizing it to
// maxDim on its longest side when it exceeds that bound. Handles both
// png and jpeg (some glTF exporters emit jpeg base color textures) and
// does mipmap-friendly downscaling via golang.org/x/image/draw's
// high-quality CatmullRom scaler, since the stdlib has no image resize.
func (d *Document) DecodeTexture(textureIndex, maxDim int) (*image.NRGBA, error) {
	if textureIndex < 0 || textureIndex >= len(d.Textures) {
		return nil, fmt.Errorf("gltfimport: texture index %d out of range", textureIndex)
	}
	tex := d.Textures[textureIndex]
	if tex.Source == nil {
		return nil, fmt.Errorf("gltfimport: texture has no image source")
	}
	if *tex.Source < 0 || *tex.Source >= len(d.Images) {
		return nil, fmt.Errorf("gltfimport: image index %d out of range", *tex.Source)
	}
	img := d.Images[*tex.Source]
	if img.BufferView == nil {
		return nil, fmt.Errorf("gltfimport: external image URIs are not supported, only embedded bufferView images")
	}

	raw, err := d.bufferBytes(*img.BufferView)
	if err != nil {
		return nil, err
	}

	var decoded image.Image
	switch img.MimeType {
	case "image/png":
		decoded, err = png.Decode(bytes.NewReader(raw))
	case "image/jpeg":
		decoded, err = jpeg.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("gltfimport: unsupported image mime type %q", img.MimeType)
	}
	if err != nil {
		return nil, fmt.Errorf("gltfimport: decode image: %w", err)
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if longest := max(w, h); longest > maxDim && maxDim > 0 {
		scale := float64(maxDim) / float64(longest)
		w, h = int(float64(w)*scale), int(float64(h)*scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
		ximagedraw.CatmullRom.Scale(scaled, scaled.Bounds(), decoded, bounds, ximagedraw.Over, nil)
		return scaled, nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), decoded, bounds.Min, draw.Src)
	return out, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
