package gltfimport

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	glbMagic      = 0x46546C67 // "glTF"
	chunkTypeJSON = 0x4E4F534A // "JSON"
	chunkTypeBin  = 0x004E4942 // "BIN\0"
)

// ReadGLB parses a binary glTF container into a Document with its single BIN chunk
// attached to Buffers[0].Data. No importable third-party glTF decoder
// is available, so this container/JSON walk is written directly
// against encoding/json and encoding/binary.
func ReadGLB(r io.Reader) (*Document, error) {
	var header struct {
		Magic   uint32
		Version uint32
		Length  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("gltfimport: read header: %w", err)
	}
	if header.Magic != glbMagic {
		return nil, fmt.Errorf("gltfimport: not a glb file (bad magic)")
	}

	var doc Document
	var haveJSON bool

	for {
		var chunkLen, chunkType uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkLen); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("gltfimport: read chunk length: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &chunkType); err != nil {
			return nil, fmt.Errorf("gltfimport: read chunk type: %w", err)
		}
		payload := make([]byte, chunkLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("gltfimport: read chunk payload: %w", err)
		}

		switch chunkType {
		case chunkTypeJSON:
			if err := json.Unmarshal(payload, &doc); err != nil {
				return nil, fmt.Errorf("gltfimport: decode json chunk: %w", err)
			}
			haveJSON = true
		case chunkTypeBin:
			if len(doc.Buffers) == 0 {
				return nil, fmt.Errorf("gltfimport: binary chunk with no buffer declared")
			}
			doc.Buffers[0].Data = payload
		}
	}

	if !haveJSON {
		return nil, fmt.Errorf("gltfimport: missing JSON chunk")
	}
	return &doc, nil
}

// bufferBytes returns the raw bytes a bufferView covers.
func (d *Document) bufferBytes(viewIndex int) ([]byte, error) {
	if viewIndex < 0 || viewIndex >= len(d.BufferViews) {
		return nil, fmt.Errorf("gltfimport: bufferView index %d out of range", viewIndex)
	}
	view := d.BufferViews[viewIndex]
	if view.Buffer < 0 || view.Buffer >= len(d.Buffers) {
		return nil, fmt.Errorf("gltfimport: buffer index %d out of range", view.Buffer)
	}
	buf := d.Buffers[view.Buffer].Data
	if view.ByteOffset+view.ByteLength > len(buf) {
		return nil, fmt.Errorf("gltfimport: bufferView exceeds buffer bounds")
	}
	return buf[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}
