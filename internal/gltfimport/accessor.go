package gltfimport

import (
	"encoding/binary"
	"fmt"
	"math"
)

// readFloats decodes an accessor's elements as float64 rows, each row
// holding componentsPerElement() values. Normalized integer accessors
// (used by some exporters for UVs/colors) are rescaled to [0,1] or
// [-1,1] per the glTF spec's normalized-integer rules.
func (d *Document) readFloats(accessorIndex int) ([][]float64, error) {
	if accessorIndex < 0 || accessorIndex >= len(d.Accessors) {
		return nil, fmt.Errorf("gltfimport: accessor index %d out of range", accessorIndex)
	}
	acc := d.Accessors[accessorIndex]
	if acc.BufferView == nil {
		return nil, fmt.Errorf("gltfimport: sparse/zero-filled accessors are not supported")
	}
	raw, err := d.bufferBytes(*acc.BufferView)
	if err != nil {
		return nil, err
	}
	raw = raw[acc.ByteOffset:]

	n := acc.componentsPerElement()
	if n == 0 {
		return nil, fmt.Errorf("gltfimport: unknown accessor type %q", acc.Type)
	}

	elemSize, decode := componentDecoder(acc.ComponentType, acc.Normalized)
	if decode == nil {
		return nil, fmt.Errorf("gltfimport: unsupported component type %d", acc.ComponentType)
	}

	stride := n * elemSize
	rows := make([][]float64, acc.Count)
	for i := 0; i < acc.Count; i++ {
		row := make([]float64, n)
		base := i * stride
		for c := 0; c < n; c++ {
			row[c] = decode(raw[base+c*elemSize:])
		}
		rows[i] = row
	}
	return rows, nil
}

// readIndices decodes a SCALAR integer accessor into uint32 indices.
func (d *Document) readIndices(accessorIndex int) ([]uint32, error) {
	rows, err := d.readFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(rows))
	for i, r := range rows {
		out[i] = uint32(r[0])
	}
	return out, nil
}

func componentDecoder(componentType int, normalized bool) (size int, decode func([]byte) float64) {
	switch componentType {
	case componentByte:
		return 1, func(b []byte) float64 {
			v := float64(int8(b[0]))
			if normalized {
				return math.Max(v/127.0, -1.0)
			}
			return v
		}
	case componentUnsignedByte:
		return 1, func(b []byte) float64 {
			v := float64(b[0])
			if normalized {
				return v / 255.0
			}
			return v
		}
	case componentShort:
		return 2, func(b []byte) float64 {
			v := float64(int16(binary.LittleEndian.Uint16(b)))
			if normalized {
				return math.Max(v/32767.0, -1.0)
			}
			return v
		}
	case componentUnsignedShort:
		return 2, func(b []byte) float64 {
			v := float64(binary.LittleEndian.Uint16(b))
			if normalized {
				return v / 65535.0
			}
			return v
		}
	case componentUnsignedInt:
		return 4, func(b []byte) float64 {
			return float64(binary.LittleEndian.Uint32(b))
		}
	case componentFloat:
		return 4, func(b []byte) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
	default:
		return 0, nil
	}
}
