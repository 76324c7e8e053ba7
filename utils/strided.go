package utils

import (
	"github.com/pkg/errors"
)

// Buffers arrive as flat float slices with a byte stride so interleaved
// vertex formats can be consumed without repacking.

func DecodeVec3Array(buf []float32, count int, strideBytes int) ([][3]float32, error) {
	if strideBytes%4 != 0 {
		return nil, errors.Errorf("Stride %v is not float-aligned", strideBytes)
	}
	stride := strideBytes / 4
	if stride < 3 {
		return nil, errors.Errorf("Stride %v is too small for a 3-component attribute", strideBytes)
	}
	if count > 0 && len(buf) < (count-1)*stride+3 {
		return nil, errors.Errorf("Buffer of %v floats does not hold %v vertices with stride %v", len(buf), count, strideBytes)
	}

	out := make([][3]float32, count)
	for i := 0; i < count; i++ {
		base := i * stride
		out[i] = [3]float32{buf[base], buf[base+1], buf[base+2]}
	}
	return out, nil
}

func DecodeVec2Array(buf []float32, count int, strideBytes int) ([][2]float32, error) {
	if strideBytes%4 != 0 {
		return nil, errors.Errorf("Stride %v is not float-aligned", strideBytes)
	}
	stride := strideBytes / 4
	if stride < 2 {
		return nil, errors.Errorf("Stride %v is too small for a 2-component attribute", strideBytes)
	}
	if count > 0 && len(buf) < (count-1)*stride+2 {
		return nil, errors.Errorf("Buffer of %v floats does not hold %v vertices with stride %v", len(buf), count, strideBytes)
	}

	out := make([][2]float32, count)
	for i := 0; i < count; i++ {
		base := i * stride
		out[i] = [2]float32{buf[base], buf[base+1]}
	}
	return out, nil
}

func FloatArray32to64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
