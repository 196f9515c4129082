// Package mapper implements the SOM dump/output writer and the "map"
// operation: assigning each input in a data set to its best-matching
// neuron.
package mapper

import (
	"encoding/binary"
	"fmt"
	"io"

	"somtrain/internal/som/bank"
	"somtrain/internal/som/dataio"
	"somtrain/internal/som/grid"
	"somtrain/internal/som/matcher"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
	"somtrain/internal/somerr"
)

// Viewer displays a float32 2D buffer. The default implementation is a
// no-op; a real image viewer is an external collaborator out of this
// engine's scope.
type Viewer interface {
	Show(buf []float32, h, w int)
}

// NoopViewer implements Viewer as a no-op.
type NoopViewer struct{}

// Show does nothing.
func (NoopViewer) Show([]float32, int, int) {}

// WriteSOM composes every neuron into one big image of shape
// (somH*neuronH, somW*neuronW), with block (i,j) at pixel offset
// (i*neuronH, j*neuronW) holding neurons.Slice(i*somW+j), and writes it
// as raw little-endian float32 row-major data.
func WriteSOM(w io.Writer, neurons *tensor.Tensor[float32], somH, somW, neuronH, neuronW int) error {
	if neurons.Shape[0] != somH*somW {
		return fmt.Errorf("%w: neurons has %d cells, want %d for a %dx%d grid", somerr.ErrDimensionMismatch, neurons.Shape[0], somH*somW, somH, somW)
	}

	outW := somW * neuronW
	composite := make([]float32, somH*neuronH*outW)

	for i := 0; i < somH; i++ {
		for j := 0; j < somW; j++ {
			block := neurons.Slice(i*somW + j)
			for k := 0; k < neuronH; k++ {
				dstRow := (i*neuronH + k) * outW
				dstStart := dstRow + j*neuronW
				copy(composite[dstStart:dstStart+neuronW], block[k*neuronW:(k+1)*neuronW])
			}
		}
	}

	if err := binary.Write(w, binary.LittleEndian, composite); err != nil {
		return fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}
	return nil
}

// LoadSOM reads a composite image produced by WriteSOM back into a
// (somH*somW, neuronH, neuronW) neuron tensor.
func LoadSOM(r io.Reader, somH, somW, neuronH, neuronW int) (*tensor.Tensor[float32], error) {
	outW := somW * neuronW
	composite := make([]float32, somH*neuronH*outW)
	if err := binary.Read(r, binary.LittleEndian, composite); err != nil {
		return nil, fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}

	neurons := tensor.New[float32](somH*somW, neuronH, neuronW)
	for i := 0; i < somH; i++ {
		for j := 0; j < somW; j++ {
			block := neurons.Slice(i*somW + j)
			for k := 0; k < neuronH; k++ {
				srcRow := (i*neuronH + k) * outW
				srcStart := srcRow + j*neuronW
				copy(block[k*neuronW:(k+1)*neuronW], composite[srcStart:srcStart+neuronW])
			}
		}
	}
	return neurons, nil
}

// Map iterates every entry of stream, computes its BMU against a trained
// SOM, and writes one little-endian int32 linear grid index per entry to
// w — the pack's companion to WriteSOM for assigning a data set against a
// trained map rather than training it.
func Map(stream io.ReadSeeker, w io.Writer, neurons *tensor.Tensor[float32], layout grid.Layout, rotations int, exec *pool.Executor) error {
	it, err := dataio.Open(stream)
	if err != nil {
		return err
	}

	neuronH, neuronW := neurons.Shape[1], neurons.Shape[2]

	for !it.Done() {
		image, err := it.Current()
		if err != nil {
			return err
		}
		extents := it.Extents()
		if len(extents) != 2 {
			return fmt.Errorf("%w: expected 2D images, got %d dims", somerr.ErrDimensionMismatch, len(extents))
		}

		variants, err := bank.Build(image, extents[0], extents[1], rotations, neuronH, neuronW, exec)
		if err != nil {
			return err
		}
		result := matcher.Match(neurons, variants, layout, exec)
		idx := int32(layout.Index(result.BMU))
		if err := binary.Write(w, binary.LittleEndian, idx); err != nil {
			return fmt.Errorf("%w: %v", somerr.ErrIO, err)
		}

		if err := it.Advance(); err != nil {
			return err
		}
	}
	return nil
}
