package train

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"somtrain/internal/som/grid"
	"somtrain/internal/somerr"
)

func writeV1Stream(t *testing.T, extents []int, entries [][]float32) *bytes.Reader {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, [3]int32{0, 0, 0}))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(len(entries))))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(0)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(len(extents))))
	for _, e := range extents {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, int32(e)))
	}
	for _, entry := range entries {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, entry))
	}
	return bytes.NewReader(buf.Bytes())
}

func constSchedule(v float64) func(int, int, int) float64 {
	return func(int, int, int) float64 { return v }
}

func TestSingleImageIdentityTrainingEndToEnd(t *testing.T) {
	// 1x1 grid, image == neuron size, R=1. After one epoch with alpha=1,
	// sigma=1, the sole neuron must equal the input exactly.
	input := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	stream := writeV1Stream(t, []int{3, 3}, [][]float32{input})

	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	cfg := Config{
		Layout:    layout,
		NeuronH:   3,
		NeuronW:   3,
		Rotations: 1,
		Epochs:    1,
		Init:      "zero",
		Kernel:    "gaussian",
		Sigma:     constSchedule(1),
		Damping:   constSchedule(1),
	}

	result, err := Run(context.Background(), stream, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, Done, result.State)
	require.Equal(t, input, result.Neurons.Slice(0))
}

func TestRunFailsOnInvalidEpochs(t *testing.T) {
	stream := writeV1Stream(t, []int{2, 2}, [][]float32{{1, 2, 3, 4}})
	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)
	cfg := Config{Layout: layout, NeuronH: 2, NeuronW: 2, Rotations: 1, Epochs: 0}
	_, err = Run(context.Background(), stream, cfg, nil)
	require.Error(t, err)
}

func TestRunHonorsCancellation(t *testing.T) {
	entries := make([][]float32, 50)
	for i := range entries {
		entries[i] = []float32{float32(i), float32(i), float32(i), float32(i)}
	}
	stream := writeV1Stream(t, []int{2, 2}, entries)

	layout, err := grid.NewCartesian([]int{2, 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		Layout:    layout,
		NeuronH:   2,
		NeuronW:   2,
		Rotations: 1,
		Epochs:    3,
		Init:      "zero",
		Kernel:    "gaussian",
		Sigma:     constSchedule(1),
		Damping:   constSchedule(0.5),
	}

	result, err := Run(ctx, stream, cfg, nil)
	require.ErrorIs(t, err, somerr.ErrCancelled)
	require.Equal(t, Cancelled, result.State)
	require.Equal(t, 0, result.Steps)
}

func TestRunMultiEpochRewinds(t *testing.T) {
	entries := [][]float32{
		{1, 1, 1, 1},
		{2, 2, 2, 2},
	}
	stream := writeV1Stream(t, []int{2, 2}, entries)

	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	cfg := Config{
		Layout:    layout,
		NeuronH:   2,
		NeuronW:   2,
		Rotations: 1,
		Epochs:    2,
		Init:      "zero",
		Kernel:    "gaussian",
		Sigma:     constSchedule(1),
		Damping:   constSchedule(0.5),
	}

	result, err := Run(context.Background(), stream, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 4, result.Steps)
}
