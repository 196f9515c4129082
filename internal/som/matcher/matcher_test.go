package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"somtrain/internal/som/grid"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
)

func TestBMUDeterminismIdenticalVsZero(t *testing.T) {
	layout, err := grid.NewCartesian([]int{2, 1})
	require.NoError(t, err)

	neurons := tensor.New[float32](2, 2, 2)
	// neuron 0: identical to the input's first variant.
	copy(neurons.Slice(0), []float32{1, 2, 3, 4})
	// neuron 1: all zeros.

	bankT := tensor.New[float32](1, 2, 2)
	copy(bankT.Slice(0), []float32{1, 2, 3, 4})

	res := Match(neurons, bankT, layout, nil)
	require.Equal(t, 0.0, res.D[0])
	require.Equal(t, 0, res.B[0])
	require.Equal(t, []int{0, 0}, res.BMU.Axes)
}

func TestMatchTieBreaksToLowestVariant(t *testing.T) {
	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	neurons := tensor.New[float32](1, 1)
	neurons.Data[0] = 5

	bankT := tensor.New[float32](3, 1)
	bankT.Data[0] = 3 // distance 2
	bankT.Data[1] = 5 // distance 0, best
	bankT.Data[2] = 5 // distance 0, tie with variant 1

	res := Match(neurons, bankT, layout, nil)
	require.Equal(t, 1, res.B[0])
}

func TestMatchParallelMatchesSerial(t *testing.T) {
	layout, err := grid.NewCartesian([]int{5, 5})
	require.NoError(t, err)

	neurons := tensor.New[float32](layout.Size(), 3, 3)
	for i := range neurons.Data {
		neurons.Data[i] = float32(i % 11)
	}
	bankT := tensor.New[float32](4, 3, 3)
	for i := range bankT.Data {
		bankT.Data[i] = float32(i % 7)
	}

	serial := Match(neurons, bankT, layout, nil)

	exec, err := pool.New(4)
	require.NoError(t, err)
	defer exec.Release()
	parallel := Match(neurons, bankT, layout, exec)

	require.Equal(t, serial.D, parallel.D)
	require.Equal(t, serial.B, parallel.B)
	require.Equal(t, serial.BMU, parallel.BMU)
}
