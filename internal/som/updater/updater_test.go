package updater

import (
	"testing"

	"github.com/stretchr/testify/require"

	"somtrain/internal/som/grid"
	"somtrain/internal/som/tensor"
)

func identityPhi() func(float64) float64 {
	return func(float64) float64 { return 1 }
}

func zeroPhi() func(float64) float64 {
	return func(float64) float64 { return 0 }
}

func TestUpdateFactorOneReplacesNeuron(t *testing.T) {
	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	neurons := tensor.New[float32](1, 2, 2)
	copy(neurons.Data, []float32{0, 0, 0, 0})

	bankT := tensor.New[float32](1, 2, 2)
	copy(bankT.Data, []float32{1, 2, 3, 4})

	B := []int{0}
	bmu := grid.Coord{Axes: []int{0}}

	Update(neurons, bankT, B, bmu, layout, identityPhi(), 1.0, nil)
	require.Equal(t, bankT.Data, neurons.Data)
}

func TestUpdateFactorZeroLeavesNeuronUnchanged(t *testing.T) {
	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	neurons := tensor.New[float32](1, 2, 2)
	copy(neurons.Data, []float32{1, 2, 3, 4})
	original := append([]float32(nil), neurons.Data...)

	bankT := tensor.New[float32](1, 2, 2)
	copy(bankT.Data, []float32{9, 9, 9, 9})

	B := []int{0}
	bmu := grid.Coord{Axes: []int{0}}

	Update(neurons, bankT, B, bmu, layout, zeroPhi(), 1.0, nil)
	require.Equal(t, original, neurons.Data)
}

func TestSingleImageIdentityTraining(t *testing.T) {
	// 1x1 grid, image == neuron size, R=1 (single variant per slot 0).
	// With phi constant at 1 and alpha=1 the update factor is exactly 1,
	// so after one update W[0] must equal the input exactly.
	layout, err := grid.NewCartesian([]int{1})
	require.NoError(t, err)

	neurons := tensor.New[float32](1, 3, 3)
	bankT := tensor.New[float32](2, 3, 3)
	input := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	copy(bankT.Slice(0), input)

	B := []int{0}
	bmu := grid.Coord{Axes: []int{0}}
	Update(neurons, bankT, B, bmu, layout, identityPhi(), 1.0, nil)

	require.Equal(t, input, neurons.Slice(0))
}
