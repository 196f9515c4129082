// Package updater applies the neighborhood-weighted pull of every neuron
// toward its best-aligned rotation-bank variant.
package updater

import (
	"somtrain/internal/som/grid"
	"somtrain/internal/som/neighborhood"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
)

// Update mutates neurons in place: for each cell k with position p_k,
//
//	factor = alpha * phi(distance(bmu, p_k))
//	W[k] -= (W[k] - V[B[k]]) * factor
//
// If factor is 0 the neuron is unchanged; if factor is 1 it becomes
// exactly V[B[k]]. Each cell writes only its own slice, so the update
// parallelizes across k without locking.
func Update(neurons *tensor.Tensor[float32], bankT *tensor.Tensor[float32], B []int, bmu grid.Coord, layout grid.Layout, phi neighborhood.Func, alpha float64, exec *pool.Executor) {
	coords := layout.Enumerate()

	work := func(enumPos int) {
		c := coords[enumPos]
		k := layout.Index(c)
		factor := alpha * phi(layout.Distance(bmu, c))
		neuron := neurons.Slice(k)
		variant := bankT.Slice(B[k])
		for i := range neuron {
			neuron[i] -= (neuron[i] - variant[i]) * float32(factor)
		}
	}

	if exec == nil {
		for i := range coords {
			work(i)
		}
		return
	}
	_ = exec.ForEach(len(coords), work)
}
