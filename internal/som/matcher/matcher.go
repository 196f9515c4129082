// Package matcher computes the SOM-sized Euclidean distance matrix
// between neurons and a rotation bank, and locates the best-matching
// unit (BMU).
package matcher

import (
	"math"

	"somtrain/internal/som/grid"
	"somtrain/internal/som/kernel"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
)

// Result holds the per-training-step outputs: D (min distance per cell),
// B (argmin variant index per cell), and the BMU coordinate.
type Result struct {
	D   []float64
	B   []int
	BMU grid.Coord
}

// Match computes, for every grid cell k, the minimum distance to any bank
// variant and the index of that variant, then finds the BMU. Ties within
// a cell's variant search go to the lowest variant index; ties for the
// BMU go to the layout's enumeration order (lowest index wins).
//
// Parallelism is across grid cells k (the outer loop); the inner sweep
// over variants j is serial per cell, which keeps the argmin tie-break
// deterministic regardless of worker-pool scheduling.
func Match(neurons *tensor.Tensor[float32], bankT *tensor.Tensor[float32], layout grid.Layout, exec *pool.Executor) Result {
	gridSize := layout.Size()
	numVariants := bankT.Shape[0]
	n := 1
	for _, s := range neurons.Shape[1:] {
		n *= s
	}

	D := make([]float64, gridSize)
	B := make([]int, gridSize)

	work := func(k int) {
		neuron := neurons.Slice(k)
		best := math.Inf(1)
		bestJ := 0
		for j := 0; j < numVariants; j++ {
			variant := bankT.Slice(j)
			d := kernel.EuclideanDistance(neuron, variant, n)
			if d < best {
				best = d
				bestJ = j
			}
		}
		D[k] = best
		B[k] = bestJ
	}

	if exec == nil {
		for k := 0; k < gridSize; k++ {
			work(k)
		}
	} else {
		// Each k writes only D[k] and B[k]: disjoint, so no locking needed.
		_ = exec.ForEach(gridSize, work)
	}

	coords := layout.Enumerate()
	bmuIdx := 0
	bmuDist := math.Inf(1)
	for enumPos, c := range coords {
		idx := layout.Index(c)
		if D[idx] < bmuDist {
			bmuDist = D[idx]
			bmuIdx = enumPos
		}
	}

	return Result{D: D, B: B, BMU: coords[bmuIdx]}
}
