// Package bank builds the rotation/flip variant bank for one input image:
// 2*R crops, R of the unflipped image rotated through the full circle and
// R of its horizontal flip.
package bank

import (
	"fmt"
	"math"

	"somtrain/internal/som/kernel"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
	"somtrain/internal/somerr"
)

// Build constructs the (2*R, neuronH, neuronW) variant tensor for image
// (imageH x imageW). Slot i in [0,R) holds the image rotated by
// i*(2*pi/R) and cropped; slot R+i holds the same rotation of the
// horizontally flipped image. rotations must be >= 1 and the image must
// be at least as large as the neuron in both dimensions.
func Build(image []float32, imageH, imageW int, rotations, neuronH, neuronW int, exec *pool.Executor) (*tensor.Tensor[float32], error) {
	if rotations < 1 {
		return nil, fmt.Errorf("%w: rotations=%d must be >= 1", somerr.ErrInvalidParameter, rotations)
	}
	if imageH < neuronH || imageW < neuronW {
		return nil, fmt.Errorf("%w: image %dx%d smaller than neuron %dx%d", somerr.ErrInvalidParameter, imageH, imageW, neuronH, neuronW)
	}

	variants := tensor.New[float32](2*rotations, neuronH, neuronW)

	// Slot 0: centred crop of the unrotated image.
	kernel.Crop(image, imageH, imageW, variants.Slice(0), neuronH, neuronW)

	flipped := make([]float32, imageH*imageW)
	kernel.Flip(image, imageH, imageW, flipped)

	// Slot R: centred crop of the flipped image.
	kernel.Crop(flipped, imageH, imageW, variants.Slice(rotations), neuronH, neuronW)

	if rotations == 1 {
		return variants, nil
	}

	angleStep := 2 * math.Pi / float64(rotations)

	work := func(i int) {
		theta := float64(i) * angleStep
		kernel.RotateAndCrop(image, imageH, imageW, variants.Slice(i), neuronH, neuronW, theta)
		kernel.RotateAndCrop(flipped, imageH, imageW, variants.Slice(rotations+i), neuronH, neuronW, theta)
	}

	if exec == nil {
		for i := 1; i < rotations; i++ {
			work(i)
		}
		return variants, nil
	}

	// Slots 1..R-1 and R+1..2R-1 are independent: each task writes a
	// distinct pair of disjoint slices, so no synchronization is needed
	// beyond waiting for all tasks to finish.
	if err := exec.ForEach(rotations-1, func(j int) {
		work(j + 1)
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", somerr.ErrIO, err)
	}
	return variants, nil
}
