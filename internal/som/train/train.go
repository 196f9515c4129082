// Package train drives the per-image SOM training loop: an explicit
// Idle -> Training(epoch, sample) -> Done state machine wrapping
// DataIterator -> RotationBank -> Matcher -> Updater, honoring
// cooperative cancellation and returning a partial, consistent result on
// cancel or failure.
package train

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"somtrain/internal/metrics"
	"somtrain/internal/som/bank"
	"somtrain/internal/som/dataio"
	"somtrain/internal/som/grid"
	"somtrain/internal/som/matcher"
	"somtrain/internal/som/neighborhood"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/tensor"
	"somtrain/internal/som/updater"
	"somtrain/internal/somerr"
)

// State names the current phase of the training state machine.
type State int

const (
	Idle State = iota
	Training
	Done
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Training:
		return "training"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SigmaSchedule and DampingSchedule are caller-supplied, nonincreasing
// functions of training progress.
type SigmaSchedule func(epoch, sample, totalSteps int) float64
type DampingSchedule func(epoch, sample, totalSteps int) float64

// Config bundles the parameters a training run needs beyond the input
// stream itself.
type Config struct {
	Layout    grid.Layout
	NeuronH   int
	NeuronW   int
	Rotations int
	Epochs    int
	Init      string // "zero" or "random"
	Seed      int64
	Kernel    string // "gaussian" or "mexicanhat"
	Sigma     SigmaSchedule
	Damping   DampingSchedule
	NumWorkers int
	LogEvery   int
}

// Result is the outcome of a training run: the final neuron weights and
// the state the run ended in.
type Result struct {
	Neurons *tensor.Tensor[float32]
	State   State
	Steps   int
}

// Run executes a full training run against stream, mutating and
// returning neuron weights. It reads exactly one epoch's worth of images
// per pass over the stream, rewinding between epochs. Cancellation via
// ctx is checked at the top of each per-image iteration; the in-flight
// update, if any, always completes before the loop exits, so W is never
// left partially updated for an image.
func Run(ctx context.Context, stream io.ReadSeeker, cfg Config, logger *zap.Logger) (Result, error) {
	if cfg.Epochs <= 0 {
		return Result{State: Failed}, fmt.Errorf("%w: epochs must be > 0", somerr.ErrInvalidParameter)
	}
	if cfg.Rotations < 1 {
		return Result{State: Failed}, fmt.Errorf("%w: rotations must be >= 1", somerr.ErrInvalidParameter)
	}

	it, err := dataio.Open(stream)
	if err != nil {
		return Result{State: Failed}, err
	}

	gridSize := cfg.Layout.Size()
	neurons := tensor.New[float32](gridSize, cfg.NeuronH, cfg.NeuronW)
	if cfg.Init == "random" {
		rng := rand.New(rand.NewSource(cfg.Seed))
		for i := range neurons.Data {
			neurons.Data[i] = rng.Float32()
		}
	}

	var exec *pool.Executor
	if cfg.NumWorkers > 1 {
		exec, err = pool.New(cfg.NumWorkers)
		if err != nil {
			return Result{Neurons: neurons, State: Failed}, err
		}
		defer exec.Release()
	}

	totalSteps := cfg.Epochs * it.Total()
	step := 0
	state := Training
	var window metrics.Window

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if epoch > 0 {
			if err := it.Rewind(); err != nil {
				return Result{Neurons: neurons, State: Failed}, err
			}
		}

		for sample := 0; !it.Done(); sample++ {
			select {
			case <-ctx.Done():
				return Result{Neurons: neurons, State: Cancelled, Steps: step}, somerr.ErrCancelled
			default:
			}

			startData := time.Now()
			image, err := it.Current()
			if err != nil {
				return Result{Neurons: neurons, State: Failed, Steps: step}, err
			}
			extents := it.Extents()
			if len(extents) != 2 {
				return Result{Neurons: neurons, State: Failed, Steps: step}, fmt.Errorf("%w: expected 2D images, got %d dims", somerr.ErrDimensionMismatch, len(extents))
			}
			imageH, imageW := extents[0], extents[1]
			dataMS := time.Since(startData).Seconds() * 1000

			startCompute := time.Now()
			result, err := stepOnce(neurons, image, imageH, imageW, cfg, exec, epoch, sample, totalSteps)
			if err != nil {
				return Result{Neurons: neurons, State: Failed, Steps: step}, err
			}
			computeMS := time.Since(startCompute).Seconds() * 1000

			step++
			window.Record(1, time.Duration(dataMS*float64(time.Millisecond)), time.Duration(computeMS*float64(time.Millisecond)), result.D[cfg.Layout.Index(result.BMU)])
			if logger != nil && cfg.LogEvery > 0 && step%cfg.LogEvery == 0 {
				snap := window.Snapshot()
				logger.Info("training step",
					zap.Int("epoch", epoch),
					zap.Int("sample", sample),
					zap.Int("step", step),
					zap.Float64("images_per_sec", snap.ImagesPerSec),
					zap.Float64("avg_data_ms", snap.AvgDataMS),
					zap.Float64("avg_compute_ms", snap.AvgComputeMS),
					zap.Float64("bmu_distance", snap.LastBMUDist),
				)
			}

			if err := it.Advance(); err != nil {
				return Result{Neurons: neurons, State: Failed, Steps: step}, err
			}
		}
	}

	state = Done
	return Result{Neurons: neurons, State: state, Steps: step}, nil
}

func stepOnce(neurons *tensor.Tensor[float32], image []float32, imageH, imageW int, cfg Config, exec *pool.Executor, epoch, sample, totalSteps int) (matcher.Result, error) {
	variants, err := bank.Build(image, imageH, imageW, cfg.Rotations, cfg.NeuronH, cfg.NeuronW, exec)
	if err != nil {
		return matcher.Result{}, err
	}

	result := matcher.Match(neurons, variants, cfg.Layout, exec)

	sigma := cfg.Sigma(epoch, sample, totalSteps)
	damping := cfg.Damping(epoch, sample, totalSteps)

	var phi neighborhood.Func
	if cfg.Kernel == "mexicanhat" {
		phi, err = neighborhood.MexicanHat(sigma)
	} else {
		phi, err = neighborhood.Gaussian(sigma)
	}
	if err != nil {
		return matcher.Result{}, err
	}

	updater.Update(neurons, variants, result.B, result.BMU, cfg.Layout, phi, damping, exec)

	return result, nil
}
