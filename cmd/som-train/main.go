// Command som-train trains and maps rotation/flip-invariant Self-
// Organizing Maps over fixed-format binary image files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"somtrain/internal/config"
	"somtrain/internal/logging"
	"somtrain/internal/mapper"
	"somtrain/internal/som/grid"
	"somtrain/internal/som/pool"
	"somtrain/internal/som/train"
	"somtrain/internal/somerr"
)

const (
	exitOK               = 0
	exitMalformedInput   = 1
	exitIOError          = 2
	exitInvalidParameter = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: som-train <train|map> [flags]")
		return exitInvalidParameter
	}

	sub := args[0]
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)

	cfgPath := fs.String("config", "configs/demo.yaml", "path to YAML config")
	somDim := fs.Int("som-dim", 0, "override cartesian SOM side length")
	neuronDim := fs.Int("neuron-dim", 0, "override neuron dimension")
	rotations := fs.Int("rotations", 0, "override rotation count")
	initMode := fs.String("init", "", "override neuron init: zero|random")
	layoutName := fs.String("layout", "", "override layout: cartesian|hexagonal")
	sigma := fs.Float64("sigma", 0, "override neighborhood sigma")
	damping := fs.Float64("damping", 0, "override learning-rate damping")
	epochs := fs.Int("epochs", 0, "override epoch count")
	input := fs.String("input", "", "override input file path")
	output := fs.String("output", "", "override output file path")
	numWorkers := fs.Int("num-workers", 0, "override worker-pool size")
	seed := fs.Int64("seed", 0, "override PRNG seed")
	logEvery := fs.Int("log-every", 0, "override progress log interval")

	if err := fs.Parse(args[1:]); err != nil {
		return exitInvalidParameter
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitInvalidParameter
	}

	cfg.ApplyOverrides(config.Overrides{
		Layout:     *layoutName,
		SomDim:     *somDim,
		NeuronDim:  *neuronDim,
		Rotations:  *rotations,
		Init:       *initMode,
		Sigma:      *sigma,
		Damping:    *damping,
		Epochs:     *epochs,
		NumWorkers: *numWorkers,
		Seed:       *seed,
		LogEvery:   *logEvery,
		Input:      *input,
		Output:     *output,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return exitInvalidParameter
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup: %v\n", err)
		return exitInvalidParameter
	}
	defer logger.Sync() //nolint:errcheck

	layout, err := buildLayout(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build layout: %v\n", err)
		return exitInvalidParameter
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch sub {
	case "train":
		return runTrain(ctx, cfg, layout, logger)
	case "map":
		return runMap(cfg, layout)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", sub)
		return exitInvalidParameter
	}
}

func buildLayout(cfg *config.Config) (grid.Layout, error) {
	switch cfg.Layout {
	case "hexagonal":
		return grid.NewHexagonal(cfg.SomRadius)
	default:
		return grid.NewCartesian([]int{cfg.SomDim, cfg.SomDim})
	}
}

func runTrain(ctx context.Context, cfg *config.Config, layout grid.Layout, logger *zap.Logger) int {
	f, err := os.Open(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return exitIOError
	}
	defer f.Close()

	trainCfg := train.Config{
		Layout:     layout,
		NeuronH:    cfg.NeuronDim,
		NeuronW:    cfg.NeuronDim,
		Rotations:  cfg.Rotations,
		Epochs:     cfg.Epochs,
		Init:       cfg.Init,
		Seed:       cfg.Seed,
		Kernel:     cfg.Kernel,
		Sigma:      constSigma(cfg.Sigma),
		Damping:    constDamping(cfg.Damping),
		NumWorkers: cfg.NumWorkers,
		LogEvery:   cfg.LogEvery,
	}

	result, err := train.Run(ctx, f, trainCfg, logger)
	if err != nil && !errors.Is(err, somerr.ErrCancelled) {
		return exitCodeFor(err)
	}

	out, ioErr := os.Create(cfg.Output)
	if ioErr != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", ioErr)
		return exitIOError
	}
	defer out.Close()

	somH, somW := somShape(cfg)
	if writeErr := mapper.WriteSOM(out, result.Neurons, somH, somW, cfg.NeuronDim, cfg.NeuronDim); writeErr != nil {
		fmt.Fprintf(os.Stderr, "write som: %v\n", writeErr)
		return exitIOError
	}

	if errors.Is(err, somerr.ErrCancelled) {
		logger.Info("training cancelled; partial SOM written", zap.Int("steps", result.Steps))
	}
	return exitOK
}

func runMap(cfg *config.Config, layout grid.Layout) int {
	somFile, err := os.Open(cfg.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open trained som: %v\n", err)
		return exitIOError
	}
	defer somFile.Close()

	somH, somW := somShape(cfg)
	neurons, err := mapper.LoadSOM(somFile, somH, somW, cfg.NeuronDim, cfg.NeuronDim)
	if err != nil {
		return exitCodeFor(err)
	}

	in, err := os.Open(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return exitIOError
	}
	defer in.Close()

	mapOut, err := os.Create(cfg.Input + ".map")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create map output: %v\n", err)
		return exitIOError
	}
	defer mapOut.Close()

	var exec *pool.Executor
	if cfg.NumWorkers > 1 {
		exec, err = pool.New(cfg.NumWorkers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "worker pool: %v\n", err)
			return exitIOError
		}
		defer exec.Release()
	}

	if err := mapper.Map(in, mapOut, neurons, layout, cfg.Rotations, exec); err != nil {
		return exitCodeFor(err)
	}
	return exitOK
}

func constSigma(v float64) train.SigmaSchedule {
	return func(int, int, int) float64 { return v }
}

func constDamping(v float64) train.DampingSchedule {
	return func(int, int, int) float64 { return v }
}

func somShape(cfg *config.Config) (int, int) {
	if cfg.Layout == "hexagonal" {
		size := 1 + 3*cfg.SomRadius*(cfg.SomRadius+1)
		return size, 1
	}
	return cfg.SomDim, cfg.SomDim
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, somerr.ErrMalformedHeader):
		fmt.Fprintf(os.Stderr, "malformed input: %v\n", err)
		return exitMalformedInput
	case errors.Is(err, somerr.ErrInvalidParameter), errors.Is(err, somerr.ErrDimensionMismatch):
		fmt.Fprintf(os.Stderr, "invalid parameter: %v\n", err)
		return exitInvalidParameter
	default:
		fmt.Fprintf(os.Stderr, "io error: %v\n", err)
		return exitIOError
	}
}
