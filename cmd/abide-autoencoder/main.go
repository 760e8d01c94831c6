// Command abide-autoencoder trains the denoising sparse autoencoder on every
// fold of the selected ABIDE experiments and plots the loss curves.
//
// Usage:
//
//	abide-autoencoder [-whole] [-male] [-threshold] [-leave-site-out] [-time-limit 2h] [flags] <derivative> ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YuminosukeSato/scigo-abide/config"
	"github.com/YuminosukeSato/scigo-abide/experiment"
	"github.com/YuminosukeSato/scigo-abide/phenotype"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/report"
	"github.com/YuminosukeSato/scigo-abide/store"
	"github.com/YuminosukeSato/scigo-abide/train"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.GetLogger().Error("abide-autoencoder failed", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("abide-autoencoder", flag.ContinueOnError)
	var (
		sel        experiment.Selection
		configPath string
		console    bool
		perFold    string
		timeLimit  time.Duration
		overrides  = config.Default()
	)
	fs.BoolVar(&sel.Whole, "whole", false, "run the model for the whole dataset")
	fs.BoolVar(&sel.Male, "male", false, "run the model for male subjects")
	fs.BoolVar(&sel.Threshold, "threshold", false, "run the model for thresholded subjects")
	fs.BoolVar(&sel.LeaveSiteOut, "leave-site-out", false, "run one experiment per held-out site")
	fs.StringVar(&configPath, "config", "", "JSON config file overlaid on the defaults")
	fs.StringVar(&overrides.PhenotypePath, "pheno", overrides.PhenotypePath, "phenotype CSV")
	fs.StringVar(&overrides.DataDir, "data", overrides.DataDir, "data store directory")
	fs.StringVar(&overrides.ModelDir, "models", overrides.ModelDir, "checkpoint directory")
	fs.StringVar(&overrides.PlotPath, "plot", overrides.PlotPath, "loss plot output (.png, .svg, .pdf)")
	fs.StringVar(&overrides.Device, "device", overrides.Device, "compute device (auto, cpu)")
	fs.StringVar(&overrides.LogLevel, "log-level", overrides.LogLevel, "log level (debug, info, warn, error)")
	fs.Uint64Var(&overrides.Seed, "seed", overrides.Seed, "random seed")
	fs.IntVar(&overrides.Epochs, "epochs", overrides.Epochs, "training epochs per fold")
	fs.IntVar(&overrides.BatchSize, "batch", overrides.BatchSize, "mini-batch size")
	fs.Float64Var(&overrides.LearningRate, "lr", overrides.LearningRate, "Adam learning rate")
	fs.BoolVar(&console, "console", true, "human-readable log output instead of JSON")
	fs.DurationVar(&timeLimit, "time-limit", 0, "abort the sweep after this wall-clock duration (0 disables)")
	fs.StringVar(&perFold, "plot-folds", "", "also write one loss plot per fold into this directory")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: abide-autoencoder [flags] <derivative> ...\n\nDerivatives: %v\n\n", experiment.Derivatives)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(fs, &cfg, overrides)

	if err := log.SetupLogger(cfg.LogLevel, console); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("abide-autoencoder")
	if err := cfg.Validate(); err != nil {
		return err
	}

	device, err := config.ResolveDevice(cfg.Device)
	if err != nil {
		return err
	}

	pheno, err := phenotype.Load(cfg.PhenotypePath)
	if err != nil {
		return err
	}
	derivatives := experiment.ParseDerivatives(fs.Args())
	experiments := experiment.Build(derivatives, sel, pheno.Sites())
	if len(experiments) == 0 {
		logger.Warn("No experiments selected; pass a population flag and at least one derivative",
			"derivatives", fs.Args())
		return nil
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	trainer, err := train.NewTrainer(cfg, st, device, trainerOptions(timeLimit)...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := trainer.Run(ctx, experiments)
	if err != nil {
		return err
	}

	if err := report.PlotLosses(history, cfg.PlotPath, report.DefaultWidth, report.DefaultHeight); err != nil {
		return err
	}
	if perFold != "" {
		if _, err := report.PlotPerFold(history, perFold, ".png", report.DefaultWidth, report.DefaultHeight); err != nil {
			return err
		}
	}
	return nil
}

// trainerOptions turns the sweep-level flags into trainer options.
func trainerOptions(timeLimit time.Duration) []train.Option {
	var opts []train.Option
	if timeLimit > 0 {
		opts = append(opts, train.WithCallbacks(train.TimeLimit(timeLimit)))
	}
	return opts
}

// applyFlags copies the explicitly set flags from overrides into cfg, so
// command-line values win over the config file.
func applyFlags(fs *flag.FlagSet, cfg *config.Config, overrides config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pheno":
			cfg.PhenotypePath = overrides.PhenotypePath
		case "data":
			cfg.DataDir = overrides.DataDir
		case "models":
			cfg.ModelDir = overrides.ModelDir
		case "plot":
			cfg.PlotPath = overrides.PlotPath
		case "device":
			cfg.Device = overrides.Device
		case "log-level":
			cfg.LogLevel = overrides.LogLevel
		case "seed":
			cfg.Seed = overrides.Seed
		case "epochs":
			cfg.Epochs = overrides.Epochs
		case "batch":
			cfg.BatchSize = overrides.BatchSize
		case "lr":
			cfg.LearningRate = overrides.LearningRate
		}
	})
}
