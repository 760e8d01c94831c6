// Command abide-prepare computes functional connectivity features from the
// ABIDE ROI time series and writes the experiment/fold data store consumed
// by abide-autoencoder.
//
// Usage:
//
//	abide-prepare [-whole] [-male] [-threshold] [-leave-site-out] [flags] <derivative> ...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/scigo-abide/config"
	"github.com/YuminosukeSato/scigo-abide/experiment"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/prepare"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.GetLogger().Error("abide-prepare failed", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts := prepare.DefaultOptions()
	fs := flag.NewFlagSet("abide-prepare", flag.ContinueOnError)
	var (
		device   string
		logLevel string
		console  bool
	)
	fs.BoolVar(&opts.Selection.Whole, "whole", false, "prepare the whole dataset")
	fs.BoolVar(&opts.Selection.Male, "male", false, "prepare male subjects")
	fs.BoolVar(&opts.Selection.Threshold, "threshold", false, "prepare thresholded subjects")
	fs.BoolVar(&opts.Selection.LeaveSiteOut, "leave-site-out", false, "prepare one experiment per held-out site")
	fs.StringVar(&opts.PhenotypePath, "pheno", opts.PhenotypePath, "phenotype CSV")
	fs.StringVar(&opts.FunctionalDir, "functionals", opts.FunctionalDir, "directory holding rois_<derivative>/ time series")
	fs.StringVar(&opts.StoreDir, "data", opts.StoreDir, "data store directory to write")
	fs.IntVar(&opts.Folds, "folds", opts.Folds, "cross-validation folds")
	fs.Float64Var(&opts.ValidFraction, "valid", opts.ValidFraction, "validation fraction of each training part")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	fs.StringVar(&device, "device", config.DeviceAuto, "compute device (auto, cpu)")
	fs.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&console, "console", true, "human-readable log output instead of JSON")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: abide-prepare [flags] <derivative> ...\n\nDerivatives: %v\n\n", experiment.Derivatives)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := log.SetupLogger(logLevel, console); err != nil {
		return err
	}
	dev, err := config.ResolveDevice(device)
	if err != nil {
		return err
	}
	opts.Workers = dev.Workers
	opts.Derivatives = experiment.ParseDerivatives(fs.Args())

	log.GetLoggerWithName("abide-prepare").Info("Preparing data store",
		log.PathKey, opts.StoreDir,
		log.WorkersKey, dev.Workers,
		"derivatives", fs.Args(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return prepare.Prepare(ctx, opts)
}
