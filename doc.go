// Package abide trains denoising sparse autoencoders on functional
// connectivity features of the ABIDE autism brain-imaging dataset.
//
// The module is a Go rendition of a cross-validated experiment sweep: every
// experiment (a brain-atlas derivative combined with a population filter)
// owns a set of folds in a hierarchical data store, and each fold trains a
// fresh autoencoder, validating periodically and finishing with a test pass.
//
// # Workflow
//
// Prepare the data store once from the phenotype table and the ROI time
// series, then run the sweep:
//
//	abide-prepare -whole -leave-site-out cc200
//	abide-autoencoder -whole -leave-site-out -plot losses.png cc200
//
// # Library use
//
//	cfg := config.Default()
//	device, _ := config.ResolveDevice(cfg.Device)
//	st, err := store.Open(cfg.DataDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	trainer, err := train.NewTrainer(cfg, st, device)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	exps := experiment.Build([]experiment.Derivative{experiment.CC200},
//	    experiment.Selection{Whole: true}, nil)
//	history, err := trainer.Run(ctx, exps)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = report.PlotLosses(history, "losses.png", report.DefaultWidth, report.DefaultHeight)
//
// # Packages
//
//   - phenotype: phenotype CSV loading and population filters
//   - experiment: experiment identifiers, fold IDs and checkpoint paths
//   - store: the experiment/fold data store (reader and writer)
//   - dataset: labelled matrices and shuffled mini-batch loaders
//   - autoencoder: the model, its sparsity objective and the Adam optimizer
//   - train: the experiment × fold × epoch × batch training loop
//   - report: loss-curve plots
//   - prepare: connectivity features and stratified folds
//   - metrics: reconstruction errors
//   - config: training configuration and device resolution
//   - core/model: training state and checkpoint persistence
//   - core/parallel: row-parallel kernels
//   - pkg/errors, pkg/log: typed errors and structured logging
//
// # Performance
//
// Numeric kernels split batch rows across goroutines. The worker count comes
// from the device resolved at startup: "auto" uses every logical core
// reported by cpuid, "cpu" runs single-threaded.
package abide
