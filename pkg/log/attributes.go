package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "Autoencoder".
	ModelNameKey = "model.name"

	// OperationKey is the operation being performed ("fit", "evaluate", "prepare").
	OperationKey = "ml.operation"

	// ComponentKey is the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey is one of the Phase* values below.
	PhaseKey = "ml.phase"
)

// Experiment context.
const (
	ExperimentKey = "abide.experiment"
	FoldKey       = "abide.fold"
	DerivativeKey = "abide.derivative"
	SiteKey       = "abide.site"
	PathKey       = "abide.path"
)

// Data shape.
const (
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	BatchSizeKey = "data.batch_size"
	BatchesKey   = "data.batches"
)

// Training progress and metrics.
const (
	EpochKey           = "training.epoch"
	BatchKey           = "training.batch"
	LossKey            = "metrics.loss"
	PenaltyKey         = "metrics.sparsity_penalty"
	RMSEKey            = "metrics.rmse"
	MAEKey             = "metrics.mae"
	LearningRateKey    = "hyperparams.learning_rate"
	RandomSeedKey      = "config.random_seed"
	DurationSecondsKey = "perf.duration_seconds"
)

// Execution environment.
const (
	DeviceKey  = "infra.device"
	WorkersKey = "infra.workers"
	SIMDKey    = "infra.simd"
)

// Error context.
const (
	ErrorKey      = "error"
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationEvaluate = "evaluate"
	OperationPrepare  = "prepare"

	PhaseTrain      = "train"
	PhaseValidation = "validation"
	PhaseTest       = "test"
)
