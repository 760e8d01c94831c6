// Package errors provides the error and warning types shared by the ABIDE
// autoencoder tooling. Every constructor attaches a stack trace through
// cockroachdb/errors so that failures deep inside a training sweep can be
// traced back to the fold and batch that produced them.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("abide-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the fallback warning handler.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. The zerolog sink wins when one is installed.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// DataConversionWarning reports values that were silently converted, such as
// NaN correlations replaced by zero.
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning creates a DataConversionWarning.
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError is returned when a checkpoint is requested from a model that
// has never taken an optimizer step.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("abide: %s: this model is not trained yet. Train it before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError reports a shape mismatch along one axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("abide: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError reports an invalid configuration parameter.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("abide: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("abide: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// NotFoundError reports a missing entry in the data store or phenotype table.
type NotFoundError struct {
	Kind string // "experiment", "fold", "patient", "derivative", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("abide: %s %q not found", e.Kind, e.Name)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.Kind).
		Str("name", e.Name).
		Str("type", "NotFoundError")
}

// NewNotFoundError creates a NotFoundError with a stack trace.
func NewNotFoundError(kind, name string) error {
	return errors.WithStack(&NotFoundError{Kind: kind, Name: name})
}

// ModelError is a general model failure wrapping its cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("abide: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("abide: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError reports NaN or Inf values in a loss or matrix.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("abide: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("iteration", e.Iteration).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// UnwrapAll returns the innermost cause of err.
func UnwrapAll(err error) error {
	return errors.UnwrapAll(err)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned for matrices or splits without rows.
	ErrEmptyData = New("empty data")

	// ErrMalformedInput is returned for unparsable phenotype or time-series rows.
	ErrMalformedInput = New("malformed input")
)
