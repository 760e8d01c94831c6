package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error recovered from a panic, typically a gonum shape
// check firing inside a forward or backward pass.
type PanicError struct {
	PanicValue interface{}
	StackTrace string
	Operation  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap exposes a panic value that is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// String includes the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a PanicError carrying the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned to *err. It must be
// deferred directly.
//
//	func (a *Autoencoder) Forward(X mat.Matrix, mode Mode) (enc, rec *mat.Dense, err error) {
//	    defer errors.Recover(&err, "Autoencoder.Forward")
//	    ...
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
			return
		}
		*err = panicErr
	}
}

// SafeExecute runs fn and converts any panic into a PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
