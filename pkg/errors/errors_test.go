package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Trainer.Run",
			kind:    "fold failed",
			err:     fmt.Errorf("test error"),
			wantMsg: "abide: Trainer.Run: fold failed: test error",
		},
		{
			name:    "without original error",
			op:      "Autoencoder.Save",
			kind:    "not trained",
			wantMsg: "abide: Autoencoder.Save: not trained",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Autoencoder.Forward", 19900, 200, 1)

	want := "abide: Autoencoder.Forward: dimension mismatch on axis 1 (features). Expected 19900, got 200"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 19900 || dimErr.Got != 200 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := Wrap(NewNotFoundError("fold", "3"), "loading cc200_whole")

	if !strings.Contains(err.Error(), `fold "3" not found`) {
		t.Errorf("unexpected message: %s", err.Error())
	}

	var nf *NotFoundError
	if !As(err, &nf) {
		t.Fatal("Error should be castable to *NotFoundError")
	}
	if nf.Kind != "fold" {
		t.Errorf("Kind = %q, want fold", nf.Kind)
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: split %s", "LoadFold", "valid")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in LoadFold: split valid") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("loss", 0.25, 1); err != nil {
		t.Fatalf("finite value rejected: %v", err)
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := CheckScalar("loss", v, 7)
		var numErr *NumericalInstabilityError
		if !As(err, &numErr) {
			t.Fatalf("CheckScalar(%v) = %v, want NumericalInstabilityError", v, err)
		}
		if numErr.Iteration != 7 {
			t.Errorf("Iteration = %d, want 7", numErr.Iteration)
		}
	}
}

func TestCheckMatrix(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("weights", m, 0); err != nil {
		t.Fatalf("finite matrix rejected: %v", err)
	}

	m.Set(1, 0, math.NaN())
	err := CheckMatrix("weights", m, 3)
	if err == nil {
		t.Fatal("expected error for NaN entry")
	}
	if !strings.Contains(err.Error(), "weights") {
		t.Errorf("message should name the operation: %s", err.Error())
	}
}

func TestClipValue(t *testing.T) {
	if got := ClipValue(1.5, 0, 1); got != 1 {
		t.Errorf("ClipValue = %v, want 1", got)
	}
	if got := ClipValue(-1, 0, 1); got != 0 {
		t.Errorf("ClipValue = %v, want 0", got)
	}
}

func TestWarnUsesStructuredSink(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDataConversionWarning("NaN", "0", "constant ROI signal"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "constant ROI signal") {
		t.Errorf("unexpected warning: %v", got[0])
	}
}
