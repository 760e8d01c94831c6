package config

import (
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Device names accepted on the command line.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
)

// Device is the compute target, resolved once at startup and passed to the
// model. Only CPU execution exists; Workers bounds the row-parallel kernels.
type Device struct {
	Name    string
	Workers int
	SIMD    string
}

// ParseDevice validates a device name.
func ParseDevice(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", DeviceAuto:
		return DeviceAuto, nil
	case DeviceCPU:
		return DeviceCPU, nil
	default:
		return "", errors.NewValidationError("device", "must be one of auto, cpu", name)
	}
}

// ResolveDevice turns a device name into a concrete Device. "auto" uses every
// logical core; "cpu" keeps the kernels single-threaded.
func ResolveDevice(name string) (Device, error) {
	parsed, err := ParseDevice(name)
	if err != nil {
		return Device{}, err
	}

	d := Device{Name: DeviceCPU, Workers: 1, SIMD: simdLevel()}
	if parsed == DeviceAuto {
		d.Workers = cpuid.CPU.LogicalCores
		if d.Workers <= 0 {
			d.Workers = runtime.NumCPU()
		}
	}
	return d, nil
}

func simdLevel() string {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		return "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3):
		return "avx2"
	case cpuid.CPU.Supports(cpuid.ASIMD):
		return "neon"
	default:
		return "generic"
	}
}
