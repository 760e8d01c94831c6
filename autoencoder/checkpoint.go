package autoencoder

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/core/model"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// layerState is the serialised form of one dense layer.
type layerState struct {
	In, Out    int
	Activation Activation
	Weights    []float64
	Biases     []float64
}

// checkpoint is the gob payload written by Save.
type checkpoint struct {
	InputSize  int
	Hidden     []int
	Denoising  bool
	Corruption float64
	Seed       uint64
	State      model.ModelState
	Encoder    []layerState
	Decoder    []layerState
}

func snapshotLayers(layers []*dense) []layerState {
	out := make([]layerState, len(layers))
	for i, l := range layers {
		out[i] = layerState{
			In:         l.inputs(),
			Out:        l.outputs(),
			Activation: l.Act,
			Weights:    append([]float64(nil), l.W.RawMatrix().Data...),
			Biases:     append([]float64(nil), l.B.RawVector().Data...),
		}
	}
	return out
}

func restoreLayers(states []layerState) ([]*dense, error) {
	out := make([]*dense, len(states))
	for i, s := range states {
		if len(s.Weights) != s.In*s.Out {
			return nil, errors.NewDimensionError("autoencoder.Load", s.In*s.Out, len(s.Weights), 1)
		}
		if len(s.Biases) != s.Out {
			return nil, errors.NewDimensionError("autoencoder.Load", s.Out, len(s.Biases), 1)
		}
		out[i] = &dense{
			W:   mat.NewDense(s.In, s.Out, append([]float64(nil), s.Weights...)),
			B:   mat.NewVecDense(s.Out, append([]float64(nil), s.Biases...)),
			Act: s.Activation,
			dW:  mat.NewDense(s.In, s.Out, nil),
			dB:  mat.NewVecDense(s.Out, nil),
		}
	}
	return out, nil
}

// Save writes the weights and configuration to path. The model must have
// taken at least one optimizer step.
func (a *Autoencoder) Save(path string) error {
	if err := a.state.RequireFitted("Autoencoder", "Save"); err != nil {
		return err
	}
	ckpt := checkpoint{
		InputSize:  a.inputSize,
		Hidden:     a.hidden,
		Denoising:  a.denoising,
		Corruption: a.corruption,
		Seed:       a.seed,
		State:      a.state.GetState(),
		Encoder:    snapshotLayers(a.encoder),
		Decoder:    snapshotLayers(a.decoder),
	}
	return model.SaveModel(&ckpt, path)
}

// Load reads a checkpoint written by Save.
func Load(path string, opts ...Option) (*Autoencoder, error) {
	var ckpt checkpoint
	if err := model.LoadModel(&ckpt, path); err != nil {
		return nil, err
	}

	a := &Autoencoder{
		state:      model.NewStateManager(),
		inputSize:  ckpt.InputSize,
		outputSize: ckpt.InputSize,
		hidden:     ckpt.Hidden,
		denoising:  ckpt.Denoising,
		corruption: ckpt.Corruption,
		seed:       ckpt.Seed,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if len(ckpt.Encoder) != len(a.hidden) || len(ckpt.Decoder) != len(a.hidden) {
		return nil, errors.NewModelError("autoencoder.Load", "layer count does not match hidden sizes", nil)
	}

	var err error
	if a.encoder, err = restoreLayers(ckpt.Encoder); err != nil {
		return nil, err
	}
	if a.decoder, err = restoreLayers(ckpt.Decoder); err != nil {
		return nil, err
	}
	a.rng = newRand(a.seed)
	a.state.SetState(ckpt.State)
	return a, nil
}
