// Package model holds the training state and checkpoint persistence shared
// by the models in this module.
package model

import (
	"sync"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// StateManager tracks whether a model has been trained and how many
// optimizer steps it has taken. Exported fields are gob-encoded with the
// model checkpoint.
type StateManager struct {
	Fitted    bool
	Steps     int
	NFeatures int
	NSamples  int

	mu sync.RWMutex
}

// NewStateManager creates an untrained state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether at least one optimizer step has been applied.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// RecordStep marks one optimizer step over nSamples rows of nFeatures.
func (s *StateManager) RecordStep(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
	s.Steps++
	s.NFeatures = nFeatures
	s.NSamples += nSamples
}

// Reset returns the state to untrained.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.Steps = 0
	s.NFeatures = 0
	s.NSamples = 0
}

// RequireFitted returns a NotFittedError for an untrained model.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState is a snapshot of the training state.
type ModelState struct {
	Fitted    bool `json:"fitted"`
	Steps     int  `json:"steps"`
	NFeatures int  `json:"n_features,omitempty"`
	NSamples  int  `json:"n_samples,omitempty"`
}

// GetState returns the current state.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:    s.Fitted,
		Steps:     s.Steps,
		NFeatures: s.NFeatures,
		NSamples:  s.NSamples,
	}
}

// SetState restores a snapshot, e.g. after loading a checkpoint.
func (s *StateManager) SetState(state ModelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = state.Fitted
	s.Steps = state.Steps
	s.NFeatures = state.NFeatures
	s.NSamples = state.NSamples
}
