// Package monitor evaluates queue snapshots against configured depth
// thresholds and drives the polling loop that keeps issue detection current.
package monitor

import "sync"

// DefaultThreshold is the process-wide depth fraction applied to queues with
// no explicit configuration.
const DefaultThreshold = 0.8

// ThresholdStore is a thread-safe mapping from queue name to a depth
// threshold fraction in [0, 1].
type ThresholdStore struct {
	defaultThreshold float64

	mu         sync.Mutex
	thresholds map[string]float64
}

// NewThresholdStore creates a store with the given process default;
// def <= 0 uses DefaultThreshold.
func NewThresholdStore(def float64) *ThresholdStore {
	if def <= 0 {
		def = DefaultThreshold
	}
	return &ThresholdStore{
		defaultThreshold: def,
		thresholds:       make(map[string]float64),
	}
}

// Default returns the process-wide default threshold.
func (s *ThresholdStore) Default() float64 {
	return s.defaultThreshold
}

// Update merges new entries into the store. Existing keys are overwritten,
// others are untouched.
func (s *ThresholdStore) Update(entries map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, limit := range entries {
		s.thresholds[name] = limit
	}
}

// Get returns the stored threshold for name, or def when absent.
func (s *ThresholdStore) Get(name string, def float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit, ok := s.thresholds[name]; ok {
		return limit
	}
	return def
}

// Contains reports whether name has an explicit threshold.
func (s *ThresholdStore) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.thresholds[name]
	return ok
}

// Snapshot returns a copy of all configured thresholds, including any that
// were lazily materialized during evaluation.
func (s *ThresholdStore) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.thresholds))
	for name, limit := range s.thresholds {
		out[name] = limit
	}
	return out
}
