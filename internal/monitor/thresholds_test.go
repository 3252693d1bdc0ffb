package monitor

import "testing"

func TestThresholdStore_UpdateMerges(t *testing.T) {
	s := NewThresholdStore(0.8)

	s.Update(map[string]float64{"Q1": 0.5, "Q2": 0.6})
	s.Update(map[string]float64{"Q2": 0.9, "Q3": 0.7})

	if got := s.Get("Q1", 0.8); got != 0.5 {
		t.Errorf("Get(Q1) = %v, want 0.5 (untouched by second update)", got)
	}
	if got := s.Get("Q2", 0.8); got != 0.9 {
		t.Errorf("Get(Q2) = %v, want 0.9 (overwritten)", got)
	}
	if got := s.Get("Q3", 0.8); got != 0.7 {
		t.Errorf("Get(Q3) = %v, want 0.7", got)
	}
}

func TestThresholdStore_GetDefault(t *testing.T) {
	s := NewThresholdStore(0.8)
	if got := s.Get("NEVER.WRITTEN", 0.42); got != 0.42 {
		t.Errorf("Get(NEVER.WRITTEN, 0.42) = %v, want 0.42", got)
	}
}

func TestThresholdStore_Contains(t *testing.T) {
	s := NewThresholdStore(0.8)
	if s.Contains("Q1") {
		t.Error("Contains(Q1) = true before any update")
	}
	s.Update(map[string]float64{"Q1": 0.5})
	if !s.Contains("Q1") {
		t.Error("Contains(Q1) = false after update")
	}
}

func TestThresholdStore_Snapshot(t *testing.T) {
	s := NewThresholdStore(0.8)
	s.Update(map[string]float64{"Q1": 0.5})

	snap := s.Snapshot()
	snap["Q1"] = 0.1 // mutating the copy must not touch the store

	if got := s.Get("Q1", 0.8); got != 0.5 {
		t.Errorf("Get(Q1) = %v after snapshot mutation, want 0.5", got)
	}
}

func TestNewThresholdStore_DefaultFallback(t *testing.T) {
	s := NewThresholdStore(0)
	if s.Default() != DefaultThreshold {
		t.Errorf("Default() = %v, want %v", s.Default(), DefaultThreshold)
	}
}
