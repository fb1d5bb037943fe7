// Package frame schedules per-frame callbacks.
package frame

import "sync"

// Scheduler requests that a callback run on the next frame.
// Only one callback is pending at a time; a later request replaces an earlier one.
type Scheduler interface {
	// RequestFrame schedules callback to run once on the next frame.
	//
	// Parameters:
	//   - callback: the function to run, nil clears the pending request
	RequestFrame(callback func())
}

var _ Scheduler = &ManualScheduler{}

// ManualScheduler is a Scheduler advanced explicitly by the caller.
// It drives frame callbacks in tests and headless runs where no window loop exists.
type ManualScheduler struct {
	mu      sync.Mutex
	pending func()
	frames  int
}

// NewManualScheduler creates an idle ManualScheduler.
//
// Returns:
//   - *ManualScheduler: the scheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) RequestFrame(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = callback
}

// Pending reports whether a callback is waiting for the next Step.
func (s *ManualScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Frames returns how many callbacks have been run.
func (s *ManualScheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Step runs the pending callback, if any. The callback may request the next frame.
//
// Returns:
//   - bool: true if a callback ran
func (s *ManualScheduler) Step() bool {
	s.mu.Lock()
	cb := s.pending
	s.pending = nil
	if cb != nil {
		s.frames++
	}
	s.mu.Unlock()

	if cb == nil {
		return false
	}
	cb()
	return true
}

// StepN runs up to n frames, stopping early once nothing is pending.
//
// Parameters:
//   - n: the maximum number of frames to run
//
// Returns:
//   - int: the number of frames that ran
func (s *ManualScheduler) StepN(n int) int {
	ran := 0
	for ran < n && s.Step() {
		ran++
	}
	return ran
}
