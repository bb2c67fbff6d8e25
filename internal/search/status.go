// Package search runs the industry-search pipeline in the background and
// exposes the polling status the SPA front-end consumes.
package search

import "sync"

// Step names reported through the status endpoint.
const (
	StepIdle       = "idle"
	StepStarting   = "starting"
	StepSearching  = "searching"
	StepExtracting = "extracting"
	StepAnalyzing  = "analyzing"
	StepCompleted  = "completed"
	StepError      = "error"
)

// Status is the point-in-time view of the search pipeline. The front-end
// polls it every couple of seconds until completed is true or the step
// reads error.
type Status struct {
	CurrentStep string `json:"current_step"`
	Message     string `json:"message"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
	Results     any    `json:"results"`
	Error       string `json:"error,omitempty"`
}

// Tracker holds the current search status behind a mutex. One tracker
// serves the whole process; only one search runs at a time.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

// NewTracker returns a tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{
		status: Status{
			CurrentStep: StepIdle,
			Message:     "Ready to search",
		},
	}
}

// Update records pipeline progress.
func (t *Tracker) Update(step, message string, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		CurrentStep: step,
		Message:     message,
		Progress:    progress,
	}
}

// Complete marks the search finished with its results.
func (t *Tracker) Complete(message string, results any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		CurrentStep: StepCompleted,
		Message:     message,
		Progress:    100,
		Completed:   true,
		Results:     results,
	}
}

// Fail marks the search failed. The error step still reports completed so
// pollers stop.
func (t *Tracker) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		CurrentStep: StepError,
		Message:     message,
		Progress:    100,
		Completed:   true,
		Error:       message,
	}
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Running reports whether a search is currently in flight.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status.CurrentStep {
	case StepIdle, StepCompleted, StepError:
		return false
	}
	return true
}
