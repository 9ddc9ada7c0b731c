package view

import (
	"sync"

	"github.com/evyataryagoni/ipscope/internal/models"
)

// Recorder keeps the latest view state in memory
// The HTTP handler renders one Recorder per request and returns its state as JSON.
type Recorder struct {
	mu      sync.Mutex
	state   models.ViewState
	loading bool
	events  []string
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ShowLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loading = true
	r.state.Mode = models.ModeLoading
	r.state.Error = ""
	r.state.Record = nil
	r.events = append(r.events, "loading")
}

func (r *Recorder) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loading = false
	r.events = append(r.events, "hide_loading")
}

func (r *Recorder) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Mode = models.ModeError
	r.state.Error = message
	r.state.Record = nil
	r.events = append(r.events, "error")
}

func (r *Recorder) ShowResult(record *models.DisplayRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Mode = models.ModeResult
	r.state.Error = ""
	r.state.Record = record
	r.events = append(r.events, "result")
}

func (r *Recorder) SetInput(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Input = address
	r.events = append(r.events, "input")
}

// State returns a copy of the current view state
func (r *Recorder) State() models.ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loading reports whether the loading indicator is visible
func (r *Recorder) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Events returns the renderer calls in the order they happened
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}
