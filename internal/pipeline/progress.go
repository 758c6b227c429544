package pipeline

import "github.com/schollz/progressbar/v3"

// ProgressReporter surfaces per-stage progress to a CLI or other caller.
// The pipeline never blocks on it — every call is a best-effort UI
// update, never load-bearing for correctness.
type ProgressReporter interface {
	StartStage(name string, total int)
	Increment()
	FinishStage()
}

// barReporter backs ProgressReporter with schollz/progressbar, the
// teacher's own terminal-progress library.
type barReporter struct {
	bar *progressbar.ProgressBar
}

// NewBarReporter returns a terminal-rendered ProgressReporter.
func NewBarReporter() ProgressReporter { return &barReporter{} }

func (r *barReporter) StartStage(name string, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

func (r *barReporter) Increment() {
	if r.bar != nil {
		r.bar.Add(1)
	}
}

func (r *barReporter) FinishStage() {
	if r.bar != nil {
		r.bar.Finish()
	}
}

// NoopReporter discards every progress event. Used by tests and by
// non-interactive invocations (e.g. piped output).
type NoopReporter struct{}

func (NoopReporter) StartStage(string, int) {}
func (NoopReporter) Increment()             {}
func (NoopReporter) FinishStage()           {}
