package domain

import "time"

// Window is the half-open time range [Start, End) an experiment covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ExperimentRun is the persisted summary of one simulated experiment.
type ExperimentRun struct {
	ID            string
	Dataset       string
	Days          int
	Window        Window
	AssignedCount int64
	Table         ContingencyTable
	ChiSquare     *ChiSquareResult
	CreatedAt     time.Time
}
