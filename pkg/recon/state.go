package recon

import (
	"fmt"

	"github.com/nyuappdev/dining-audit/internal/utils"
	"github.com/nyuappdev/dining-audit/pkg/sources"
)

// RunState accumulates everything one reconciliation pass produces. A rerun
// builds a fresh RunState; nothing is carried over.
type RunState struct {
	Primary   []sources.Location
	Secondary []sources.XMLLocation
	SiteNames []string

	// Transcript holds every warning and error line of the run, in emit
	// order. It is what the error-log view shows and what gets emailed.
	Transcript []string

	Completed bool
	Fatal     bool

	names            []string
	statuses         map[string][]Status
	matchedSecondary map[int]bool
}

func NewRunState() *RunState {
	return &RunState{
		statuses:         make(map[string][]Status),
		matchedSecondary: make(map[int]bool),
	}
}

// Record appends a status to the name's history.
func (r *RunState) Record(name string, s Status) {
	if _, ok := r.statuses[name]; !ok {
		r.names = append(r.names, name)
	}
	r.statuses[name] = append(r.statuses[name], s)
}

// Classified reports whether the name has any recorded status.
func (r *RunState) Classified(name string) bool {
	return len(r.statuses[name]) > 0
}

// History returns the name's recorded statuses in order.
func (r *RunState) History(name string) []Status {
	return r.statuses[name]
}

// Names returns every classified name in first-recorded order.
func (r *RunState) Names() []string {
	return r.names
}

// NamesWith returns the classified names whose history contains s,
// in first-recorded order.
func (r *RunState) NamesWith(s Status) []string {
	var out []string
	for _, name := range r.names {
		for _, got := range r.statuses[name] {
			if got == s {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func (r *RunState) Infof(format string, args ...interface{}) {
	utils.Log.Infof(format, args...)
}

// Warnf logs the line and appends it to the run transcript.
func (r *RunState) Warnf(format string, args ...interface{}) {
	utils.Log.Warnf(format, args...)
	r.Transcript = append(r.Transcript, "[WARN] "+fmt.Sprintf(format, args...))
}

// Errorf logs the line and appends it to the run transcript.
func (r *RunState) Errorf(format string, args ...interface{}) {
	utils.Log.Errorf(format, args...)
	r.Transcript = append(r.Transcript, "[ERROR] "+fmt.Sprintf(format, args...))
}
