// internal/stats/stats.go
//
// Per-request action timing profiler.
//
// Context
// -------
// One *Stats is created per request when dispatch.profiling is on and
// handed to the execution context as its Profiler.  ProfileStart/End are
// called around each non-internal component execution with a label derived
// from the component's canonical path; Report renders the collected spans
// as an aligned table that Context.Finalize logs once.
//
// A request is single-flowed, so no locking: start/end always happen on
// the request's own goroutine (the async completion callback included,
// since only one of them resumes dispatch).
package stats

import (
	"fmt"
	"strings"
	"time"
)

type span struct {
	label string
	begin time.Time
	took  time.Duration
	open  bool
}

// Stats collects execution spans for a single request.
type Stats struct {
	spans []span
}

// New returns an empty collector.
func New() *Stats { return &Stats{} }

// ProfileStart opens a span.  Labels repeat freely (a component may run
// more than once); End matches the most recent open span with the label.
func (s *Stats) ProfileStart(label string) {
	s.spans = append(s.spans, span{label: label, begin: time.Now(), open: true})
}

// ProfileEnd closes the most recent open span carrying label.  Unknown
// labels are ignored.
func (s *Stats) ProfileEnd(label string) {
	for i := len(s.spans) - 1; i >= 0; i-- {
		if s.spans[i].open && s.spans[i].label == label {
			s.spans[i].took = time.Since(s.spans[i].begin)
			s.spans[i].open = false
			return
		}
	}
}

// Report renders the spans in execution order, one per line, label
// left-aligned and duration in seconds.
func (s *Stats) Report() string {
	width := 0
	for _, sp := range s.spans {
		if len(sp.label) > width {
			width = len(sp.label)
		}
	}

	var b strings.Builder
	for i, sp := range s.spans {
		if i > 0 {
			b.WriteByte('\n')
		}
		took := sp.took
		if sp.open {
			took = time.Since(sp.begin)
		}
		fmt.Fprintf(&b, "%-*s  %.6fs", width, sp.label, took.Seconds())
	}
	return b.String()
}
