// internal/stats/stats_test.go

package stats

import (
	"strings"
	"testing"
)

func TestSpansMatchByMostRecentOpenLabel(t *testing.T) {
	s := New()

	// A component executing twice produces two spans with one label; each
	// end must close the innermost open one.
	s.ProfileStart("demo/hello")
	s.ProfileStart("demo/hello")
	s.ProfileEnd("demo/hello")
	s.ProfileEnd("demo/hello")
	s.ProfileEnd("never-started") // ignored

	for i, sp := range s.spans {
		if sp.open {
			t.Fatalf("span %d left open", i)
		}
	}
}

func TestReportListsSpansInExecutionOrder(t *testing.T) {
	s := New()
	s.ProfileStart("/demo/top")
	s.ProfileStart(" -> /demo/deep")
	s.ProfileEnd(" -> /demo/deep")
	s.ProfileEnd("/demo/top")

	report := s.Report()
	lines := strings.Split(report, "\n")
	if len(lines) != 2 {
		t.Fatalf("report lines = %d, want 2:\n%s", len(lines), report)
	}
	if !strings.HasPrefix(lines[0], "/demo/top") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " -> /demo/deep") {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[0], "s") || !strings.Contains(lines[0], ".") {
		t.Fatalf("duration missing from %q", lines[0])
	}
}

func TestEmptyReport(t *testing.T) {
	if got := New().Report(); got != "" {
		t.Fatalf("empty report = %q, want empty", got)
	}
}
