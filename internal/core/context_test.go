// internal/core/context_test.go
//
// Unit-tests for the execution context: stack pairing, the recursion
// guard, stash semantics, and profiler labelling.
//
// Run: go test ./internal/core -v

package core

import (
	"net/http/httptest"
	"strings"
	"testing"
)

//
// test fixtures
//

// testAction is a minimal Action for core tests.
type testAction struct {
	name     string
	ns       string
	captures int
	fn       func(c *Context) bool
}

func (a *testAction) Name() string { return a.name }
func (a *testAction) Reverse() string {
	if a.ns == "" {
		return a.name
	}
	return a.ns + "/" + a.name
}
func (a *testAction) Namespace() string      { return a.ns }
func (a *testAction) ControllerName() string { return "Test" }
func (a *testAction) NumberOfCaptures() int  { return a.captures }
func (a *testAction) Execute(c *Context) bool {
	if a.fn == nil {
		return true
	}
	return a.fn(c)
}

// recordingProfiler captures start/end labels.
type recordingProfiler struct {
	starts []string
	ends   []string
}

func (p *recordingProfiler) ProfileStart(label string) { p.starts = append(p.starts, label) }
func (p *recordingProfiler) ProfileEnd(label string)   { p.ends = append(p.ends, label) }
func (p *recordingProfiler) Report() string            { return "" }

func newTestContext(t *testing.T, limit int) *Context {
	t.Helper()
	r := httptest.NewRequest("GET", "http://example.com/current/path?orig=1", nil)
	return NewContext(ContextConfig{
		EngineRequest:  NewEngineRequest(nil),
		Request:        NewRequest(r),
		Response:       NewResponse(),
		RecursionLimit: limit,
	})
}

//
// execute
//

func TestExecuteStackPairing(t *testing.T) {
	c := newTestContext(t, 10)

	var innerDepth int
	inner := &ComponentFunc{ComponentName: "inner", ComponentReverse: "inner",
		Fn: func(c *Context) bool {
			innerDepth = c.StackDepth()
			return true
		}}
	outer := &ComponentFunc{ComponentName: "outer", ComponentReverse: "outer",
		Fn: func(c *Context) bool {
			if got := c.StackDepth(); got != 1 {
				t.Fatalf("depth inside outer = %d, want 1", got)
			}
			return c.Execute(inner)
		}}

	if !c.Execute(outer) {
		t.Fatalf("execute failed")
	}
	if innerDepth != 2 {
		t.Fatalf("depth inside inner = %d, want 2", innerDepth)
	}
	if got := c.StackDepth(); got != 0 {
		t.Fatalf("depth after return = %d, want 0", got)
	}
}

func TestExecuteStackUnwoundOnFailure(t *testing.T) {
	c := newTestContext(t, 10)

	failing := &ComponentFunc{ComponentName: "boom", ComponentReverse: "boom",
		Fn: func(c *Context) bool { return false }}

	if c.Execute(failing) {
		t.Fatalf("expected failure result")
	}
	if got := c.StackDepth(); got != 0 {
		t.Fatalf("depth after failure = %d, want 0", got)
	}
}

func TestExecuteRecursionLimit(t *testing.T) {
	const limit = 5
	c := newTestContext(t, limit)

	invocations := 0
	var recurse *ComponentFunc
	recurse = &ComponentFunc{ComponentName: "recurse", ComponentReverse: "recurse",
		Fn: func(c *Context) bool {
			invocations++
			return c.Execute(recurse)
		}}

	if c.Execute(recurse) {
		t.Fatalf("expected recursion failure")
	}
	if invocations != limit {
		t.Fatalf("invocations = %d, want %d (offender must not run)", invocations, limit)
	}
	if c.State() {
		t.Fatalf("state should be false after recursion failure")
	}
	errs := c.Errors()
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want exactly 1", len(errs))
	}
	if !strings.Contains(errs[0], "recurse") || !strings.Contains(errs[0], "5") {
		t.Fatalf("error message lacks path or depth: %q", errs[0])
	}
	if got := c.StackDepth(); got != 0 {
		t.Fatalf("depth after recursion failure = %d, want 0", got)
	}
}

func TestExecuteNilComponentPanics(t *testing.T) {
	c := newTestContext(t, 10)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for nil component")
		}
	}()
	c.Execute(nil)
}

//
// profiler labelling
//

func TestProfilerLabels(t *testing.T) {
	prof := &recordingProfiler{}
	r := httptest.NewRequest("GET", "http://example.com/", nil)
	c := NewContext(ContextConfig{
		EngineRequest: NewEngineRequest(nil),
		Request:       NewRequest(r),
		Response:      NewResponse(),
		Profiler:      prof,
	})

	internal := &ComponentFunc{ComponentName: "_END", ComponentReverse: "demo/_END",
		Fn: func(c *Context) bool { return true }}
	deep := &testAction{name: "deep", ns: "demo", fn: func(c *Context) bool { return true }}
	mid := &ComponentFunc{ComponentName: "mid", ComponentReverse: "mid",
		Fn: func(c *Context) bool { return c.Execute(deep) }}
	top := &testAction{name: "top", ns: "demo", fn: func(c *Context) bool {
		if !c.Execute(mid) {
			return false
		}
		return c.Execute(internal)
	}}

	if !c.Execute(top) {
		t.Fatalf("execute failed")
	}

	want := []string{"/demo/top", "mid", " -> /demo/deep"}
	if len(prof.starts) != len(want) {
		t.Fatalf("starts = %v, want %v", prof.starts, want)
	}
	for i, label := range want {
		if prof.starts[i] != label {
			t.Fatalf("starts[%d] = %q, want %q", i, prof.starts[i], label)
		}
	}
	if len(prof.ends) != len(want) {
		t.Fatalf("ends = %v, want %d closed spans", prof.ends, len(want))
	}
}

//
// stash
//

func TestStashOperations(t *testing.T) {
	c := newTestContext(t, 10)

	c.SetStash("k", "v")
	if got := c.StashValue("k"); got != "v" {
		t.Fatalf("StashValue = %v, want v", got)
	}
	if got := c.StashValueOr("missing", "dflt"); got != "dflt" {
		t.Fatalf("StashValueOr = %v, want dflt", got)
	}

	c.SetStash("k", "v2") // overwrite
	if got := c.StashTake("k"); got != "v2" {
		t.Fatalf("StashTake = %v, want v2", got)
	}
	if c.StashValue("k") != nil {
		t.Fatalf("take must remove the entry")
	}

	c.SetStash("r", 1)
	if !c.StashRemove("r") {
		t.Fatalf("StashRemove existing = false, want true")
	}
	if c.StashRemove("r") {
		t.Fatalf("StashRemove missing = true, want false")
	}

	c.StashMerge(map[string]any{"a": 1, "b": 2})
	if c.StashValue("a") != 1 || c.StashValue("b") != 2 {
		t.Fatalf("StashMerge did not insert both entries")
	}
}

//
// errors and state
//

func TestErrorsPreserveOrderAndStateIndependence(t *testing.T) {
	c := newTestContext(t, 10)

	c.Error("first")
	c.Error("second")
	errs := c.Errors()
	if len(errs) != 2 || errs[0] != "first" || errs[1] != "second" {
		t.Fatalf("errors out of order: %v", errs)
	}

	// State is independent of the error list.
	c.SetState(true)
	if !c.State() || !c.HasErrors() {
		t.Fatalf("state and errors must vary independently")
	}

	c.ClearErrors()
	if c.HasErrors() {
		t.Fatalf("ClearErrors left messages behind")
	}
}

//
// detach
//

func TestDetachSetsFlagOnly(t *testing.T) {
	c := newTestContext(t, 10)
	if c.Detached() {
		t.Fatalf("fresh context must not be detached")
	}
	c.Detach(nil)
	if !c.Detached() {
		t.Fatalf("Detach(nil) must set the detached flag")
	}
	if c.AsyncDepth() != 0 {
		t.Fatalf("Detach must not touch async bookkeeping")
	}
}
