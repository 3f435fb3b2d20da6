// internal/engine/engine_test.go
//
// End-to-end handler tests over httptest: matching, capture plumbing,
// error rendering, and the async suspension path.
//
// Run: go test ./internal/engine -v

package engine

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yanizio/relay/internal/app"
	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/core"
	"github.com/yanizio/relay/internal/dispatcher"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()

	d := dispatcher.New(&dispatcher.Controller{
		Name:      "Demo",
		Namespace: "demo",
		Actions: []dispatcher.ActionSpec{
			{Name: "hello", Fn: func(c *core.Context) bool {
				c.Response().WriteString("hello")
				return true
			}},
			{Name: "item", Captures: 1, Fn: func(c *core.Context) bool {
				c.Response().WriteString(fmt.Sprintf("item=%s args=%s",
					c.Request().Captures()[0],
					strings.Join(c.Request().Args(), ",")))
				return true
			}},
			{Name: "boom", Fn: func(c *core.Context) bool {
				c.Response().WriteString("partial output")
				c.Error("something broke")
				return false
			}},
			{Name: "slow", Fn: func(c *core.Context) bool {
				c.DetachAsync()
				time.AfterFunc(10*time.Millisecond, func() {
					c.Response().WriteString("slow done")
					c.AttachAsync()
				})
				return true
			}},
		},
	})

	cfg := &config.Config{}
	a := app.New(cfg, nil)
	return New(cfg, a, d)
}

func get(t *testing.T, e *Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://example.com"+path, nil)
	e.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleSyncAction(t *testing.T) {
	rec := get(t, testEngine(t), "/demo/hello")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "hello" {
		t.Fatalf("body = %q, want hello", got)
	}
}

func TestHandleCapturesAndArgs(t *testing.T) {
	rec := get(t, testEngine(t), "/demo/item/10/a/b")

	want := "item=10 args=a,b"
	if got := rec.Body.String(); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestHandleUnmatchedIs404(t *testing.T) {
	rec := get(t, testEngine(t), "/nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleErrorRendersPlain500(t *testing.T) {
	rec := get(t, testEngine(t), "/demo/boom")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "something broke") {
		t.Fatalf("body = %q, want the recorded error", body)
	}
	if strings.Contains(body, "partial output") {
		t.Fatalf("error rendering must replace the half-written body: %q", body)
	}
}

func TestHandleAsyncActionCompletes(t *testing.T) {
	// ServeHTTP parks on the done channel, so a plain synchronous call
	// exercises the whole suspend/resume cycle.
	start := time.Now()
	rec := get(t, testEngine(t), "/demo/slow")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "slow done" {
		t.Fatalf("body = %q, want slow done", got)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("handler returned before the async completion")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	rec := get(t, testEngine(t), "/demo/hello")

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
