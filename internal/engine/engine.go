// internal/engine/engine.go
//
// HTTP transport engine: one execution context per inbound request.
//
// Request life-cycle
// ------------------
//
//  1. Wrap the ResponseWriter in an EngineRequest and build the context
//     (buffered response, request info, locale, optional profiler).
//
//  2. Match the URL against the dispatcher's private paths; unmatched
//     requests finalize immediately as 404.
//
//  3. Enqueue the controller chain (_BEGIN, _AUTOs, action, _END) and run
//     Dispatch.
//
//  4. If dispatch suspended (DetachAsync), park the handler goroutine on
//     the EngineRequest's done channel — net/http invalidates the writer
//     once the handler returns, so the goroutine must outlive resumption.
//     The matching AttachAsync finalizes from the completion callback.
//
// After-dispatch rendering: the engine installs an app hook that renders
// accumulated errors (500, plain text) or, failing errors, the context's
// custom view.  It runs for both the synchronous and the async completion
// path because the core invokes AfterDispatch before every finalize.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package engine

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/app"
	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/core"
	"github.com/yanizio/relay/internal/dispatcher"
	"github.com/yanizio/relay/internal/metrics"
	"github.com/yanizio/relay/internal/middleware"
	"github.com/yanizio/relay/internal/requestinfo"
	"github.com/yanizio/relay/internal/stats"
)

// Engine serves HTTP by driving execution contexts.
type Engine struct {
	cfg  *config.Config
	app  *app.App
	disp *dispatcher.Dispatcher
}

// New wires the engine and installs its after-dispatch renderer.
func New(cfg *config.Config, a *app.App, d *dispatcher.Dispatcher) *Engine {
	e := &Engine{cfg: cfg, app: a, disp: d}
	a.OnAfterDispatch(e.render)
	return e
}

// Router returns the chi root with engine middleware applied.  Callers may
// mount extra handlers (e.g. /metrics) before the catch-all.
func (e *Engine) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.HandleFunc("/*", e.handle)
	return r
}

// handle is the per-request entry point.
func (e *Engine) handle(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.Inc()

	er := core.NewEngineRequest(w)
	req := core.NewRequest(r)
	res := core.NewResponse()

	var prof core.Profiler
	if e.cfg.Dispatch.Profiling {
		prof = stats.New()
	}

	info := requestinfo.FromRequest(r)
	locale := e.app.DefaultLocale()
	if info.UA.PrimaryLang != "" {
		locale = info.UA.PrimaryLang
	}

	ctx := core.NewContext(core.ContextConfig{
		EngineRequest:  er,
		Request:        req,
		Response:       res,
		App:            e.app,
		Dispatcher:     e.disp,
		Profiler:       prof,
		RecursionLimit: e.cfg.RecursionLimit(),
		Locale:         locale,
	})
	ctx.SetInfo(info)

	action, captures, args := e.disp.Match(r.URL.Path)
	if action == nil {
		res.SetStatus(http.StatusNotFound)
		res.Headers().Set("Content-Type", "text/plain; charset=utf-8")
		res.WriteString("404 page not found\n")
		ctx.Finalize()
		return
	}

	req.SetCaptures(captures)
	req.SetArgs(args)
	ctx.SetAction(action)
	ctx.SetState(true)
	ctx.EnqueuePending(e.disp.Chain(action)...)

	if ctx.Dispatch() {
		return
	}

	// Suspended.  The writer dies with this goroutine, so wait for the
	// async completion to finalize before returning.
	select {
	case <-er.Done():
	case <-r.Context().Done():
		zap.L().Warn("client disconnected during async suspension",
			zap.String("path", r.URL.Path))
		<-er.Done()
	}
}

// render is the after-dispatch hook: errors win, then the custom view.
func (e *Engine) render(c *core.Context) {
	res := c.Response()

	if c.HasErrors() {
		res.ResetBody()
		res.SetStatus(http.StatusInternalServerError)
		res.Headers().Set("Content-Type", "text/plain; charset=utf-8")
		res.WriteString(strings.Join(c.Errors(), "\n"))
		res.WriteString("\n")
		return
	}

	if v := c.CustomView(); v != nil {
		if err := v.Render(c); err != nil {
			zap.L().Error("custom view render failed",
				zap.String("view", v.Name()), zap.Error(err))
			res.ResetBody()
			res.SetStatus(http.StatusInternalServerError)
		}
	}
}
