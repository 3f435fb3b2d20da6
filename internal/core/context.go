// internal/core/context.go
//
// Central per-request execution context.
//
// Context
// -------
// Every inbound request creates exactly one *core.Context.  It owns the
// Request and Response handles for the request's lifetime and drives the
// dispatch of the action chain: each component runs through Execute, which
// guards recursion depth, maintains the execution stack, and feeds the
// optional profiler.  Components may in turn call Forward (sub-dispatch
// without unwinding), Detach (stop the default chain), or
// DetachAsync/AttachAsync (suspend dispatch until an external completion
// signal) — see async.go.
//
// The context delegates action resolution to the Dispatcher and
// configuration, translation, and view lookup to the App.  Both are
// request-independent, shared, and read-only; the context never mutates
// them.  All of the context's own state is owned by the single logical
// request flow, so none of it is locked.
//
// Notes
// -----
// • Errors accumulate as ordered human-readable strings; they are never
//   thrown as control flow.  Only a nil Component passed to Execute is a
//   programming error worth a panic.
// • Oxford commas, two spaces after periods.

package core

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/metrics"
	"github.com/yanizio/relay/internal/requestinfo"
)

// Context is the aggregate every Component operates on.
type Context struct {
	req       *Request
	res       *Response
	engineReq *EngineRequest

	app        App
	dispatcher Dispatcher
	stats      Profiler

	recursionLimit int

	action Action
	stash  map[string]any
	errs   []string
	state  bool
	stack  []Component

	detached      bool
	asyncDetached int
	pendingAsync  []Component
	asyncAction   int

	view   View
	locale string
	info   *requestinfo.RequestInfo
}

// ContextConfig carries everything NewContext needs.  EngineRequest,
// Request, and Response must be non-nil; the rest may be nil/zero (tests
// routinely run without an App or Profiler).
type ContextConfig struct {
	EngineRequest  *EngineRequest
	Request        *Request
	Response       *Response
	App            App
	Dispatcher     Dispatcher
	Profiler       Profiler
	RecursionLimit int
	Locale         string
}

// NewContext builds a context for one request.  A zero RecursionLimit
// falls back to 1000, matching the documented default.
func NewContext(cc ContextConfig) *Context {
	limit := cc.RecursionLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Context{
		req:            cc.Request,
		res:            cc.Response,
		engineReq:      cc.EngineRequest,
		app:            cc.App,
		dispatcher:     cc.Dispatcher,
		stats:          cc.Profiler,
		recursionLimit: limit,
		stash:          make(map[string]any),
		locale:         cc.Locale,
	}
}

//
// plumbing accessors
//

// Request returns the request handle.
func (c *Context) Request() *Request { return c.req }

// Response returns the buffered response handle.
func (c *Context) Response() *Response { return c.res }

// EngineRequest returns the transport-side request state.
func (c *Context) EngineRequest() *EngineRequest { return c.engineReq }

// App returns the application collaborator (may be nil in tests).
func (c *Context) App() App { return c.app }

// Dispatcher returns the resolver collaborator.
func (c *Context) Dispatcher() Dispatcher { return c.dispatcher }

// Action returns the currently dispatched action, nil before matching.
func (c *Context) Action() Action { return c.action }

// SetAction is called by the dispatcher once matching has chosen the
// request's action.
func (c *Context) SetAction(a Action) { c.action = a }

// ActionName returns the current action's short name, "" when unset.
func (c *Context) ActionName() string {
	if c.action == nil {
		return ""
	}
	return c.action.Name()
}

// Namespace returns the current action's namespace, "" when unset.
func (c *Context) Namespace() string {
	if c.action == nil {
		return ""
	}
	return c.action.Namespace()
}

// ControllerName returns the current action's owning controller.
func (c *Context) ControllerName() string {
	if c.action == nil {
		return ""
	}
	return c.action.ControllerName()
}

// Info returns per-request metadata (UA, geo, URL, timestamp) when the
// engine attached it.
func (c *Context) Info() *requestinfo.RequestInfo { return c.info }

// SetInfo attaches per-request metadata.
func (c *Context) SetInfo(info *requestinfo.RequestInfo) { c.info = info }

//
// stash
//

// Stash returns the live stash map.  Mutations are visible to every
// component of the request.
func (c *Context) Stash() map[string]any { return c.stash }

// StashValue reads a stash entry, nil when absent.
func (c *Context) StashValue(key string) any { return c.stash[key] }

// StashValueOr reads a stash entry, def when absent.
func (c *Context) StashValueOr(key string, def any) any {
	if v, ok := c.stash[key]; ok {
		return v
	}
	return def
}

// SetStash inserts or overwrites one entry.
func (c *Context) SetStash(key string, value any) { c.stash[key] = value }

// StashTake removes and returns an entry, nil when absent.
func (c *Context) StashTake(key string) any {
	v, ok := c.stash[key]
	if ok {
		delete(c.stash, key)
	}
	return v
}

// StashRemove deletes an entry, reporting whether it existed.
func (c *Context) StashRemove(key string) bool {
	_, ok := c.stash[key]
	delete(c.stash, key)
	return ok
}

// StashMerge inserts every entry of values, overwriting existing keys.
func (c *Context) StashMerge(values map[string]any) {
	for k, v := range values {
		c.stash[k] = v
	}
}

//
// errors and state
//

// Error appends one human-readable error message and logs it.  Messages
// are preserved in order and never dropped once added.
func (c *Context) Error(msg string) {
	c.errs = append(c.errs, msg)
	zap.L().Error(msg)
}

// ClearErrors drops all accumulated messages.
func (c *Context) ClearErrors() { c.errs = nil }

// HasErrors reports whether any message has been recorded.
func (c *Context) HasErrors() bool { return len(c.errs) > 0 }

// Errors returns a copy of the accumulated messages, in insertion order.
func (c *Context) Errors() []string {
	out := make([]string, len(c.errs))
	copy(out, c.errs)
	return out
}

// State returns the success flag.  It is independent of the error list: a
// component may fail without recording a message, or vice versa.
func (c *Context) State() bool { return c.state }

// SetState sets the success flag.
func (c *Context) SetState(state bool) { c.state = state }

//
// execution stack
//

// Stack returns a read-only snapshot of the currently executing
// components, outermost first.
func (c *Context) Stack() []Component {
	out := make([]Component, len(c.stack))
	copy(out, c.stack)
	return out
}

// StackDepth reports how many components are currently executing.
func (c *Context) StackDepth() int { return len(c.stack) }

//
// execute
//

// Execute runs one component against the context.
//
// The recursion guard comes first: at or beyond the configured limit the
// component is neither pushed nor invoked; one error message is recorded,
// the state flag is cleared, and false is returned.  Such failures are
// local — callers up the chain decide whether to abort the request.
//
// Push and pop are strictly paired around the component's own Execute,
// even when the component finalizes the response mid-call.
func (c *Context) Execute(code Component) bool {
	if code == nil {
		panic("core: Execute called with a nil Component")
	}

	if len(c.stack) >= c.recursionLimit {
		c.Error(fmt.Sprintf("Deep recursion detected (stack size %d) calling %s, %s",
			len(c.stack), code.Reverse(), code.Name()))
		c.SetState(false)
		metrics.DeepRecursionTotal.Inc()
		return false
	}

	c.stack = append(c.stack, code)

	var ret bool
	if c.stats != nil {
		label := c.statsStartExecute(code)

		ret = code.Execute(c)

		// The component might finalize the request before returning,
		// which clears stats, so check again.
		if c.stats != nil && label != "" {
			c.stats.ProfileEnd(label)
		}
	} else {
		ret = code.Execute(c)
	}

	c.stack = c.stack[:len(c.stack)-1]

	return ret
}

// statsStartExecute computes the profiling label for code and starts the
// span.  Internal components (name begins with '_') return "" and are not
// profiled.  Beyond two levels of nesting the label gains an indentation
// arrow so reports read as a tree.
func (c *Context) statsStartExecute(code Component) string {
	if strings.HasPrefix(code.Name(), "_") {
		return ""
	}

	label := code.Reverse()
	if _, isAction := code.(Action); isAction {
		label = "/" + label
	}
	if len(c.stack) > 2 {
		label = strings.Repeat(" ", len(c.stack)-2) + "-> " + label
	}

	c.stats.ProfileStart(label)
	return label
}

//
// forward and detach
//

// Forward delegates to the dispatcher to run another component as part of
// the current request cycle, without touching detach or async bookkeeping.
func (c *Context) Forward(code Component) bool {
	return c.dispatcher.Forward(c, code)
}

// ForwardPath is Forward by symbolic name; relative names resolve against
// the current action's namespace.
func (c *Context) ForwardPath(path string) bool {
	return c.dispatcher.ForwardPath(c, path)
}

// Detached reports whether the default action chain has been told to stop.
func (c *Context) Detached() bool { return c.detached }

// Detach stops the default action chain.  With a non-nil action it first
// forwards there, so Detach(a) both redirects and suppresses the remainder
// of the default chain.
func (c *Context) Detach(action Action) {
	if action != nil {
		c.dispatcher.Forward(c, action)
		return
	}
	c.detached = true
}

//
// dispatcher passthroughs
//

// GetAction resolves an action by name and namespace.
func (c *Context) GetAction(name, ns string) Action {
	return c.dispatcher.GetAction(name, ns)
}

// GetActions returns every action named name visible from ns, root first.
func (c *Context) GetActions(name, ns string) []Action {
	return c.dispatcher.GetActions(name, ns)
}

//
// locale, config, translation
//

// Locale returns the request's locale tag ("en", "pt-BR", …).
func (c *Context) Locale() string { return c.locale }

// SetLocale overrides the request's locale.
func (c *Context) SetLocale(locale string) { c.locale = locale }

// Config reads one application config value with a default.
func (c *Context) Config(key string, def any) any {
	if c.app == nil {
		return def
	}
	return c.app.Config(key, def)
}

// ConfigAll returns the full application config map.
func (c *Context) ConfigAll() map[string]any {
	if c.app == nil {
		return nil
	}
	return c.app.ConfigAll()
}

// Translate localizes source text for the request's locale.
func (c *Context) Translate(context, source, disambiguation string, n int) string {
	if c.app == nil {
		return source
	}
	return c.app.Translate(c.locale, context, source, disambiguation, n)
}

//
// views
//

// CustomView returns the rendering collaborator chosen for this request,
// nil by default.
func (c *Context) CustomView() View { return c.view }

// SetCustomView selects a named view for this request.  Returns false
// (leaving the previous choice) when the name is unknown.
func (c *Context) SetCustomView(name string) bool {
	if c.app == nil {
		return false
	}
	v := c.app.View(name)
	if v == nil {
		return false
	}
	c.view = v
	return true
}

// View looks up a named view without selecting it.
func (c *Context) View(name string) View {
	if c.app == nil {
		return nil
	}
	return c.app.View(name)
}

//
// finalize
//

// Finalize hands the completed response to the transport, exactly once.
// A second call is an observable no-op: a warning is logged and counted,
// nothing else happens.
func (c *Context) Finalize() {
	if c.engineReq.Finalized() {
		zap.L().Warn("trying to finalize a finalized request, skipping",
			zap.String("path", c.req.HTTP().URL.Path))
		metrics.DoubleFinalizeTotal.Inc()
		return
	}

	if c.stats != nil {
		elapsed := c.engineReq.Elapsed().Seconds()
		perSecond := "??"
		if elapsed > 0 {
			perSecond = fmt.Sprintf("%.3f", 1.0/elapsed)
		}
		zap.S().Infof("Request took: %.6fs (%s/s)\n%s",
			elapsed, perSecond, c.stats.Report())
		c.stats = nil
	}

	elapsed := c.engineReq.Elapsed()
	c.engineReq.finalize(c.res)
	metrics.RequestDuration.Observe(elapsed.Seconds())
}
