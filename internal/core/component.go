// internal/core/component.go
//
// Component and collaborator contracts for the per-request dispatch core.
//
// Context
// -------
// Everything the execution context drives or consults is expressed as a
// small interface here:
//
//   - Component  — a unit of executable request-handling logic.
//   - Action     — a Component bound to a controller and namespace, with a
//     declared count of required positional path captures.
//   - Dispatcher — resolves symbolic action references, builds canonical
//     paths, and performs forwarding (concrete impl: internal/dispatcher).
//   - App        — process-wide configuration, translation, named views,
//     and after-dispatch hooks (concrete impl: internal/app).
//   - View       — optional rendering collaborator referenced by
//     Context.SetCustomView.
//   - Profiler   — optional per-action timing hook; a nil Profiler is a
//     zero-cost no-op on the execute hot path.
//
// The context owns none of these.  Dispatcher, App, and Profiler factories
// are request-independent and shared read-only across requests.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package core

// Component is a unit of executable request-handling logic.  Name is the
// component's short name; names starting with '_' mark internal components
// that are excluded from profiling.  Reverse is the canonical private path
// (namespace-qualified, no leading slash).
type Component interface {
	Name() string
	Reverse() string
	Execute(c *Context) bool
}

// Action is a Component bound to a controller and a namespace.
// NumberOfCaptures declares how many positional path segments the action
// consumes as structural captures; trailing segments remain free-form args.
type Action interface {
	Component
	Namespace() string
	ControllerName() string
	NumberOfCaptures() int
}

// Dispatcher resolves symbolic action references to concrete Actions,
// builds canonical paths, and performs forwarding on behalf of a Context.
type Dispatcher interface {
	// GetAction returns the action named name in namespace ns, or nil.
	GetAction(name, ns string) Action
	// GetActions returns every action named name registered in ns or any
	// of its parent namespaces, root first.
	GetActions(name, ns string) []Action
	// GetActionByPath resolves an absolute private path ("/blog/item").
	GetActionByPath(path string) Action
	// ExpandAction normalizes chained or aliased actions; returns the
	// input unchanged when there is nothing to expand.
	ExpandAction(c *Context, a Action) Action
	// URIForAction returns the canonical path for the action with the
	// given captures interpolated, or "" when the action is unknown.
	URIForAction(a Action, captures []string) string
	// Forward runs another component as part of the current request.
	Forward(c *Context, code Component) bool
	// ForwardPath resolves a symbolic name relative to the current
	// action's namespace (absolute when it starts with '/') and runs it.
	ForwardPath(c *Context, path string) bool
}

// App is the application-level collaborator: read-only configuration,
// translation, named views, and hooks run after the dispatch chain
// completes (immediately before finalize).
type App interface {
	Config(key string, def any) any
	ConfigAll() map[string]any
	Translate(locale, context, source, disambiguation string, n int) string
	View(name string) View
	AfterDispatch(c *Context)
}

// View renders a response from the context's stash.  Referenced by
// Context.SetCustomView; rendering itself lives outside the core.
type View interface {
	Name() string
	Render(c *Context) error
}

// Profiler records per-component execution timing.  Report returns a
// human-readable table that Finalize logs once.
type Profiler interface {
	ProfileStart(label string)
	ProfileEnd(label string)
	Report() string
}

// ComponentFunc adapts a plain function to the Component interface.
// Useful for tests and for lightweight non-action components.
type ComponentFunc struct {
	ComponentName    string
	ComponentReverse string
	Fn               func(c *Context) bool
}

func (f *ComponentFunc) Name() string            { return f.ComponentName }
func (f *ComponentFunc) Reverse() string         { return f.ComponentReverse }
func (f *ComponentFunc) Execute(c *Context) bool { return f.Fn(c) }
