// internal/dispatcher/action.go
//
// Concrete Action and Controller types.
//
// Context
// -------
// A Controller groups handler functions under one namespace.  Each
// concrete controller lives under components/<name> and calls
// dispatcher.Register() in an init() function.
// The dispatcher turns every declared ActionSpec into an Action — plus
// internal _BEGIN, _AUTO, and _END actions when the controller provides
// the corresponding hooks.  Internal actions carry the underscore marker
// that excludes them from profiling.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package dispatcher

import (
	"github.com/yanizio/relay/internal/core"
)

// HandlerFunc is the body of an action.  The returned bool is the
// component's success result, propagated by Context.Execute.
type HandlerFunc func(c *core.Context) bool

// ActionSpec declares one action of a controller.
type ActionSpec struct {
	// Name is the action's short name within the controller namespace.
	Name string
	// Captures is the number of structural path segments the action
	// consumes (structural captures, not trailing args).
	Captures int
	// Fn handles the request.
	Fn HandlerFunc
}

// Controller groups actions under a namespace.
type Controller struct {
	// Name identifies the controller ("Blog").
	Name string
	// Namespace is the private-path prefix, no leading or trailing
	// slash ("blog" or "blog/posts"); "" is the root namespace.
	Namespace string

	// Begin, Auto, and End are optional chain hooks.  Begin runs before
	// the matched action, every Auto in the namespace chain runs next
	// (root first), and End runs after the action.
	Begin HandlerFunc
	Auto  HandlerFunc
	End   HandlerFunc

	Actions []ActionSpec
}

// Action is the dispatcher's concrete core.Action.
type Action struct {
	name       string
	ns         string
	controller string
	captures   int
	fn         HandlerFunc
}

func (a *Action) Name() string { return a.name }

// Reverse is the canonical private path without a leading slash:
// "blog/item" for action "item" in namespace "blog".
func (a *Action) Reverse() string {
	if a.ns == "" {
		return a.name
	}
	return a.ns + "/" + a.name
}

func (a *Action) Namespace() string      { return a.ns }
func (a *Action) ControllerName() string { return a.controller }
func (a *Action) NumberOfCaptures() int  { return a.captures }

func (a *Action) Execute(c *core.Context) bool { return a.fn(c) }
