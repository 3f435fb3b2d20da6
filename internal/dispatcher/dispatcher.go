// internal/dispatcher/dispatcher.go
//
// Action registry and resolver (the core's Dispatcher collaborator).
//
// Context
// -------
// Controllers self-register through the package-level Register() from
// init() functions; the engine builds one *Dispatcher from everything
// registered at boot.  The dispatcher
// resolves symbolic action references, matches inbound paths, builds
// canonical URIs for actions, and performs forwarding for the execution
// context.
//
// Matching is longest-prefix over private paths: "/blog/item/10/x" first
// tries the action "blog/item/10/x", then "blog/item/10", then
// "blog/item" — the remaining segments become captures (up to the
// action's declared count) and trailing args.
//
// Notes
// -----
// • The dispatcher is built once at boot and read-only afterwards, so it
//   is shared across requests without locking; only the boot-time global
//   registry takes a mutex.
// • Oxford commas, two spaces after periods.
package dispatcher

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/core"
)

//
// boot-time registry
//

var (
	mu         sync.Mutex
	registered []*Controller
)

// Register is invoked from controller init() functions.
func Register(c *Controller) {
	mu.Lock()
	registered = append(registered, c)
	mu.Unlock()
}

// Registered returns every controller registered so far.
func Registered() []*Controller {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*Controller, len(registered))
	copy(out, registered)
	return out
}

//
// Dispatcher
//

// Dispatcher resolves and forwards actions.  Construct with New, populate
// with Add, then treat as read-only.
type Dispatcher struct {
	actions     map[string]*Action // reverse → action
	controllers map[string]*Controller
}

// New returns a dispatcher loaded with every controller passed in.  Use
// New(Registered()...) to pick up init()-time registrations.
func New(controllers ...*Controller) *Dispatcher {
	d := &Dispatcher{
		actions:     make(map[string]*Action),
		controllers: make(map[string]*Controller),
	}
	for _, c := range controllers {
		d.Add(c)
	}
	return d
}

// Add registers a controller's actions, including the internal _BEGIN,
// _AUTO, and _END hooks when present.
func (d *Dispatcher) Add(c *Controller) {
	ns := strings.Trim(c.Namespace, "/")
	d.controllers[c.Name] = c

	add := func(name string, captures int, fn HandlerFunc) {
		a := &Action{name: name, ns: ns, controller: c.Name, captures: captures, fn: fn}
		if _, dup := d.actions[a.Reverse()]; dup {
			zap.L().Warn("duplicate action registration, keeping first",
				zap.String("action", a.Reverse()))
			return
		}
		d.actions[a.Reverse()] = a
	}

	if c.Begin != nil {
		add("_BEGIN", 0, c.Begin)
	}
	if c.Auto != nil {
		add("_AUTO", 0, c.Auto)
	}
	if c.End != nil {
		add("_END", 0, c.End)
	}
	for _, spec := range c.Actions {
		add(spec.Name, spec.Captures, spec.Fn)
	}
}

// Controllers returns the controllers by name.
func (d *Dispatcher) Controllers() map[string]*Controller { return d.controllers }

//
// core.Dispatcher implementation
//

// GetAction returns the action named name in namespace ns, or nil.
func (d *Dispatcher) GetAction(name, ns string) core.Action {
	if name == "" {
		return nil
	}
	key := strings.Trim(ns, "/")
	if key != "" {
		key += "/"
	}
	if a, ok := d.actions[key+name]; ok {
		return a
	}
	return nil
}

// GetActions returns every action named name registered in ns or any of
// its parent namespaces, root first.  Used for the _AUTO chain.
func (d *Dispatcher) GetActions(name, ns string) []core.Action {
	var out []core.Action
	clean := strings.Trim(ns, "/")

	prefixes := []string{""}
	if clean != "" {
		parts := strings.Split(clean, "/")
		for i := range parts {
			prefixes = append(prefixes, strings.Join(parts[:i+1], "/"))
		}
	}

	for _, prefix := range prefixes {
		if a := d.GetAction(name, prefix); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// GetActionByPath resolves an absolute private path ("/blog/item").
func (d *Dispatcher) GetActionByPath(path string) core.Action {
	if a, ok := d.actions[strings.Trim(path, "/")]; ok {
		return a
	}
	return nil
}

// ExpandAction normalizes chained or aliased actions.  This dispatcher
// has no chained dispatch type, so the input is already canonical.
func (d *Dispatcher) ExpandAction(_ *core.Context, a core.Action) core.Action {
	return a
}

// URIForAction returns the canonical path for an action with captures
// interpolated after the action path, or "" when the action is unknown.
func (d *Dispatcher) URIForAction(a core.Action, captures []string) string {
	if a == nil {
		return ""
	}
	if _, ok := d.actions[a.Reverse()]; !ok {
		return ""
	}
	path := "/" + a.Reverse()
	if len(captures) > 0 {
		path += "/" + strings.Join(captures, "/")
	}
	return path
}

// Forward runs another component as part of the current request cycle.
func (d *Dispatcher) Forward(c *core.Context, code core.Component) bool {
	if code == nil {
		c.Error("Couldn't forward to a nil component.")
		c.SetState(false)
		return false
	}
	return c.Execute(code)
}

// ForwardPath resolves a symbolic name and forwards to it.  Absolute
// names ("/blog/item") resolve from the root; relative names resolve
// against the current action's namespace.
func (d *Dispatcher) ForwardPath(c *core.Context, path string) bool {
	var target core.Action
	if strings.HasPrefix(path, "/") {
		target = d.GetActionByPath(path)
	} else {
		target = d.GetAction(path, c.Namespace())
	}
	if target == nil {
		c.Error("Couldn't forward to command \"" + path + "\": Invalid action or component.")
		c.SetState(false)
		return false
	}
	return c.Execute(target)
}

//
// request matching and chain assembly
//

// Match finds the action for an inbound URL path by longest private-path
// prefix.  The segments left over after the action path are split into
// the action's required captures and free-form trailing args.  Returns
// nil when nothing matches or the captures cannot be satisfied.
func (d *Dispatcher) Match(urlPath string) (action core.Action, captures, args []string) {
	clean := strings.Trim(urlPath, "/")
	if clean == "" {
		if a := d.GetActionByPath("index"); a != nil {
			return a, nil, nil
		}
		return nil, nil, nil
	}

	parts := strings.Split(clean, "/")
	for i := len(parts); i > 0; i-- {
		a, ok := d.actions[strings.Join(parts[:i], "/")]
		if !ok {
			continue
		}
		rest := parts[i:]
		if len(rest) < a.NumberOfCaptures() {
			continue
		}
		return a, rest[:a.NumberOfCaptures()], rest[a.NumberOfCaptures():]
	}
	return nil, nil, nil
}

// Chain assembles the dispatch chain for a matched action: the nearest
// _BEGIN in the namespace chain, every _AUTO root first, the action
// itself, and the nearest _END.
func (d *Dispatcher) Chain(action core.Action) []core.Component {
	ns := action.Namespace()
	var chain []core.Component

	if begins := d.GetActions("_BEGIN", ns); len(begins) > 0 {
		chain = append(chain, begins[len(begins)-1])
	}
	for _, auto := range d.GetActions("_AUTO", ns) {
		chain = append(chain, auto)
	}
	chain = append(chain, action)
	if ends := d.GetActions("_END", ns); len(ends) > 0 {
		chain = append(chain, ends[len(ends)-1])
	}
	return chain
}
