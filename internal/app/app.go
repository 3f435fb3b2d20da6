// internal/app/app.go
//
// Application collaborator: read-only config surface, translation, named
// views, and after-dispatch hooks.
//
// Context
// -------
// One *App is built at boot and shared read-only by every request.  It
// implements core.App: components reach it through Context.Config,
// Context.Translate, Context.SetCustomView, and the engine runs the
// after-dispatch hooks right before a response finalizes (both on the
// synchronous path and when an async chain completes).
//
// Notes
// -----
// • RegisterView and OnAfterDispatch are boot-time calls; they are not
//   safe to race with live requests, and nothing needs them to be.
// • Oxford commas, two spaces after periods.
package app

import (
	"github.com/yanizio/relay/internal/config"
	"github.com/yanizio/relay/internal/core"
	"github.com/yanizio/relay/internal/i18n"
)

// App implements core.App.
type App struct {
	cfg   *config.Config
	i18n  *i18n.Store
	views map[string]core.View
	hooks []func(*core.Context)
}

// New wires the application from its boot-time collaborators.  translations
// may be nil; Translate then falls back to source text.
func New(cfg *config.Config, translations *i18n.Store) *App {
	return &App{
		cfg:   cfg,
		i18n:  translations,
		views: make(map[string]core.View),
	}
}

// Config reads one merged configuration value by dotted key
// ("dispatch.recursion_limit"), returning def when absent.
func (a *App) Config(key string, def any) any {
	if v, ok := a.cfg.Raw()[key]; ok {
		return v
	}
	return def
}

// ConfigAll returns the full merged configuration tree.
func (a *App) ConfigAll() map[string]any { return a.cfg.Raw() }

// Translate localizes source text through the i18n store.
func (a *App) Translate(locale, context, source, disambiguation string, n int) string {
	if a.i18n == nil {
		return source
	}
	return a.i18n.Translate(locale, context, source, disambiguation, n)
}

// RegisterView adds a named rendering collaborator.  Boot-time only.
func (a *App) RegisterView(v core.View) { a.views[v.Name()] = v }

// View returns a registered view or nil.
func (a *App) View(name string) core.View { return a.views[name] }

// OnAfterDispatch appends a hook that observes "after dispatch", i.e. the
// completed chain immediately before finalize.  Boot-time only.
func (a *App) OnAfterDispatch(fn func(*core.Context)) {
	a.hooks = append(a.hooks, fn)
}

// AfterDispatch runs the registered hooks in order.
func (a *App) AfterDispatch(c *core.Context) {
	for _, fn := range a.hooks {
		fn(c)
	}
}

// DefaultLocale returns the locale new contexts start with.
func (a *App) DefaultLocale() string {
	if a.i18n != nil {
		return a.i18n.DefaultLocale()
	}
	if a.cfg.I18N.DefaultLocale != "" {
		return a.cfg.I18N.DefaultLocale
	}
	return "en"
}
