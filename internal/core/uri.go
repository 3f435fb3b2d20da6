// internal/core/uri.go
//
// Pure, side-effect-free construction of request-relative absolute URIs.
//
// Context
// -------
// URIFor composes a URI from a path, trailing path args, and query
// parameters; URIForAction and URIForActionPath resolve an Action (or a
// private action path) through the dispatcher first, splitting leading
// args into the captures the target requires.  Captures are the
// structural segments consumed by route matching; args are free-form
// trailing segments — getting the split wrong produces malformed or
// ambiguous URIs.
//
// Notes
// -----
// • Paths are assigned with decoded-segment semantics: URL.Path holds the
//   decoded form and RawPath stays empty, so percent-escapes already in
//   the inputs are literal characters that re-escape on String().
// • Query encoding preserves caller insertion order; see Params.
package core

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

//
// ordered query parameters
//

// Param is one query key/value pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered multimap of query parameters.  Duplicate keys are
// allowed; encoding preserves insertion order, which is the order callers
// see in the final URI.
type Params []Param

// Add appends one pair and returns the extended slice.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value for key, "" when absent.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Encode renders the query string in insertion order.  Empty Params
// encode to "", so no trailing '?' ever appears.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

//
// URI builders
//

// URIFor composes an absolute URI from the current request's base
// (scheme, host, and port preserved).  An empty path derives from the
// current action's namespace.  Args join the path with '/'; a path of
// exactly "/" concatenates directly so no doubled separator appears.
func (c *Context) URIFor(path string, args []string, query Params) *url.URL {
	uri := c.req.URI()

	p := path
	if p == "" && c.action != nil {
		// Namespace never carries a leading slash at this stage.
		p = c.action.Namespace()
	}

	if len(args) > 0 {
		if p == "/" {
			p += strings.Join(args, "/")
		} else {
			p = p + "/" + strings.Join(args, "/")
		}
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	uri.Path = p
	uri.RawPath = "" // decoded-segment semantics; String() re-escapes
	uri.RawQuery = query.Encode()
	uri.Fragment = ""

	return uri
}

// URIForAction composes a URI for an action.  A nil action defaults to the
// one currently executing.  Leading args fill the expanded target's
// required captures (captures win priority; leftovers stay as trailing
// args); a target with no captures treats everything as flat path args.
// Returns nil — after a logged warning — when the dispatcher cannot
// resolve a canonical path, so URI generation never fails the request.
func (c *Context) URIForAction(action Action, captures, args []string, query Params) *url.URL {
	local := action
	if local == nil {
		local = c.action
	}

	localArgs := append([]string(nil), args...)
	localCaptures := append([]string(nil), captures...)

	expanded := c.dispatcher.ExpandAction(c, local)
	if n := expanded.NumberOfCaptures(); n > 0 {
		for len(localCaptures) < n && len(localArgs) > 0 {
			localCaptures = append(localCaptures, localArgs[0])
			localArgs = localArgs[1:]
		}
	} else {
		localArgs = append(localCaptures, localArgs...)
		localCaptures = nil
	}

	path := c.dispatcher.URIForAction(local, localCaptures)
	if path == "" {
		zap.L().Warn("can not find action path",
			zap.String("action", local.Reverse()),
			zap.Strings("captures", localCaptures))
		return nil
	}

	return c.URIFor(path, localArgs, query)
}

// URIForActionPath is URIForAction addressed by private action path
// ("/blog/item").  Returns nil when no such action is registered.
func (c *Context) URIForActionPath(path string, captures, args []string, query Params) *url.URL {
	action := c.dispatcher.GetActionByPath(path)
	if action == nil {
		zap.L().Warn("can not find action", zap.String("path", path))
		return nil
	}
	return c.URIForAction(action, captures, args, query)
}
