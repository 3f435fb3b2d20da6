// components/demo/demo.go
//
// Demo controller: a small tour of the dispatch surface.
//
// Actions
// -------
//   /demo/hello        – translate + stash + _END rendering.
//   /demo/item/<id>/…  – one capture plus free-form trailing args.
//   /demo/slow         – async suspension: detach, timer, attach.
//   /demo/link         – URI generation for another action.
//
// Controllers self-register in init(), so importing this package from
// cmd/web is enough to mount the namespace.
package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/relay/internal/core"
	"github.com/yanizio/relay/internal/dispatcher"
)

func init() {
	dispatcher.Register(&dispatcher.Controller{
		Name:      "Demo",
		Namespace: "demo",
		Begin:     begin,
		End:       end,
		Actions: []dispatcher.ActionSpec{
			{Name: "hello", Fn: hello},
			{Name: "item", Captures: 1, Fn: item},
			{Name: "slow", Fn: slow},
			{Name: "link", Fn: link},
		},
	})
}

// begin stamps the request so end can report handling time.
func begin(c *core.Context) bool {
	c.SetStash("demo.begin", time.Now())
	return true
}

// end renders the stashed message when no action wrote a body itself.
func end(c *core.Context) bool {
	res := c.Response()
	if res.ContentLength() == 0 {
		res.Headers().Set("Content-Type", "text/plain; charset=utf-8")
		msg, _ := c.StashValueOr("demo.message", "demo: nothing to say").(string)
		res.WriteString(msg + "\n")
	}
	return true
}

func hello(c *core.Context) bool {
	greeting := c.Translate("Demo", "Hello, world", "", -1)
	c.SetStash("demo.message", greeting)
	return true
}

// item echoes its capture and whatever trailing args the URL carried.
func item(c *core.Context) bool {
	req := c.Request()
	msg := "item " + req.Captures()[0]
	if args := req.Args(); len(args) > 0 {
		msg += " (" + strings.Join(args, ", ") + ")"
	}
	c.SetStash("demo.message", msg)
	return true
}

// slow suspends dispatch, finishes the work on a timer, and reattaches
// from the completion callback.  The handler goroutine stays parked until
// the attach finalizes the response.
func slow(c *core.Context) bool {
	c.DetachAsync()
	time.AfterFunc(100*time.Millisecond, func() {
		c.SetStash("demo.message", "slow reply")
		c.AttachAsync()
	})
	return true
}

// link emits the canonical URI for /demo/item with a capture and a query.
func link(c *core.Context) bool {
	uri := c.URIForActionPath("/demo/item",
		[]string{"42"}, nil, core.Params{}.Add("ref", "link"))
	if uri == nil {
		c.Error("demo: item action is not registered")
		return false
	}
	c.SetStash("demo.message", fmt.Sprintf("see %s", uri))
	return true
}
