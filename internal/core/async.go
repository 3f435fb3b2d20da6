// internal/core/async.go
//
// Async continuation tracking: cooperative suspension of the dispatch
// chain without a scheduler thread.
//
// Context
// -------
// Dispatch runs the pending action queue (filled by the engine from the
// matched controller chain).  Any component may call DetachAsync before
// handing control back to its own event source — a non-blocking I/O
// completion, an external timer — and AttachAsync from the completion
// callback.  The detach count supports fan-out: several parallel
// suspensions converge on the single AttachAsync call that brings the
// count back to zero, which resumes the queue exactly where it stopped.
//
// Between suspension and resumption the context must stay alive and
// unfinalized; the engine guarantees that by parking the handler goroutine
// on EngineRequest.Done.
//
// Notes
// -----
// • The queue cursor only grows.  Re-entrant suspension during resumption
//   leaves queue and cursor intact, so a later AttachAsync continues at
//   the same spot.
// • There is deliberately no blocking wait primitive here.
package core

import (
	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/metrics"
)

// EnqueuePending appends components to the dispatch queue.  The engine
// queues the matched controller chain before calling Dispatch; components
// may append more while the request is live.  Queued components are
// borrowed from the dispatcher's registry, never owned.
func (c *Context) EnqueuePending(components ...Component) {
	c.pendingAsync = append(c.pendingAsync, components...)
}

// AsyncDepth reports the number of outstanding suspensions.
func (c *Context) AsyncDepth() int { return c.asyncDetached }

// DetachAsync suspends dispatch: the pending queue stops advancing and the
// transport is told the response will complete asynchronously.  Each call
// must be matched by exactly one AttachAsync.
func (c *Context) DetachAsync() {
	c.asyncDetached++
	c.engineReq.SetAsync()
	metrics.AsyncDetachTotal.Inc()
}

// AttachAsync resolves one suspension.  The call that brings the count to
// zero resumes the pending queue; when the queue drains without
// re-suspending, the chain is complete and the response is finalized.
//
// Calling AttachAsync with no suspension outstanding is a bookkeeping bug
// in the caller; it is logged, counted, and ignored rather than allowed to
// corrupt the cursor.
func (c *Context) AttachAsync() {
	if c.asyncDetached == 0 {
		zap.L().Warn("async attach without a matching detach, ignoring",
			zap.String("path", c.req.HTTP().URL.Path))
		metrics.AsyncUnderflowTotal.Inc()
		return
	}

	c.asyncDetached--
	if c.asyncDetached > 0 {
		return
	}

	if c.engineReq.Finalized() {
		zap.L().Warn("trying to async attach to a finalized request, skipping",
			zap.String("path", c.req.HTTP().URL.Path))
		return
	}

	failed := c.runPending()
	if !failed && c.asyncDetached > 0 {
		// A resumed action suspended again; a later attach continues.
		return
	}

	if c.engineReq.Async() {
		if c.app != nil {
			c.app.AfterDispatch(c)
		}
		c.Finalize()
	}
}

// Dispatch drains the pending queue for the initial, synchronous pass.
// Returns false when dispatch suspended (the response will be finalized by
// a later AttachAsync); true when the chain completed and the response was
// finalized here.
func (c *Context) Dispatch() bool {
	failed := c.runPending()
	if !failed && c.asyncDetached > 0 {
		return false
	}

	if c.app != nil {
		c.app.AfterDispatch(c)
	}
	c.Finalize()
	return true
}

// runPending advances the queue cursor, executing each pending component
// in order.  Stops early on the first failure (failed == true; dispatch is
// finished in an error state) or when a component suspended (failed ==
// false with a positive detach count).
func (c *Context) runPending() (failed bool) {
	for c.asyncAction < len(c.pendingAsync) {
		action := c.pendingAsync[c.asyncAction]
		c.asyncAction++
		if !c.Execute(action) {
			return true
		}
		if c.asyncDetached > 0 {
			return false
		}
	}
	return false
}
