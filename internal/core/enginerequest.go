// internal/core/enginerequest.go
//
// Transport-side request state: the status flags consumed by the engine
// plus the one-shot finalize that hands the buffered response back.
//
// Context
// -------
// The engine creates one EngineRequest per inbound request and keeps the
// handler goroutine alive until Done() is closed.  The execution context
// sets the Async flag when dispatch suspends (so the engine knows not to
// finalize when the call stack unwinds) and calls finalize exactly once
// when the response is complete.
//
// Notes
// -----
// • Status mutation happens only on the request's single logical flow, so
//   no locking is needed; Done() is safe to wait on from the handler
//   goroutine because close happens-before the channel receive.
package core

import (
	"net/http"
	"time"
)

// EngineStatus is a bitmask of transport-visible request states.
type EngineStatus uint8

const (
	// EngineStatusAsync marks a response that will complete
	// asynchronously: the engine must not finalize when the current
	// call stack unwinds.
	EngineStatusAsync EngineStatus = 1 << iota
	// EngineStatusFinalized marks a response that has been irreversibly
	// handed to the transport.
	EngineStatusFinalized
)

// EngineRequest couples a ResponseWriter with the status flags the
// execution context manages.  The writer may be nil in tests; finalize
// then only flips the flag and closes Done.
type EngineRequest struct {
	status  EngineStatus
	w       http.ResponseWriter
	started time.Time
	done    chan struct{}
}

// NewEngineRequest wraps w.  The elapsed clock starts now.
func NewEngineRequest(w http.ResponseWriter) *EngineRequest {
	return &EngineRequest{
		w:       w,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Status returns the current flag set.
func (er *EngineRequest) Status() EngineStatus { return er.status }

// SetAsync marks the response as completing asynchronously.
func (er *EngineRequest) SetAsync() { er.status |= EngineStatusAsync }

// Async reports whether the async flag is set.
func (er *EngineRequest) Async() bool { return er.status&EngineStatusAsync != 0 }

// Finalized reports whether the response has been handed to the transport.
func (er *EngineRequest) Finalized() bool { return er.status&EngineStatusFinalized != 0 }

// Done is closed exactly once, when the request is finalized.  The engine
// parks suspended handler goroutines on it.
func (er *EngineRequest) Done() <-chan struct{} { return er.done }

// Elapsed returns the wall-clock time since the request was accepted.
func (er *EngineRequest) Elapsed() time.Duration { return time.Since(er.started) }

// finalize writes the buffered response to the transport and closes Done.
// Callers must check Finalized first; Context.Finalize does.
func (er *EngineRequest) finalize(res *Response) {
	er.status |= EngineStatusFinalized
	if er.w != nil {
		h := er.w.Header()
		for k, vs := range res.Headers() {
			h[k] = vs
		}
		er.w.WriteHeader(res.Status())
		_, _ = er.w.Write(res.Body())
	}
	close(er.done)
}
