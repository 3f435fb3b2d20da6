// internal/core/request.go
//
// Request and Response handles owned by the execution context for the
// request's lifetime.
//
// The Response buffers status, headers, and body so components may keep
// writing after the transport handler would normally have returned (async
// suspension); everything is flushed once, at finalize.
package core

import (
	"bytes"
	"net/http"
	"net/url"
)

//
// Request
//

// Request wraps the inbound *http.Request plus the positional path
// segments the dispatcher extracted: captures (consumed by matching) and
// args (free-form trailing segments).
type Request struct {
	httpReq  *http.Request
	captures []string
	args     []string
}

// NewRequest wraps r.  r must be non-nil.
func NewRequest(r *http.Request) *Request {
	return &Request{httpReq: r}
}

// HTTP returns the underlying request.
func (r *Request) HTTP() *http.Request { return r.httpReq }

// URI returns an absolute copy of the request URI with scheme, host, and
// port filled in from the transport.  Callers own the copy.
func (r *Request) URI() *url.URL {
	uri := *r.httpReq.URL
	if uri.Scheme == "" {
		if r.httpReq.TLS != nil {
			uri.Scheme = "https"
		} else {
			uri.Scheme = "http"
		}
	}
	if uri.Host == "" {
		uri.Host = r.httpReq.Host
	}
	return &uri
}

// Captures returns the structural path segments consumed by matching.
func (r *Request) Captures() []string { return r.captures }

// SetCaptures is called by the dispatcher during matching.
func (r *Request) SetCaptures(caps []string) { r.captures = caps }

// Args returns the free-form trailing path segments.
func (r *Request) Args() []string { return r.args }

// SetArgs is called by the dispatcher during matching.
func (r *Request) SetArgs(args []string) { r.args = args }

//
// Response
//

// Response buffers the reply until finalize.  Zero status means 200.
type Response struct {
	status  int
	headers http.Header
	body    bytes.Buffer
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{status: http.StatusOK, headers: make(http.Header)}
}

// Status returns the response code.
func (r *Response) Status() int { return r.status }

// SetStatus sets the response code.
func (r *Response) SetStatus(code int) { r.status = code }

// Headers returns the mutable header map.
func (r *Response) Headers() http.Header { return r.headers }

// Write appends to the body buffer.  Implements io.Writer.
func (r *Response) Write(p []byte) (int, error) { return r.body.Write(p) }

// WriteString appends s to the body buffer.
func (r *Response) WriteString(s string) { r.body.WriteString(s) }

// Body returns the buffered bytes.
func (r *Response) Body() []byte { return r.body.Bytes() }

// ResetBody drops everything buffered so far.  Used by error rendering to
// replace a half-written body.
func (r *Response) ResetBody() { r.body.Reset() }

// ContentLength reports the buffered body size.
func (r *Response) ContentLength() int { return r.body.Len() }
