package operation

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Response is the terminal result of an operation invocation: status,
// headers, and a fully buffered body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponse creates an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
	}
}

// JSONResponse creates a response carrying the JSON encoding of v.
// An encoding failure degrades to a plain 500 response; the adapter
// contract does not allow an invocation to end without a response.
func JSONResponse(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		resp := TextResponse(http.StatusInternalServerError, "response encoding failed")
		return resp
	}

	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "application/json")
	resp.Body = body
	return resp
}

// TextResponse creates a plain text response.
func TextResponse(status int, text string) *Response {
	resp := NewResponse(status)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(text)
	return resp
}

// IsJSON reports whether the response carries a JSON body. This is the
// only content classification the dispatch layer performs.
func (r *Response) IsJSON() bool {
	ct := r.Header.Get("Content-Type")
	return ct == "application/json" || strings.HasPrefix(ct, "application/json;")
}

// Write writes the response to an http.ResponseWriter.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(r.StatusCode)
	_, err := w.Write(r.Body)
	return err
}
