package operation

import (
	"context"
	"encoding/json"
	"net/http"
)

// Handler is the uniform calling convention for routed operations.
// Implementations must be safe for repeated, concurrent invocation and
// must return a well-formed response on every call.
type Handler interface {
	Serve(ctx context.Context, req *http.Request) *Response
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *http.Request) *Response

// Serve implements Handler.
func (f HandlerFunc) Serve(ctx context.Context, req *http.Request) *Response {
	return f(ctx, req)
}

// Extractor produces an operation's strongly-typed input from a raw
// request, or a rejection convertible to a response.
type Extractor[I any] func(req *http.Request) (I, *Rejection)

// Func is the user-supplied operation function. Its invocation is the
// per-request suspension point: it may block, perform outbound I/O,
// and observe cancellation through the context.
type Func[I, O any] func(ctx context.Context, input I) (O, error)

// ResponseConverter converts a typed operation output into a response.
type ResponseConverter[O any] func(output O) *Response

// ErrorConverter converts a typed operation error into a response.
type ErrorConverter func(err error) *Response

// handler adapts one typed operation behind the Handler interface. It
// holds no per-call mutable state; any state the operation needs lives
// in its own captured environment.
type handler[I, O any] struct {
	extract    Extractor[I]
	call       Func[I, O]
	convert    ResponseConverter[O]
	convertErr ErrorConverter
}

// Option configures an operation handler.
type Option[I, O any] func(*handler[I, O])

// WithResponseConverter sets the output-to-response conversion.
// The default encodes the output as a 200 JSON response.
func WithResponseConverter[I, O any](convert ResponseConverter[O]) Option[I, O] {
	return func(h *handler[I, O]) {
		h.convert = convert
	}
}

// WithErrorConverter sets the operation-error-to-response conversion.
// The default maps a *Rejection error to its declared response and any
// other error to a plain 500 JSON response with no internal detail.
func WithErrorConverter[I, O any](convert ErrorConverter) Option[I, O] {
	return func(h *handler[I, O]) {
		h.convertErr = convert
	}
}

// NewHandler adapts a typed operation into a Handler: extract the
// input (a rejection short-circuits to its response), invoke the
// operation function, and convert the output or error into the
// terminal response.
func NewHandler[I, O any](extract Extractor[I], call Func[I, O], opts ...Option[I, O]) Handler {
	h := &handler[I, O]{
		extract:    extract,
		call:       call,
		convert:    func(output O) *Response { return JSONResponse(http.StatusOK, output) },
		convertErr: defaultErrorConverter,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Serve implements Handler.
func (h *handler[I, O]) Serve(ctx context.Context, req *http.Request) *Response {
	input, rejection := h.extract(req)
	if rejection != nil {
		return rejection.Response()
	}

	output, err := h.call(ctx, input)
	if err != nil {
		return ensureResponse(h.convertErr(err))
	}

	return ensureResponse(h.convert(output))
}

// defaultErrorConverter maps operation errors to responses when no
// converter was declared.
func defaultErrorConverter(err error) *Response {
	if rejection, ok := err.(*Rejection); ok {
		return rejection.Response()
	}
	return JSONResponse(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

// ensureResponse guards the adapter contract: an invocation never
// terminates without a well-formed response.
func ensureResponse(resp *Response) *Response {
	if resp == nil {
		return JSONResponse(http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
	return resp
}

// JSONExtractor returns an extractor that decodes the request body as
// JSON into I. Decode failures reject the request with a 400 response.
func JSONExtractor[I any]() Extractor[I] {
	return func(req *http.Request) (I, *Rejection) {
		var input I
		if req.Body == nil {
			return input, NewRejection(http.StatusBadRequest, "missing_body", "request body is required")
		}
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			return input, NewRejection(http.StatusBadRequest, "malformed_body", "request body is not valid JSON")
		}
		return input, nil
	}
}
