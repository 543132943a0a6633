// Package problem is the last line of defence for request handling: any
// error a handler returns, and any panic, is logged and turned into a
// 500 application/problem+json response. Raw fault text reaches clients
// only in development mode.
package problem

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aanand-mishra/crud-api/internal/http/middleware"
)

const (
	ContentType   = "application/problem+json"
	Title         = "An unexpected error occurred"
	GenericDetail = "Please contact support."
)

// Details is the error envelope body.
type Details struct {
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// HandlerFunc is an http.HandlerFunc that may fail. A returned error
// means the handler did not write a response.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Envelope converts unhandled faults into problem responses.
type Envelope struct {
	log   *slog.Logger
	debug bool
}

// New returns an Envelope. With debug set, fault descriptions are sent
// to the client in the detail field.
func New(log *slog.Logger, debug bool) *Envelope {
	return &Envelope{log: log, debug: debug}
}

// Handle adapts fn to http.Handler, routing its error into the envelope.
func (e *Envelope) Handle(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			e.write(w, r, err.Error(), slog.String("error", err.Error()))
		}
	})
}

// Recover wraps next and turns panics into problem responses.
// http.ErrAbortHandler is re-panicked so net/http can abort the
// connection as it expects.
func (e *Envelope) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := debug.Stack()
			detail := fmt.Sprintf("panic: %v\n%s", rec, stack)
			e.write(w, r, detail,
				slog.Any("panic", rec),
				slog.String("stack", string(stack)))
		}()
		next.ServeHTTP(w, r)
	})
}

func (e *Envelope) write(w http.ResponseWriter, r *http.Request, detail string, attrs ...any) {
	attrs = append(attrs,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestID(r.Context())))
	e.log.ErrorContext(r.Context(), "unhandled fault", attrs...)

	if middleware.HeaderWritten(w) {
		return
	}

	if !e.debug {
		detail = GenericDetail
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(Details{
		Status:   http.StatusInternalServerError,
		Title:    Title,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}
