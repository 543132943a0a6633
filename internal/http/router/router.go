// Package router wires handlers, the auth gate and middleware into one
// http.Handler.
//
// Route table:
//
//	POST   /auth/login          → issue a token (public)
//	GET    /healthz             → liveness (public)
//	GET    /metrics             → Prometheus scrape (public)
//	GET    /students            → list           (bearer token)
//	GET    /students/{id}       → get one        (bearer token)
//	POST   /students            → create         (bearer token)
//	PUT    /students/{id}       → replace        (bearer token)
//	DELETE /students/{id}       → delete         (bearer token)
//	...and the same five routes under /products.
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/crud-api/internal/http/handlers/login"
	"github.com/aanand-mishra/crud-api/internal/http/middleware"
	"github.com/aanand-mishra/crud-api/internal/http/problem"
	"github.com/aanand-mishra/crud-api/internal/utils/response"
)

// Gate is the auth capability the router needs.
type Gate interface {
	login.Authenticator
	Require(next http.Handler) http.Handler
}

// Resource is one CRUD handler set; resource.Handler satisfies it.
type Resource interface {
	Name() string
	List(w http.ResponseWriter, r *http.Request) error
	Get(w http.ResponseWriter, r *http.Request) error
	Create(w http.ResponseWriter, r *http.Request) error
	Update(w http.ResponseWriter, r *http.Request) error
	Delete(w http.ResponseWriter, r *http.Request) error
}

// Options bundles the collaborators New needs.
type Options struct {
	Logger    *slog.Logger
	Debug     bool
	Gate      Gate
	Metrics   *middleware.Metrics
	Resources []Resource
}

// New builds the full request pipeline:
//
//	request id → access log → metrics → problem recovery → mux → [auth] → handler
func New(opts Options) http.Handler {
	env := problem.New(opts.Logger, opts.Debug)
	mux := http.NewServeMux()

	mux.Handle("POST /auth/login", env.Handle(login.New(opts.Gate)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	protect := opts.Gate.Require
	for _, res := range opts.Resources {
		base := "/" + res.Name()
		mux.Handle("GET "+base, protect(env.Handle(res.List)))
		mux.Handle("POST "+base, protect(env.Handle(res.Create)))
		mux.Handle("GET "+base+"/{id}", protect(env.Handle(res.Get)))
		mux.Handle("PUT "+base+"/{id}", protect(env.Handle(res.Update)))
		mux.Handle("DELETE "+base+"/{id}", protect(env.Handle(res.Delete)))
	}

	mws := []func(http.Handler) http.Handler{
		middleware.WithRequestID,
		middleware.AccessLog(opts.Logger),
	}
	if opts.Metrics != nil {
		mws = append(mws, opts.Metrics.Instrument)
	}
	mws = append(mws, env.Recover)

	return middleware.Chain(mux, mws...)
}
