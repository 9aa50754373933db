// package server hosts the loopback HTTP endpoint for the OAuth callback.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler wraps the stdlib handler interface and adds route registration, so
// a handler can declare the method-qualified patterns it serves.
type Handler interface {
	http.Handler
	Routes() []string // method-qualified [http.ServeMux] patterns, e.g. "GET /callback"
}

// Router registers handlers behind a middleware stack on an [http.ServeMux].
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Middleware wraps handlers in reverse
// order, so the first one added sees the request first.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a plain handler under a method-qualified pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, r.apply(handler))
}

// Handler registers every route a [Handler] declares.
func (r *Router) Handler(handler Handler) {
	wrapped := r.apply(handler)
	for _, pattern := range handler.Routes() {
		r.mux.Handle(pattern, wrapped)
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// RequestLogging logs each request's method, path, and duration.
func RequestLogging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			logger.Debugf("%s %s (%s)", req.Method, req.URL.Path, time.Since(start))
		})
	}
}

// CallbackServer runs a short-lived HTTP server on the loopback interface
// for the duration of one authorization flow.
type CallbackServer struct {
	srv    *http.Server
	logger *log.Logger
}

// NewCallbackServer binds a router to host:port without starting it.
func NewCallbackServer(host string, port int, router *Router, logger *log.Logger) *CallbackServer {
	return &CallbackServer{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called. It runs in the caller's goroutine;
// callers normally start it with go and wait on the handler's result channel.
func (s *CallbackServer) Start() error {
	s.logger.Debugf("callback server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("callback server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
