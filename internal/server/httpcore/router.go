package httpcore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yndnr/wirehttp/internal/core/domain"
)

// Handler serves one request. It owns req and res for the duration of the
// call; the connection is closed when it returns.
type Handler func(ctx context.Context, req *Request, res *Response)

// Route identifies a registered (path, method) pair.
type Route struct {
	Path   string
	Method domain.Method
}

func (r Route) String() string {
	return r.Method.String() + " " + r.Path
}

// Router maps paths and methods to handlers. Routes are added but never
// removed or replaced.
type Router struct {
	mu     sync.RWMutex
	routes map[string]map[domain.Method]Handler
}

// NewRouter creates an empty route table.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]map[domain.Method]Handler),
	}
}

// normalizePath adds the leading slash registration and lookup agree on.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// Register adds h for path and m. Registering a taken pair returns
// domain.ErrRouteAlreadyRegistered and leaves the table unchanged.
func (r *Router) Register(path string, m domain.Method, h Handler) error {
	path = normalizePath(path)
	route := Route{Path: path, Method: m}

	if h == nil {
		return domain.ErrNilHandler.WithDetails(route.String())
	}
	if !m.Valid() {
		return domain.ErrUnknownMethod.WithDetails(route.String())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	methods, ok := r.routes[path]
	if !ok {
		methods = make(map[domain.Method]Handler)
		r.routes[path] = methods
	}
	if _, exists := methods[m]; exists {
		return domain.ErrRouteAlreadyRegistered.WithDetails(route.String())
	}
	methods[m] = h
	return nil
}

// Get registers a GET handler.
func (r *Router) Get(path string, h Handler) error {
	return r.Register(path, domain.MethodGet, h)
}

// Post registers a POST handler.
func (r *Router) Post(path string, h Handler) error {
	return r.Register(path, domain.MethodPost, h)
}

// Patch registers a PATCH handler.
func (r *Router) Patch(path string, h Handler) error {
	return r.Register(path, domain.MethodPatch, h)
}

// Delete registers a DELETE handler.
func (r *Router) Delete(path string, h Handler) error {
	return r.Register(path, domain.MethodDelete, h)
}

// Resolve returns the handler for the request's exact path and method.
func (r *Router) Resolve(req *Request) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods, ok := r.routes[req.Path]
	if !ok {
		return nil, false
	}
	h, ok := methods[req.Method]
	return h, ok
}

// Routes returns a snapshot of the table sorted by path, then by method
// in declaration order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.routes))
	for path := range r.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	out := make([]Route, 0, len(paths))
	for _, path := range paths {
		for _, m := range domain.Methods() {
			if _, ok := r.routes[path][m]; ok {
				out = append(out, Route{Path: path, Method: m})
			}
		}
	}
	return out
}
