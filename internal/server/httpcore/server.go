package httpcore

import (
	"bufio"
	"context"
	"errors"
	"net"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/server/admission"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
	"github.com/yndnr/wirehttp/internal/telemetry/metric"
)

// Config holds the connection supervisor configuration.
type Config struct {
	// Host and Port form the listen address.
	Host string
	Port int
	// ViewsDir is the root Render resolves files against.
	ViewsDir string
	// NotFoundFallback answers unmatched requests with 404 "Not Found".
	// When false the connection is closed without a response.
	NotFoundFallback bool
	// UnknownMethod decides how unsupported method tokens are parsed.
	UnknownMethod MethodPolicy
	// StrictResponse makes a second send on a Response fail.
	StrictResponse bool
	// MaxConns caps simultaneously open connections (0 = unlimited).
	MaxConns int
	// MaxHandlers caps concurrently running handlers (0 = unlimited).
	MaxHandlers int
	// RateLimit is the accepted connections per second per remote host
	// (0 = unlimited).
	RateLimit int
	// MaxHeaderBytes and MaxLineBytes bound the request head (0 = unlimited).
	MaxHeaderBytes int
	MaxLineBytes   int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:             "127.0.0.1",
		Port:             6969,
		ViewsDir:         DefaultViewsDir,
		NotFoundFallback: true,
		UnknownMethod:    MethodPolicyReject,
		StrictResponse:   true,
		MaxHeaderBytes:   64 * 1024,
		MaxLineBytes:     8 * 1024,
	}
}

// Address returns the host:port listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records server activity in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = reg
	}
}

// WithRouter serves routes from an existing table.
func WithRouter(r *Router) Option {
	return func(s *Server) {
		if r != nil {
			s.router = r
		}
	}
}

const (
	limiterPruneInterval = time.Minute
	limiterIdleTimeout   = 5 * time.Minute
	maxAcceptBackoff     = time.Second
)

// Server accepts connections and serves one request on each.
type Server struct {
	cfg     Config
	router  *Router
	logger  logger.Logger
	metrics *metric.Registry
	limiter *admission.RateLimiter
	pool    *admission.Pool
	ln      net.Listener

	mu        sync.Mutex
	views     string
	listening bool
	cancel    context.CancelFunc

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

// Bind opens the listening socket. It fails with domain.ErrBindFailed
// if the address cannot be bound.
func Bind(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:     *cfg,
		router:  NewRouter(),
		logger:  logger.Default(),
		views:   cfg.ViewsDir,
		limiter: admission.NewRateLimiter(cfg.RateLimit),
		pool:    admission.NewPool(cfg.MaxHandlers),
	}
	if s.views == "" {
		s.views = DefaultViewsDir
	}
	for _, opt := range opts {
		opt(s)
	}

	addr := cfg.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, domain.ErrBindFailed.WithDetails(addr).WithCause(err)
	}
	s.ln = admission.LimitListener(ln, cfg.MaxConns)

	if err := s.metrics.GaugeFunc("handlers_in_flight", "Handlers currently running", func() float64 {
		return float64(s.pool.InFlight())
	}); err != nil {
		s.logger.Warn("failed to register handler gauge", "error", err)
	}

	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Router returns the route table.
func (s *Server) Router() *Router {
	return s.router
}

// RegisterGet registers a GET handler.
func (s *Server) RegisterGet(path string, h Handler) error {
	return s.router.Get(path, h)
}

// RegisterPost registers a POST handler.
func (s *Server) RegisterPost(path string, h Handler) error {
	return s.router.Post(path, h)
}

// RegisterPatch registers a PATCH handler.
func (s *Server) RegisterPatch(path string, h Handler) error {
	return s.router.Patch(path, h)
}

// RegisterDelete registers a DELETE handler.
func (s *Server) RegisterDelete(path string, h Handler) error {
	return s.router.Delete(path, h)
}

// SetViews sets the directory handed to every Response for Render.
// Call it before Listen.
func (s *Server) SetViews(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = dir
}

func (s *Server) viewsDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views
}

// Listen runs the accept loop until Shutdown is called or ctx is done,
// then returns nil. Accept errors are logged and retried with backoff.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return domain.ErrServerClosed
	}
	if s.listening {
		s.mu.Unlock()
		return domain.ErrServerClosed.WithDetails("already listening")
	}
	s.listening = true
	// Connections outlive the accept loop until Shutdown cancels them.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancelConns
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { _ = s.closeListener() })
	defer stop()

	s.logger.Info("listening", "addr", s.Addr().String())
	for _, route := range s.router.Routes() {
		s.logger.Info("route registered", "method", route.Method.String(), "path", route.Path)
	}

	if s.limiter != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.pruneLimiter(ctx)
		}()
	}

	var backoff time.Duration
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.metrics.AcceptError()

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.logger.Error("accept failed", "error", err, "retry_in", backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(connCtx, c)
		}()
	}
}

func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.limiter.Prune(limiterIdleTimeout); n > 0 {
				s.logger.Debug("pruned idle rate limiters", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// conn is one accepted connection split into its read and write halves.
type conn struct {
	br    *bufio.Reader
	out   *writeHalf
	taken atomic.Bool
}

// closerFunc adapts a function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newConn wraps c. onClose runs once, when the connection is closed.
func newConn(c net.Conn, onClose func()) *conn {
	closer := closerFunc(func() error {
		if onClose != nil {
			onClose()
		}
		return c.Close()
	})
	return &conn{
		br:  bufio.NewReader(c),
		out: newWriteHalf(c, closer),
	}
}

// takeWriteHalf hands out the write half once; later calls get nil.
func (c *conn) takeWriteHalf() *writeHalf {
	if !c.taken.CompareAndSwap(false, true) {
		return nil
	}
	return c.out
}

func (c *conn) Close() error {
	return c.out.Close()
}

func (s *Server) parseOptions() ParseOptions {
	return ParseOptions{
		UnknownMethod:  s.cfg.UnknownMethod,
		MaxLineBytes:   s.cfg.MaxLineBytes,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}
}

func (s *Server) newResponse(ctx context.Context, c *conn) *Response {
	res := newResponse(c.takeWriteHalf())
	res.views = s.viewsDir()
	res.strict = s.cfg.StrictResponse
	res.logger = logger.L(ctx)
	res.onSent = s.metrics.Response
	return res
}

// reply sends a fixed response that bypasses the router and closes c.
func (s *Server) reply(ctx context.Context, c *conn, status domain.StatusCode, body string) {
	defer c.Close()

	res := s.newResponse(ctx, c)
	res.SetStatus(status)
	if err := res.Send(body); err != nil {
		logger.L(ctx).Debug("failed to send response", "status", status.Code(), "error", err)
	}
}

func (s *Server) serveConn(ctx context.Context, nc net.Conn) {
	s.metrics.ConnOpened()

	if !s.limiter.Allow(admission.RemoteHost(nc.RemoteAddr())) {
		s.metrics.ConnRejected("rate_limited")
		s.metrics.ConnClosed()
		s.logger.Debug("connection rate limited", "remote", nc.RemoteAddr().String())
		_ = nc.Close()
		return
	}

	c := newConn(nc, s.metrics.ConnClosed)
	ctx = logger.WithLogger(ctx, s.logger)
	ctx = logger.WithConnID(ctx, ulid.Make().String())

	req, err := ReadRequest(c.br, s.parseOptions())
	if err != nil {
		s.metrics.ParseError(domain.GetErrorCode(err))
		if errors.Is(err, domain.ErrEmptyRequest) {
			logger.L(ctx).Debug("peer closed before sending a request", "remote", nc.RemoteAddr().String())
		} else {
			logger.L(ctx).Warn("invalid request", "remote", nc.RemoteAddr().String(), "error", err)
		}
		s.reply(ctx, c, domain.StatusBadRequest, "Invalid request")
		return
	}

	req.RemoteAddr = nc.RemoteAddr().String()
	req.ID = ulid.Make().String()
	ctx = logger.WithRequestID(ctx, req.ID)
	log := logger.L(ctx)
	log.Debug("request parsed",
		"method", req.Method.String(),
		"path", req.Path,
		"size", req.Size,
		logger.Headers("headers", req.Headers),
	)

	h, ok := s.router.Resolve(req)
	if !ok {
		s.metrics.UnmatchedRoute(req.Method.String())
		if s.cfg.NotFoundFallback {
			log.Info("no matching route", "method", req.Method.String(), "path", req.Path)
			s.reply(ctx, c, domain.StatusNotFound, "Not Found")
			return
		}
		log.Debug("no matching route, closing connection", "error",
			domain.ErrNoMatchingRoute.WithDetails(req.Method.String()+" "+req.Path))
		_ = c.Close()
		return
	}

	res := s.newResponse(ctx, c)
	s.wg.Add(1)
	err = s.pool.Go(ctx, func() {
		defer s.wg.Done()
		defer c.Close()
		s.runHandler(ctx, h, req, res)
	})
	if err != nil {
		s.wg.Done()
		log.Warn("handler not started", "error", err)
		_ = c.Close()
	}
}

func (s *Server) runHandler(ctx context.Context, h Handler, req *Request, res *Response) {
	log := logger.L(ctx)
	start := time.Now()

	defer func() {
		s.metrics.ObserveHandler(req.Method.String(), time.Since(start))
		if p := recover(); p != nil {
			s.metrics.HandlerPanic()
			log.Error("handler panicked", "panic", p, "stack", string(debug.Stack()))
			if !res.Sent() {
				res.SetStatus(domain.StatusServerError)
				_ = res.Send(internalErrorBody)
			}
		}
	}()

	log.Info("called handler", "method", req.Method.String(), "path", req.Path)
	h(ctx, req, res)
}

func (s *Server) closeListener() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.ln.Close()
	})
	return s.closeErr
}

// Shutdown stops accepting connections and waits for open connections and
// running handlers to finish. If ctx ends first, handler contexts are
// canceled and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	err := s.closeListener()
	cancel := s.cancel
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return ctx.Err()
	}

	if cancel != nil {
		cancel()
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
