package httpcore

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/wirehttp/internal/core/domain"
	"github.com/yndnr/wirehttp/internal/telemetry/logger"
	"github.com/yndnr/wirehttp/internal/telemetry/metric"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Port = 0
	return cfg
}

// startServer binds to a loopback port, lets setup register routes and
// runs Listen until the test ends.
func startServer(t *testing.T, cfg *Config, setup func(*Server), opts ...Option) *Server {
	t.Helper()

	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	srv, err := Bind(cfg, opts...)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if setup != nil {
		setup(srv)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(context.Background())
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Listen() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Listen() did not return after Shutdown")
		}
	})
	return srv
}

// exchange writes raw to the server and reads until it closes the
// connection. Whatever was read before an error is returned with it.
func exchange(addr, raw string) (string, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := io.WriteString(c, raw); err != nil {
		return "", err
	}
	out, err := io.ReadAll(c)
	return string(out), err
}

func roundTrip(t *testing.T, srv *Server, raw string) string {
	t.Helper()
	out, err := exchange(srv.Addr().String(), raw)
	if err != nil {
		t.Fatalf("exchange(%q) error = %v", raw, err)
	}
	return out
}

func TestServer_EndToEndGet(t *testing.T) {
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterGet("/", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send("ok")
		})
	})

	out := roundTrip(t, srv, "GET / HTTP/1.1\r\nHost: x\r\n\r\n")

	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("response should start with status line, got %q", out)
	}
	if !strings.Contains(out, "Content-Length: 2\r\n") {
		t.Errorf("response missing Content-Length: 2, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nok") {
		t.Errorf("response should end with body, got %q", out)
	}
}

func TestServer_WithRouter(t *testing.T) {
	r := NewRouter()
	if err := r.Post("/submit", func(ctx context.Context, req *Request, res *Response) {
		_ = res.Send("posted")
	}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	srv := startServer(t, testConfig(), nil, WithRouter(r))
	if srv.Router() != r {
		t.Fatal("Router() should return the table passed to WithRouter")
	}

	out := roundTrip(t, srv, "POST /submit HTTP/1.1\r\n\r\n")
	if !strings.HasSuffix(out, "\r\n\r\nposted") {
		t.Errorf("response should end with body, got %q", out)
	}
}

func TestServer_EmptyStream(t *testing.T) {
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterGet("/", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send("still up")
		})
	})

	c, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	_ = c.(*net.TCPConn).CloseWrite()
	_, _ = io.ReadAll(c)
	_ = c.Close()

	out := roundTrip(t, srv, "GET / HTTP/1.1\r\n\r\n")
	if !strings.HasSuffix(out, "still up") {
		t.Errorf("server should keep serving after an empty stream, got %q", out)
	}
}

func TestServer_InvalidRequest(t *testing.T) {
	srv := startServer(t, testConfig(), nil)

	tests := []struct {
		name string
		raw  string
	}{
		{"unknown method", "BREW /pot HTTP/1.1\r\n\r\n"},
		{"missing path", "GET\r\n\r\n"},
		{"relative path", "GET index HTTP/1.1\r\n\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := roundTrip(t, srv, tt.raw)
			if !strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n") {
				t.Errorf("status = %q, want 400", out)
			}
			if !strings.HasSuffix(out, "\r\n\r\nInvalid request") {
				t.Errorf("body should be %q, got %q", "Invalid request", out)
			}
		})
	}
}

func TestServer_UnknownMethodFallback(t *testing.T) {
	cfg := testConfig()
	cfg.UnknownMethod = MethodPolicyFallbackGET

	srv := startServer(t, cfg, func(s *Server) {
		_ = s.RegisterGet("/pot", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send(req.Method.String())
		})
	})

	out := roundTrip(t, srv, "BREW /pot HTTP/1.1\r\n\r\n")
	if !strings.HasSuffix(out, "\r\n\r\nGET") {
		t.Errorf("response = %q, want GET handler", out)
	}
}

func TestServer_Unmatched(t *testing.T) {
	t.Run("fallback 404", func(t *testing.T) {
		srv := startServer(t, testConfig(), nil)
		out := roundTrip(t, srv, "GET /nowhere HTTP/1.1\r\n\r\n")
		if !strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n") {
			t.Errorf("status = %q, want 404", out)
		}
		if !strings.HasSuffix(out, "\r\n\r\nNot Found") {
			t.Errorf("body = %q, want Not Found", out)
		}
	})

	t.Run("silent close", func(t *testing.T) {
		cfg := testConfig()
		cfg.NotFoundFallback = false
		srv := startServer(t, cfg, nil)

		if out := roundTrip(t, srv, "GET /nowhere HTTP/1.1\r\n\r\n"); out != "" {
			t.Errorf("response = %q, want connection closed without bytes", out)
		}
	})
}

func TestServer_HandlerPanic(t *testing.T) {
	reg := metric.NewRegistry()
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterPost("/boom", func(ctx context.Context, req *Request, res *Response) {
			panic("boom")
		})
	}, WithMetrics(reg))

	out := roundTrip(t, srv, "POST /boom HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(out, "HTTP/1.1 500 Server Error\r\n") {
		t.Errorf("status = %q, want 500", out)
	}
	if !strings.HasSuffix(out, "Internal server exception") {
		t.Errorf("body = %q", out)
	}
	if got := testutil.ToFloat64(reg.HandlerPanics); got != 1 {
		t.Errorf("handler_panics_total = %v, want 1", got)
	}
}

func TestServer_HandlerContext(t *testing.T) {
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterPatch("/ctx", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send(logger.RequestIDFromContext(ctx) + "|" + req.ID + "|" +
				strconv.FormatBool(logger.ConnIDFromContext(ctx) != ""))
		})
	})

	out := roundTrip(t, srv, "PATCH /ctx HTTP/1.1\r\n\r\n")
	_, body, _ := strings.Cut(out, "\r\n\r\n")
	parts := strings.Split(body, "|")
	if len(parts) != 3 || parts[0] == "" || parts[0] != parts[1] || parts[2] != "true" {
		t.Errorf("body = %q, want matching non-empty request IDs and a conn ID", body)
	}
}

func TestServer_Render(t *testing.T) {
	views := t.TempDir()
	srv := startServer(t, testConfig(), func(s *Server) {
		s.SetViews(views)
		_ = s.RegisterGet("/page", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Render("missing.html")
		})
	})

	out := roundTrip(t, srv, "GET /page HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n") {
		t.Errorf("status = %q, want 404", out)
	}
	if !strings.Contains(out, "missing.html") {
		t.Errorf("body should name the missing file, got %q", out)
	}
}

func TestServer_DoubleSendStrict(t *testing.T) {
	errCh := make(chan error, 1)
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterDelete("/twice", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send("first")
			errCh <- res.Send("second")
		})
	})

	out := roundTrip(t, srv, "DELETE /twice HTTP/1.1\r\n\r\n")
	if n := strings.Count(out, "HTTP/1.1 "); n != 1 {
		t.Errorf("responses on the wire = %d, want 1 (%q)", n, out)
	}
	if err := <-errCh; !errors.Is(err, domain.ErrAlreadySent) {
		t.Errorf("second Send() error = %v, want %v", err, domain.ErrAlreadySent)
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	srv := startServer(t, testConfig(), func(s *Server) {
		_ = s.RegisterGet("/", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send("ok")
		})
	}, WithMetrics(reg))

	roundTrip(t, srv, "GET / HTTP/1.1\r\n\r\n")
	roundTrip(t, srv, "GET /missing HTTP/1.1\r\n\r\n")
	roundTrip(t, srv, "NOPE\r\n\r\n")

	if got := testutil.ToFloat64(reg.ConnectionsAccepted); got != 3 {
		t.Errorf("connections_accepted_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(reg.Responses.WithLabelValues("200")); got != 1 {
		t.Errorf("responses_total{200} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.UnmatchedRoutes.WithLabelValues("GET")); got != 1 {
		t.Errorf("unmatched_routes_total{GET} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.ParseErrors.WithLabelValues(domain.ErrMalformedRequestLine.Code)); got != 1 {
		t.Errorf("parse_errors_total{malformed} = %v, want 1", got)
	}
}

func TestServer_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1

	reg := metric.NewRegistry()
	srv := startServer(t, cfg, func(s *Server) {
		_ = s.RegisterGet("/", func(ctx context.Context, req *Request, res *Response) {
			_ = res.Send("ok")
		})
	}, WithMetrics(reg))

	first := roundTrip(t, srv, "GET / HTTP/1.1\r\n\r\n")
	// The rejected connection is closed unread, which may surface as a reset.
	second, _ := exchange(srv.Addr().String(), "GET / HTTP/1.1\r\n\r\n")

	if !strings.HasSuffix(first, "ok") {
		t.Errorf("first response = %q, want ok", first)
	}
	if second != "" {
		t.Errorf("second response = %q, want dropped connection", second)
	}
	if got := testutil.ToFloat64(reg.ConnectionsRejected.WithLabelValues("rate_limited")); got != 1 {
		t.Errorf("connections_rejected_total = %v, want 1", got)
	}
}

func TestServer_HandlerPoolBounded(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHandlers = 1

	var running, peak atomic.Int32
	srv := startServer(t, cfg, func(s *Server) {
		_ = s.RegisterGet("/slow", func(ctx context.Context, req *Request, res *Response) {
			n := running.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			_ = res.Send("done")
		})
	})

	done := make(chan string, 3)
	for i := 0; i < 3; i++ {
		go func() {
			out, _ := exchange(srv.Addr().String(), "GET /slow HTTP/1.1\r\n\r\n")
			done <- out
		}()
	}
	for i := 0; i < 3; i++ {
		if out := <-done; !strings.HasSuffix(out, "done") {
			t.Errorf("response = %q, want done", out)
		}
	}
	if got := peak.Load(); got != 1 {
		t.Errorf("peak concurrent handlers = %d, want 1", got)
	}
}

func TestBind_Failure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	_, err = Bind(cfg, WithLogger(logger.Nop()))
	if !errors.Is(err, domain.ErrBindFailed) {
		t.Errorf("Bind() error = %v, want %v", err, domain.ErrBindFailed)
	}
}

func TestServer_ListenAfterShutdown(t *testing.T) {
	srv, err := Bind(testConfig(), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := srv.Listen(context.Background()); !errors.Is(err, domain.ErrServerClosed) {
		t.Errorf("Listen() after Shutdown error = %v, want %v", err, domain.ErrServerClosed)
	}
}

func TestServer_ListenStopsOnContextCancel(t *testing.T) {
	srv, err := Bind(testConfig(), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Listen() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Listen() did not return after cancel")
	}
	_ = srv.Shutdown(context.Background())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Address(); got != "127.0.0.1:6969" {
		t.Errorf("Address() = %q, want %q", got, "127.0.0.1:6969")
	}
	if !cfg.NotFoundFallback || !cfg.StrictResponse {
		t.Error("NotFoundFallback and StrictResponse should default to true")
	}
	if cfg.UnknownMethod != MethodPolicyReject {
		t.Errorf("UnknownMethod = %v, want reject", cfg.UnknownMethod)
	}
	if cfg.ViewsDir != DefaultViewsDir {
		t.Errorf("ViewsDir = %q, want %q", cfg.ViewsDir, DefaultViewsDir)
	}
}
