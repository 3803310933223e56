package timewatch

import (
	"context"
	"net"
	"time"

	fiber "github.com/gofiber/fiber/v3"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/monitor"
)

// ManagementHTTPOption configures the management HTTP server.
type ManagementHTTPOption func(*ManagementHTTPServer)

// ManagementHTTPServer exposes the registered statistics monitors over HTTP:
// the monitor names, each monitor's current attribute snapshot and its
// configured thresholds.
type ManagementHTTPServer struct {
	addr         string
	app          *fiber.App
	readTimeout  time.Duration
	writeTimeout time.Duration
	authFunc     func(fiber.Ctx) error
	ln           net.Listener
	started      bool
}

// WithMgmtAuth sets an auth function (return error to block).
func WithMgmtAuth(fn func(fiber.Ctx) error) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.authFunc = fn }
}

// WithMgmtReadTimeout sets read timeout.
func WithMgmtReadTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.readTimeout = d }
}

// WithMgmtWriteTimeout sets write timeout.
func WithMgmtWriteTimeout(d time.Duration) ManagementHTTPOption {
	return func(s *ManagementHTTPServer) { s.writeTimeout = d }
}

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 5 * time.Second
)

// NewManagementHTTPServer builds an HTTP server holder (lazy start).
func NewManagementHTTPServer(addr string, opts ...ManagementHTTPOption) *ManagementHTTPServer {
	app := fiber.New(fiber.Config{
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	srv := &ManagementHTTPServer{
		addr:         addr,
		app:          app,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts { // apply options
		opt(srv)
	}

	return srv
}

// Start launches the listener (idempotent). Caller provides the registry the
// routes read from.
func (s *ManagementHTTPServer) Start(ctx context.Context, registry *monitor.Registry) error {
	if s.started { // idempotent
		return nil
	}

	s.mountRoutes(registry)

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "mgmt listen")
	}

	s.ln = ln

	go func() { // serve in background (optional server errors are ignored intentionally)
		err = s.app.Listener(ln)
		if err != nil { // optional server; log hook could be added in future
			_ = err
		}
	}()

	s.started = true

	return nil
}

// Address returns the bound address (useful when passing ":0" for ephemeral port). Empty if not started yet.
func (s *ManagementHTTPServer) Address() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *ManagementHTTPServer) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- s.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrMgmtHTTPShutdownTimeout
	case err := <-ch:
		return err
	}
}

// wrapAuth returns an auth-wrapped handler if authFunc provided.
func (s *ManagementHTTPServer) wrapAuth(handler fiber.Handler) fiber.Handler { //nolint:ireturn
	if s.authFunc == nil {
		return handler
	}

	return func(fiberCtx fiber.Ctx) error {
		authErr := s.authFunc(fiberCtx)
		if authErr != nil {
			return authErr
		}

		return handler(fiberCtx)
	}
}

// mountRoutes registers endpoints onto the Fiber app.
func (s *ManagementHTTPServer) mountRoutes(registry *monitor.Registry) {
	useAuth := s.wrapAuth

	s.app.Get("/healthz", useAuth(func(fiberCtx fiber.Ctx) error { return fiberCtx.SendString("ok") }))

	s.app.Get("/monitors", useAuth(func(fiberCtx fiber.Ctx) error {
		return fiberCtx.JSON(fiber.Map{"monitors": registry.Names()})
	}))

	s.app.Get("/monitors/:name/attributes", useAuth(func(fiberCtx fiber.Ctx) error {
		m, ok := registry.Lookup(fiberCtx.Params("name"))
		if !ok {
			return fiberCtx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "monitor not found"})
		}

		return fiberCtx.JSON(m.Attributes())
	}))

	s.app.Get("/monitors/:name/thresholds", useAuth(func(fiberCtx fiber.Ctx) error {
		m, ok := registry.Lookup(fiberCtx.Params("name"))
		if !ok {
			return fiberCtx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "monitor not found"})
		}

		ranges := m.Ranges()

		specs := make([]string, 0, len(ranges))
		for _, r := range ranges {
			specs = append(specs, r.String())
		}

		return fiberCtx.JSON(fiber.Map{"thresholds": specs})
	}))
}
