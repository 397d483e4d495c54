package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/proxy/middleware"
	"mercator-hq/loupe/pkg/telemetry/health"
	"mercator-hq/loupe/pkg/telemetry/logging"
)

// ShutdownFunc releases a component during shutdown.
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// Server runs the public proxy listener and the optional admin listener.
type Server struct {
	config  *config.Config
	handler http.Handler
	admin   http.Handler
	health  *health.Checker
	logger  *logging.Logger
	hooks   []shutdownHook

	publicServer   *http.Server
	adminServer    *http.Server
	publicListener net.Listener
	adminListener  net.Listener

	shutdownOnce sync.Once
	shutdownErr  error
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithAdminHandler serves h on the admin listener. It is ignored when no
// admin address is configured.
func WithAdminHandler(h http.Handler) Option {
	return func(s *Server) {
		s.admin = h
	}
}

// WithHealth marks c as draining when shutdown begins so readiness fails
// while in-flight requests finish.
func WithHealth(c *health.Checker) Option {
	return func(s *Server) {
		s.health = c
	}
}

// OnShutdown registers fn to run after both listeners have stopped. Hooks run
// in registration order.
func OnShutdown(name string, fn ShutdownFunc) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, shutdownHook{name: name, fn: fn})
	}
}

// New creates a server that forwards every public request to handler. The
// handler is wrapped with recovery, request id and access log middleware.
func New(cfg *config.Config, handler http.Handler, logger *logging.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = middleware.Chain(handler,
		middleware.RecoveryMiddleware(logger),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
	)

	return s
}

// Listen opens the public listener and, when configured, the admin
// listener.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publicListener != nil {
		return fmt.Errorf("server is already listening")
	}

	proxyCfg := s.config.Proxy
	ln, err := Listen(proxyCfg.HostAddress, proxyCfg.ProxyProtocol, proxyCfg.ReadTimeout)
	if err != nil {
		return err
	}

	if addr := s.config.Telemetry.AdminAddress; addr != "" && s.admin != nil {
		adminLn, err := Listen(addr, false, 0)
		if err != nil {
			return multierr.Append(err, ln.Close())
		}
		s.adminListener = adminLn
	}

	s.publicListener = ln
	return nil
}

// Addr returns the public listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.publicListener == nil {
		return nil
	}
	return s.publicListener.Addr()
}

// AdminAddr returns the admin listener address, or nil when it is disabled.
func (s *Server) AdminAddr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adminListener == nil {
		return nil
	}
	return s.adminListener.Addr()
}

// Start listens and serves until ctx is cancelled or a listener fails, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve serves on listeners opened by Listen. It blocks until ctx is
// cancelled or a listener fails and always runs Shutdown before returning.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	if s.publicListener == nil {
		s.mu.Unlock()
		return fmt.Errorf("server is not listening")
	}
	s.isRunning = true

	proxyCfg := s.config.Proxy
	s.publicServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    proxyCfg.ReadTimeout,
		WriteTimeout:   proxyCfg.WriteTimeout,
		IdleTimeout:    proxyCfg.IdleTimeout,
		MaxHeaderBytes: proxyCfg.MaxHeaderBytes,
	}
	if s.adminListener != nil {
		s.adminServer = &http.Server{
			Handler:     s.admin,
			ReadTimeout: proxyCfg.ReadTimeout,
			IdleTimeout: proxyCfg.IdleTimeout,
		}
	}
	publicLn, adminLn := s.publicListener, s.adminListener
	s.mu.Unlock()

	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("proxy listening",
			"address", publicLn.Addr().String(),
			"destination", proxyCfg.DestinationURL,
			"proxy_protocol", proxyCfg.ProxyProtocol,
			"max_header_size", humanize.IBytes(uint64(proxyCfg.MaxHeaderBytes)),
		)
		if err := s.publicServer.Serve(publicLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("proxy listener: %w", err)
		}
	}()

	if adminLn != nil {
		go func() {
			s.logger.Info("admin listening", "address", adminLn.Addr().String())
			if err := s.adminServer.Serve(adminLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("admin listener: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	case serveErr = <-errCh:
		s.logger.Error("listener failed, shutting down", "error", serveErr)
	}

	return multierr.Append(serveErr, s.Shutdown(context.Background()))
}

// Shutdown stops accepting connections, waits up to the configured shutdown
// timeout for in-flight requests and then runs the shutdown hooks. Errors
// from every step are combined. Later calls return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.shutdown(ctx)
	})
	return s.shutdownErr
}

func (s *Server) shutdown(ctx context.Context) error {
	timeout := s.config.Proxy.ShutdownTimeout
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

	if s.health != nil {
		s.health.SetDraining()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.mu.Lock()
	publicServer, adminServer := s.publicServer, s.adminServer
	publicLn, adminLn := s.publicListener, s.adminListener
	s.mu.Unlock()

	var err error
	if publicServer != nil {
		if e := publicServer.Shutdown(shutdownCtx); e != nil {
			err = multierr.Append(err, fmt.Errorf("proxy listener shutdown: %w", e))
		}
	} else if publicLn != nil {
		err = multierr.Append(err, ignoreClosed(publicLn.Close()))
	}

	if adminServer != nil {
		if e := adminServer.Shutdown(shutdownCtx); e != nil {
			err = multierr.Append(err, fmt.Errorf("admin listener shutdown: %w", e))
		}
	} else if adminLn != nil {
		err = multierr.Append(err, ignoreClosed(adminLn.Close()))
	}

	for _, hook := range s.hooks {
		if e := hook.fn(shutdownCtx); e != nil {
			s.logger.Error("shutdown step failed", "component", hook.name, "error", e)
			err = multierr.Append(err, fmt.Errorf("%s: %w", hook.name, e))
		}
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("proxy server stopped")
	return err
}

// IsRunning reports whether Serve is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the public handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
