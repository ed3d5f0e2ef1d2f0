package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
)

// Server binds one listener and serves a handler on it, over TLS when a
// certificate and key are configured.
//
// Every connection is served on its own goroutine, so a handler that blocks
// never holds up other requests.
type Server struct {
	server       *http.Server
	config       APIConfig
	secure       bool
	listener     net.Listener
	mu           sync.Mutex
	ready        chan struct{}
	readyOnce    sync.Once
	shutdownOnce sync.Once
}

// NewServer creates a server for handler.
//
// The server is created in a stopped state. Call Serve to bind the port and
// begin serving requests.
//
// Returns a *ConfigurationError when only one of the certificate and key is
// configured, or when the key pair cannot be loaded.
func NewServer(handler http.Handler, config APIConfig) (*Server, error) {
	if err := config.CheckTLS(); err != nil {
		return nil, err
	}
	config.applyListenerDefaults()

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	if config.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, &ConfigurationError{
				Field:  "crt_file/key_file",
				Reason: fmt.Sprintf("failed to load key pair: %v", err),
			}
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return &Server{
		server: server,
		config: config,
		secure: config.TLSEnabled(),
		ready:  make(chan struct{}),
	}, nil
}

// Serve binds the configured port and serves until ctx is cancelled, then
// shuts down gracefully within the shutdown timeout and returns nil. Any
// other failure is returned.
func (s *Server) Serve(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanServe)
	defer span.End()

	lc := listenConfig(s.config.ReusePort)
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to bind port %d: %w", s.config.Port, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	port := ln.Addr().(*net.TCPAddr).Port
	span.SetAttributes(telemetry.ServerPort(port), telemetry.ServerSecure(s.secure))

	msg := "open NOT secure socket on port"
	if s.secure {
		msg = "open secure socket on port"
	}
	logger.Info(msg, logger.KeySecure, s.secure, logger.KeyPort, port, logger.KeyName, s.config.Name)

	errChan := make(chan error, 1)
	go func() {
		if s.secure {
			errChan <- s.server.ServeTLS(ln, "", "")
		} else {
			errChan <- s.server.Serve(ln)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("server shutdown signal received", logger.KeyName, s.config.Name)
		// ctx is already done; shutdown gets its own deadline
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		// an interrupt ends serving cleanly even when connections had to be cut
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Warn("server stopped without draining", logger.KeyError, err)
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the server. Connections still open
// when ctx ends are closed forcibly and the shutdown error is returned.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Serve.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			logger.Warn("graceful shutdown timed out, closing connections", logger.KeyError, err)
			if cerr := s.server.Close(); cerr != nil {
				logger.Error("server close error", logger.KeyError, cerr)
			}
		} else {
			logger.Info("server stopped gracefully")
		}
	})
	return shutdownErr
}

// Ready is closed once the port is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Serve has bound the port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Secure reports whether the server serves TLS.
func (s *Server) Secure() bool {
	return s.secure
}
