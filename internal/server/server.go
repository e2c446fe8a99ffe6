package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/moderation"
)

// Server ties the hub, chat dispatcher and HTTP listener together.
type Server struct {
	cfg    Config
	logger *slog.Logger
	hub    *Hub
	router http.Handler
	http   *http.Server
}

// New builds a server from cfg. The profanity word list is read from fs when
// cfg.ProfanityWordsFile is set.
func New(cfg Config, logger *slog.Logger, fs afero.Fs) (*Server, error) {
	filter, err := moderation.Load(fs, cfg.ProfanityWordsFile)
	if err != nil {
		return nil, fmt.Errorf("load profanity filter: %w", err)
	}
	logger.Info("profanity filter loaded", "words", filter.Size())

	hub := NewHub(
		WithSendBufferSize(cfg.SendBufferSize),
		WithMaxMessageSize(int64(cfg.MaxMessageSize)),
		WithHubLogger(logger),
	)
	dispatcher := chat.NewDispatcher(chat.NewRegistry(), hub, filter, chat.WithLogger(logger))
	hub.SetProtocol(dispatcher)

	handlers := NewHandlers(hub, NewOriginPolicy(cfg.Origins(), logger), logger)
	router := SetupRoutes(handlers, logger)

	return &Server{
		cfg:    cfg,
		logger: logger,
		hub:    hub,
		router: router,
		http:   CreateServer(cfg.Addr(), router),
	}, nil
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the connection hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// StartHub runs the hub loop in the background.
func (s *Server) StartHub() {
	go s.hub.Run()
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	s.StartHub()

	errCh := make(chan error, 1)
	go func() {
		errCh <- StartServer(s.http, s.logger)
	}()

	select {
	case err := <-errCh:
		_ = s.hub.Shutdown(s.cfg.ShutdownTimeout)
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	return s.Shutdown()
}

// Shutdown stops the listener and then the hub.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	httpErr := ShutdownServer(ctx, s.http)
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)
	return errors.Join(httpErr, hubErr)
}

// CreateServer creates the HTTP server with conservative timeouts.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartServer blocks serving srv. A normal shutdown is not an error.
func StartServer(srv *http.Server, logger *slog.Logger) error {
	logger.Info("server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// ShutdownServer gracefully stops srv.
func ShutdownServer(ctx context.Context, srv *http.Server) error {
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
