package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server is the HTTP server for the web interface.
type Server struct {
	mux       *http.ServeMux
	handler   *Handlers
	addr      string
	staticDir string
	log       *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(addr string, handler *Handlers, staticDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mux:       http.NewServeMux(),
		handler:   handler,
		addr:      addr,
		staticDir: staticDir,
		log:       logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API routes
	s.mux.HandleFunc("/api/state", s.handler.HandleState)
	s.mux.HandleFunc("/api/message", s.handler.HandleMessage)
	s.mux.HandleFunc("/api/command", s.handler.HandleCommand)
	s.mux.HandleFunc("/api/commands", s.handler.HandleCommands)
	s.mux.HandleFunc("/api/frame", s.handler.HandleFrame)
	s.mux.HandleFunc("/api/export", s.handler.HandleExport)
	s.mux.HandleFunc("/api/download/", s.handler.HandleDownload)
	s.mux.HandleFunc("/api/devices", s.handler.HandleDevices)
	s.mux.HandleFunc("/api/play", s.handler.HandlePlay)

	// WebSocket
	s.mux.HandleFunc("/ws", s.handler.HandleWebSocket)

	// Static files
	if s.staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully. The frame
// loop runs for as long as the server does.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go s.handler.Run(loopCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", s.addr), zap.String("static", s.staticDir))
		fmt.Printf("\n  Modulation visualizer running at http://%s\n\n", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.handler.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
