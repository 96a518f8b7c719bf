package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"docrag/internal/usecase"
)

// Server exposes the document corpus over HTTP: upload, query, list,
// clear. Transport only; all semantics live in the use cases.
type Server struct {
	router    chi.Router
	addr      string
	ingest    *usecase.IngestUseCase
	answer    *usecase.AnswerUseCase
	documents *usecase.DocumentsUseCase
	logger    *log.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Addr        string
	CORSOrigins []string
}

// New creates a Server with routes and middleware wired.
func New(cfg Config, ingest *usecase.IngestUseCase, answer *usecase.AnswerUseCase, documents *usecase.DocumentsUseCase, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	s := &Server{
		router:    r,
		addr:      cfg.Addr,
		ingest:    ingest,
		answer:    answer,
		documents: documents,
		logger:    logger,
	}

	r.Get("/", s.handleRoot)
	r.Post("/upload", s.handleUpload)
	r.Post("/query", s.handleQuery)
	r.Get("/list-documents", s.handleListDocuments)
	r.Post("/clear", s.handleClear)

	return s
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // uploads embed synchronously
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
