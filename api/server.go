package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/api/handlers"
	"github.com/NethermindEth/chaoschain-reality/metrics"
)

// Server is the HTTP front of the show engine.
type Server struct {
	srv *http.Server
}

// NewRouter builds the gin engine with logging, recovery and every route.
func NewRouter(h *handlers.Handler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	SetupRoutes(r, h, m)
	return r
}

func NewServer(port int, h *handlers.Handler, m *metrics.Metrics) *Server {
	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(h, m),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	log.Printf("API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
