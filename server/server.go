package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/theoremus-urban-solutions/siri-journey-planner/config"
)

// Server owns the HTTP listener.
type Server struct {
	httpServer *http.Server
}

// New wires the API routes into a server for the given config.
func New(cfg config.ServerConfig, api *API) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", api.handleHealth)

	r.Route("/api/bus", func(r chi.Router) {
		r.Get("/stops", api.handleStops)
		r.Get("/lines", api.handleLines)
		r.Get("/stop/{id}/arrivals", api.handleArrivals)
		r.Get("/vehicles", api.handleVehicles)
		r.Post("/routes", api.handleRoutes)
	})

	r.Route("/api/user/{id}", func(r chi.Router) {
		r.Get("/stop", api.handleGetUserStop)
		r.Put("/stop", api.handlePutUserStop)
		r.Get("/favorites", api.handleListFavorites)
		r.Put("/favorites/{stopId}", api.handleAddFavorite)
		r.Delete("/favorites/{stopId}", api.handleRemoveFavorite)
		r.Get("/searches", api.handleRecentSearches)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.httpServer.Addr)
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests.
func (s *Server) WaitForShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
		return
	}
	log.Printf("server shut down successfully")
}
