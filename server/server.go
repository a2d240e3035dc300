package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"melodex/config"
	"melodex/core/auth"
	"melodex/core/catalog"
	"melodex/core/playlist"
	"melodex/db"
	"melodex/logger"
	"melodex/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// NewRouter wires all routes onto a gorilla/mux router.
func NewRouter(h *APIHandler, devRoutes bool) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, requestIDMiddleware)

	router.HandleFunc("/", h.HealthHandler).Methods(http.MethodGet)

	// Auth
	router.HandleFunc("/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/token", h.TokenHandler).Methods(http.MethodPost)
	router.HandleFunc("/users/me", h.AuthMiddleware(h.MeHandler)).Methods(http.MethodGet)

	// Catalog. /tracks/search must be registered before /tracks/{id}.
	router.HandleFunc("/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/tracks/search", h.SearchTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)

	// Playlists
	router.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/playlists", h.AuthMiddleware(h.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.RenamePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/playlists/{id}/tracks/{track_id}", h.AuthMiddleware(h.AddTrackToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id}/tracks/{track_id}", h.AuthMiddleware(h.RemoveTrackFromPlaylistHandler)).Methods(http.MethodDelete)

	if devRoutes {
		router.HandleFunc("/seed-db", h.SeedHandler).Methods(http.MethodPost)
	}

	return router
}

// corsMiddleware sets permissive CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags each response with a request id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger.Debug("Request received",
			logger.String("requestId", requestID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path))

		next.ServeHTTP(w, r)
	})
}

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	conn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer conn.Close()

	driver, _ := db.DSN(cfg)
	if err := db.Init(conn, driver); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}

	userRepo := repository.NewUserRepository(conn)
	catalogRepo := repository.NewCatalogRepository(conn)
	playlistRepo := repository.NewPlaylistRepository(conn)

	catalogSvc := catalog.NewService(catalogRepo)
	playlistSvc := playlist.NewService(playlistRepo, catalogRepo)
	seeder := catalog.NewSeeder(catalogRepo, cfg.SeedDataPath)
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMins)*time.Minute)

	apiHandler := NewAPIHandler(userRepo, catalogSvc, playlistSvc, seeder, tokens, cfg)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(apiHandler, cfg.DevRoutes),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
