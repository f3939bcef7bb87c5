// @title Microblog API
// @version 1.0
// @description Multi-user content service: accounts, posts and likes.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/microblog-go/apperror"
	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/config"
	"github.com/user/microblog-go/credentials"
	"github.com/user/microblog-go/db"
	_ "github.com/user/microblog-go/docs" // generated Swagger docs
	"github.com/user/microblog-go/likes"
	"github.com/user/microblog-go/posts"
	"github.com/user/microblog-go/store"
	"github.com/user/microblog-go/users"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// In production the environment is set directly; the .env file is a
	// development convenience.
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env file not found or unreadable")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, "./db/migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	contentStore := store.New(pool, log)
	hasher := credentials.NewHasher(cfg.Hash.BcryptCost)
	tokens := auth.NewTokenService(*cfg.Auth)

	authService := auth.NewService(contentStore, hasher, tokens, log)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(contentStore, hasher, log)
	userHandlers := users.NewHandlers(userService)

	postService := posts.NewService(contentStore, log)
	postHandlers := posts.NewHandlers(postService)

	likeService := likes.NewService(contentStore, log)
	likeHandlers := likes.NewHandlers(likeService)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic safety net beneath Recoverer: anything that slips through is
	// logged and surfaced as a 500 in the standard error shape.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error().Interface("panic", rvr).Str("path", req.URL.Path).Msg("request panicked")
					auth.WriteError(ww, req, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, req)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens))
			r.Get("/me", userHandlers.HandleGetMe())
			r.Get("/me/stats", userHandlers.HandleGetStats())
			r.Put("/", userHandlers.HandleUpdateAccount())
			r.Delete("/", userHandlers.HandleDeleteAccount())
		})
	})

	r.Route("/blog", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		postHandlers.RegisterRoutes(r)
	})

	r.Route("/like", func(r chi.Router) {
		r.Use(auth.Middleware(tokens))
		likeHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until an interrupt or termination signal, then drain in-flight
	// requests before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// requestLogger emits one structured line per request with status, duration
// and the request id assigned by the RequestID middleware.
func requestLogger(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(req.Context())).
				Msg("request")
		})
	}
}
