//	@title			Blobgate API
//	@version		1.0
//	@description	Action-keyed media storage endpoint: uploads, filter presets, enhanced images and metadata.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/blobgate/service/internal/action"
	"github.com/blobgate/service/internal/config"
	"github.com/blobgate/service/internal/db"
	"github.com/blobgate/service/internal/metrics"
	appMiddleware "github.com/blobgate/service/internal/middleware"
	"github.com/blobgate/service/internal/response"
	"github.com/blobgate/service/internal/storage"

	_ "github.com/blobgate/service/docs/swagger"
)

// blobStore is what the service needs from a storage driver.
type blobStore interface {
	storage.BlobStore
	storage.Reader
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	observer, err := metrics.NewPrometheus(registry)
	if err != nil {
		log.Fatalf("metrics init failed: %v", err)
	}

	// Wire dependencies: store → action handler
	actions := action.NewHandler(store, storage.NewHTTPFetcher(&http.Client{Timeout: cfg.MaxDuration}), action.Options{
		Production:       cfg.IsProduction(),
		FetchConcurrency: cfg.FetchConcurrency,
		Observer:         observer,
	})

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(appMiddleware.Deadline(cfg.MaxDuration))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{response.AllowOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{response.AllowHeaders},
		// Preflights reach the action endpoint, which answers them itself.
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	// Action endpoint
	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled() {
			r.Use(appMiddleware.RequireToken(cfg.JWTSecret, action.Mutates))
		}
		r.Handle("/api", actions)
	})

	r.Get("/blobs/*", storage.ServeHandler(store))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MaxDuration + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.AppEnv, cfg.StorageDriver)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

// openStore builds the driver selected by STORAGE_DRIVER. The returned func
// releases whatever the driver holds open.
func openStore(ctx context.Context, cfg *config.Config) (blobStore, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case config.DriverS3:
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.StorageRegion,
			Bucket:          cfg.StorageBucket,
			Endpoint:        cfg.StorageEndpoint,
			UseSSL:          cfg.StorageUseSSL,
			AccessKeyID:     cfg.StorageAccessKey,
			SecretAccessKey: cfg.StorageSecretKey,
			PublicBase:      cfg.StoragePublicBase,
			PathStyle:       cfg.StoragePathStyle,
		})
		return s, noop, err
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return storage.NewPostgresStore(pool, cfg.LocalBlobsBase()), pool.Close, nil
	case config.DriverMemory:
		log.Println("storage: using in-memory store, objects are lost on restart")
		return storage.NewMemoryStore(cfg.LocalBlobsBase()), noop, nil
	default:
		s, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		})
		return s, noop, err
	}
}
