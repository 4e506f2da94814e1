package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/voidfusion/internal/authservice"
	"github.com/sushihentaime/voidfusion/internal/common"
	"github.com/sushihentaime/voidfusion/internal/config"
	"github.com/sushihentaime/voidfusion/internal/postservice"
	"github.com/sushihentaime/voidfusion/internal/poststore"
)

type application struct {
	config      *config.Config
	logger      *slog.Logger
	postService *postservice.PostService
	gate        *authservice.Gate
	limiters    *common.Cache
}

func main() {
	configPath := flag.String("config", ".env", "path to the configuration file")
	flag.Parse()

	// Load the configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	bucket, codec, err := poststore.OpenBucket(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to open the post store", slog.String("backend", cfg.StoreBackend), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer bucket.Close()

	app := newApplication(cfg, logger, bucket, codec)

	// Start the HTTP server
	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newApplication builds the services over one bucket: admin paths read it directly while public
// paths go through an eventually consistent cache.
func newApplication(cfg *config.Config, logger *slog.Logger, bucket poststore.Bucket, codec poststore.Codec) *application {
	admin := poststore.New(bucket, codec, poststore.Options{
		Consistency: poststore.Strong,
		Logger:      logger,
	})
	public := poststore.New(bucket, codec, poststore.Options{
		Consistency: poststore.Eventual,
		CacheTTL:    cfg.EventualCacheTTL,
		Logger:      logger,
	})

	verifier := authservice.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	allow := authservice.NewAllowList(cfg.AllowedEmails)

	return &application{
		config:      cfg,
		logger:      logger,
		postService: postservice.NewPostService(admin, public, logger),
		gate:        authservice.NewGate(verifier, allow, logger),
		limiters:    common.NewCache(3*time.Minute, time.Minute),
	}
}
