package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/voidfusion/internal/config"
	"github.com/sushihentaime/voidfusion/internal/postservice"
	"github.com/sushihentaime/voidfusion/internal/poststore"
)

func main() {
	configPath := flag.String("config", ".env", "path to the configuration file")
	source := flag.String("source", "./posts", "directory holding the file-backed posts")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srcBucket, err := poststore.NewFSBucket(*source)
	if err != nil {
		logger.Error("failed to open the source directory", slog.String("source", *source), slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dstBucket, codec, err := poststore.OpenBucket(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("failed to open the target store", slog.String("backend", cfg.StoreBackend), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dstBucket.Close()

	src := poststore.New(srcBucket, poststore.FrontmatterCodec{}, poststore.Options{Consistency: poststore.Strong, Logger: logger})
	dst := poststore.New(dstBucket, codec, poststore.Options{Consistency: poststore.Strong, Logger: logger})

	s, err := migrate(context.Background(), src, dst, logger)
	if err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if s.Failed > 0 {
		os.Exit(1)
	}
}

type summary struct {
	Migrated int
	Skipped  int
	Failed   int
}

// migrate copies every post in src into dst. Slugs already present in dst are left alone.
// A failure on one post is logged and counted; only a failure to list src aborts the run.
func migrate(ctx context.Context, src, dst poststore.Store, logger *slog.Logger) (summary, error) {
	var s summary

	posts, err := src.List(ctx)
	if err != nil {
		return s, err
	}

	for i := range posts {
		p := &posts[i]
		log := logger.With(slog.String("slug", p.Slug))

		_, err := dst.Get(ctx, p.Slug)
		switch {
		case err == nil:
			log.Info("skipped, already exists")
			s.Skipped++
			continue
		case !errors.Is(err, poststore.ErrNotFound):
			log.Error("failed to check target", slog.String("error", err.Error()))
			s.Failed++
			continue
		}

		if err := dst.Set(ctx, p.Slug, p); err != nil {
			log.Error("failed to migrate", slog.String("error", err.Error()))
			s.Failed++
			continue
		}

		if !postservice.ValidSlug(p.Slug) {
			log.Warn("migrated with a non-canonical slug")
		} else {
			log.Info("migrated")
		}
		s.Migrated++
	}

	logger.Info("migration complete",
		slog.Int("total", len(posts)),
		slog.Int("migrated", s.Migrated),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
	)

	return s, nil
}
