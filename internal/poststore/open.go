package poststore

import (
	"context"
	"fmt"
	"time"

	"github.com/sushihentaime/voidfusion/internal/common"
	"github.com/sushihentaime/voidfusion/internal/config"
)

// OpenBucket connects to the backend selected by STORE_BACKEND and returns it with the codec its
// records are stored in.
func OpenBucket(ctx context.Context, cfg *config.Config) (Bucket, Codec, error) {
	switch cfg.StoreBackend {
	case config.BackendFS:
		b, err := NewFSBucket(cfg.PostsDir)
		if err != nil {
			return nil, nil, err
		}
		return b, FrontmatterCodec{}, nil

	case config.BackendS3:
		b, err := NewS3Bucket(ctx, S3BucketConfig{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, JSONCodec{}, nil

	case config.BackendRedis:
		b, err := NewRedisBucket(ctx, RedisBucketConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.StoreNamespace,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, JSONCodec{}, nil

	case config.BackendPostgres:
		db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to the database: %w", err)
		}

		uri := common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		m, err := common.MigrateDB(cfg.DBMigrations, uri)
		if err != nil {
			common.CloseDB(db)
			return nil, nil, fmt.Errorf("failed to migrate the database: %w", err)
		}
		m.Close()

		return NewPostgresBucket(db, cfg.StoreNamespace), JSONCodec{}, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
