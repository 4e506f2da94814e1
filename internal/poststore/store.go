package poststore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sushihentaime/voidfusion/internal/common"
	"github.com/sushihentaime/voidfusion/internal/metrics"
)

const DefaultCacheTTL = 30 * time.Second

type store struct {
	bucket      Bucket
	codec       Codec
	consistency Consistency
	cache       *common.Cache
	logger      *slog.Logger
}

// New builds a Store over a bucket. Eventual stores keep a read-through cache of raw records
// for opts.CacheTTL.
func New(b Bucket, c Codec, opts Options) Store {
	s := &store{
		bucket:      b,
		codec:       c,
		consistency: opts.Consistency,
		logger:      opts.Logger,
	}

	if s.consistency == "" {
		s.consistency = Strong
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.consistency == Eventual {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache = common.NewCache(ttl, 2*ttl)
	}

	return s
}

func (s *store) Consistency() Consistency {
	return s.consistency
}

func (s *store) Get(ctx context.Context, slug string) (*Post, error) {
	start := time.Now()

	data, err := s.read(ctx, slug)
	if err != nil {
		s.observe("get", start, err)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get", Key: slug, Err: err}
	}

	p, err := s.decode(ctx, slug, data)
	if err != nil {
		s.observe("get", start, err)
		return nil, &StoreError{Op: "get", Key: slug, Err: err}
	}

	s.observe("get", start, nil)
	return p, nil
}

// List reads every record concurrently. Records that vanish between listing and reading, or that
// fail to decode, are skipped.
func (s *store) List(ctx context.Context) ([]Post, error) {
	start := time.Now()

	keys, err := s.keys(ctx)
	if err != nil {
		s.observe("list", start, err)
		return nil, &StoreError{Op: "list", Err: err}
	}

	found := make([]*Post, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			data, err := s.read(gctx, key)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				return err
			}

			p, err := s.decode(gctx, key, data)
			if err != nil {
				s.logger.Warn("skipping malformed post", slog.String("slug", key), slog.String("error", err.Error()))
				return nil
			}

			found[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.observe("list", start, err)
		return nil, &StoreError{Op: "list", Err: err}
	}

	posts := make([]Post, 0, len(found))
	for _, p := range found {
		if p != nil {
			posts = append(posts, *p)
		}
	}

	s.observe("list", start, nil)
	return posts, nil
}

func (s *store) Set(ctx context.Context, slug string, p *Post) error {
	start := time.Now()

	data, err := s.codec.Marshal(p)
	if err != nil {
		s.observe("set", start, err)
		return &StoreError{Op: "set", Key: slug, Err: err}
	}

	if err := s.bucket.Put(ctx, slug, data); err != nil {
		s.observe("set", start, err)
		return &StoreError{Op: "set", Key: slug, Err: err}
	}

	if s.cache != nil {
		s.cache.Set(common.CacheKeyPost(slug), data)
		s.cache.Delete(common.CacheKeyPostIndex())
	}

	s.observe("set", start, nil)
	return nil
}

func (s *store) Delete(ctx context.Context, slug string) error {
	start := time.Now()

	if s.cache != nil {
		s.cache.Delete(common.CacheKeyPost(slug))
		s.cache.Delete(common.CacheKeyPostIndex())
	}

	err := s.bucket.Delete(ctx, slug)
	s.observe("delete", start, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return &StoreError{Op: "delete", Key: slug, Err: err}
	}

	return nil
}

func (s *store) read(ctx context.Context, slug string) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(common.CacheKeyPost(slug)); ok {
			return v.([]byte), nil
		}
	}

	data, err := s.bucket.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(common.CacheKeyPost(slug), data)
	}

	return data, nil
}

// decode fills in missing timestamps from the bucket's modification time when it can report one.
func (s *store) decode(ctx context.Context, slug string, data []byte) (*Post, error) {
	p, err := s.codec.Unmarshal(slug, data)
	if err != nil {
		return nil, err
	}

	if sb, ok := s.bucket.(statBucket); ok && (p.CreatedAt.IsZero() || p.UpdatedAt.IsZero()) {
		modTime, err := sb.ModTime(ctx, slug)
		if err == nil {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = modTime
			}
			if p.UpdatedAt.IsZero() {
				p.UpdatedAt = modTime
			}
		}
	}

	return p, nil
}

func (s *store) keys(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(common.CacheKeyPostIndex()); ok {
			return v.([]string), nil
		}
	}

	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(common.CacheKeyPostIndex(), keys)
	}

	return keys, nil
}

func (s *store) observe(op string, start time.Time, err error) {
	result := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}

	metrics.RecordStoreOperation(op, string(s.consistency), result, time.Since(start))
}
