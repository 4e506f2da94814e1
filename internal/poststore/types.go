package poststore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrNotFound        = errors.New("post not found")
	ErrMalformedRecord = errors.New("malformed post record")
)

// Post is a single blog post. The JSON form is the wire format of the API and of the blob
// backends.
type Post struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Date is an ISO 8601 calendar date (YYYY-MM-DD).
	Date string `json:"date"`
	// Content is stored in Markdown/MDX format.
	Content   string    `json:"content"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type Consistency string

const (
	// Strong reads always hit the bucket. Used by admin paths.
	Strong Consistency = "strong"
	// Eventual reads may be served from a short lived cache. Used by public paths.
	Eventual Consistency = "eventual"
)

// Store persists posts by slug. List order is unspecified.
type Store interface {
	Get(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	Set(ctx context.Context, slug string, p *Post) error
	Delete(ctx context.Context, slug string) error
	Consistency() Consistency
}

// Bucket is a raw key -> bytes backend. Get and Delete return ErrNotFound for missing keys when
// the backend can tell.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

type statBucket interface {
	ModTime(ctx context.Context, key string) (time.Time, error)
}

// Codec converts a post to and from its persisted representation. Unmarshal errors wrap
// ErrMalformedRecord.
type Codec interface {
	Marshal(p *Post) ([]byte, error)
	Unmarshal(slug string, data []byte) (*Post, error)
}

type Options struct {
	Consistency Consistency
	// CacheTTL bounds how stale an eventual read can be. Ignored for strong stores.
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// StoreError wraps any backend failure other than a missing key.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("poststore: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("poststore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure was a timeout or cancellation.
func (e *StoreError) Retryable() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, context.Canceled)
}
