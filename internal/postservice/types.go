package postservice

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sushihentaime/voidfusion/internal/poststore"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("a post with this slug already exists")
)

type Post = poststore.Post

type PostService struct {
	// admin reads are strongly consistent and see private posts.
	admin poststore.Store
	// public reads may lag writes and only see public posts.
	public poststore.Store
	logger *slog.Logger
	now    func() time.Time
}

type CreatePostRequest struct {
	// Slug is optional; it is generated from the title when empty.
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Content     string `json:"content"`
	IsPublic    *bool  `json:"isPublic"`
}

// UpdatePostRequest replaces every mutable field of a post.
type UpdatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Content     string `json:"content"`
	IsPublic    *bool  `json:"isPublic"`
}
