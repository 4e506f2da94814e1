package postservice

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/sushihentaime/voidfusion/internal/common"
	"github.com/sushihentaime/voidfusion/internal/poststore"
)

// NewPostService wires the service to two views of the same bucket: a strongly consistent store
// for the admin surface and an eventually consistent one for public reads.
func NewPostService(admin, public poststore.Store, logger *slog.Logger) *PostService {
	return &PostService{
		admin:  admin,
		public: public,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost stores a new post. The slug is derived from the title unless one is supplied, and
// creation fails with ErrDuplicateSlug if a post already exists under it.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	content := sanitizeMarkdown(req.Content)

	slug := req.Slug
	if slug == "" {
		slug = GenerateSlug(req.Title)
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateSlug(v, slug, req.Slug != "")
	validateDescription(v, req.Description)
	validateDate(v, req.Date)
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	_, err := s.admin.Get(ctx, slug)
	switch {
	case err == nil:
		return nil, ErrDuplicateSlug
	case !errors.Is(err, poststore.ErrNotFound):
		return nil, err
	}

	now := s.now()
	date := req.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}

	p := &Post{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Content:     content,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.admin.Set(ctx, slug, p); err != nil {
		return nil, err
	}

	s.logger.Info("post created", slog.String("slug", slug), slog.Bool("public", p.IsPublic))
	return p, nil
}

// GetPost returns any post, public or not, with read-your-writes consistency.
func (s *PostService) GetPost(ctx context.Context, slug string) (*Post, error) {
	return s.get(ctx, s.admin, slug)
}

// GetPublicPost returns a public post. Private posts are reported as missing.
func (s *PostService) GetPublicPost(ctx context.Context, slug string) (*Post, error) {
	p, err := s.get(ctx, s.public, slug)
	if err != nil {
		return nil, err
	}

	if !p.IsPublic {
		return nil, ErrRecordNotFound
	}

	return p, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.admin.List(ctx)
	if err != nil {
		return nil, err
	}

	sortPosts(posts)
	return posts, nil
}

// ListPublicPosts returns public posts, newest first.
func (s *PostService) ListPublicPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.public.List(ctx)
	if err != nil {
		return nil, err
	}

	posts = slices.DeleteFunc(posts, func(p Post) bool { return !p.IsPublic })
	sortPosts(posts)
	return posts, nil
}

// UpdatePost replaces the mutable fields of an existing post. An omitted date keeps the stored
// one; createdAt is always preserved.
func (s *PostService) UpdatePost(ctx context.Context, slug string, req *UpdatePostRequest) (*Post, error) {
	content := sanitizeMarkdown(req.Content)

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateDescription(v, req.Description)
	validateDate(v, req.Date)
	validateContent(v, content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	existing, err := s.get(ctx, s.admin, slug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := req.Date
	if date == "" {
		date = existing.Date
	}
	if date == "" {
		date = now.Format(time.DateOnly)
	}

	p := &Post{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Content:     content,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   now,
	}

	if err := s.admin.Set(ctx, slug, p); err != nil {
		return nil, err
	}

	s.logger.Info("post updated", slog.String("slug", slug))
	return p, nil
}

// DeletePost removes a post permanently. Deleting a missing post returns ErrRecordNotFound.
func (s *PostService) DeletePost(ctx context.Context, slug string) error {
	if _, err := s.get(ctx, s.admin, slug); err != nil {
		return err
	}

	if err := s.admin.Delete(ctx, slug); err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	s.logger.Info("post deleted", slog.String("slug", slug))
	return nil
}

// get looks a post up by the key it is stored under. Only new posts must have canonical slugs;
// files added by hand keep whatever name they were given and stay reachable under it.
func (s *PostService) get(ctx context.Context, store poststore.Store, slug string) (*Post, error) {
	p, err := store.Get(ctx, slug)
	if err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return p, nil
}

// sortPosts orders by date descending. Unparseable dates sort as the epoch and ties break on
// slug ascending.
func sortPosts(posts []Post) {
	slices.SortFunc(posts, func(a, b Post) int {
		if c := poststore.ParseDate(b.Date).Compare(poststore.ParseDate(a.Date)); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
}
