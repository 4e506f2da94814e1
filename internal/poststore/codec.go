package poststore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	untitled   = "Untitled"
	dateLayout = time.DateOnly
)

var frontmatterDelim = []byte("---")

// JSONCodec stores the post as a single JSON object. It is the layout of the blob backends.
type JSONCodec struct{}

type jsonRecord struct {
	Title       *string   `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Content     string    `json:"content"`
	IsPublic    *bool     `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (JSONCodec) Marshal(p *Post) ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal decodes a JSON record. The slug always comes from the key, never from the body.
func (JSONCodec) Unmarshal(slug string, data []byte) (*Post, error) {
	var rec jsonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	p := &Post{
		Slug:        slug,
		Title:       untitled,
		Description: rec.Description,
		Date:        normalizeDate(rec.Date),
		Content:     rec.Content,
		IsPublic:    rec.IsPublic == nil || *rec.IsPublic,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.Title != nil && *rec.Title != "" {
		p.Title = *rec.Title
	}

	return p, nil
}

// FrontmatterCodec stores the post as a text file: a YAML block between two "---" lines, followed
// by the raw body.
type FrontmatterCodec struct{}

type frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	IsPublic    *bool  `yaml:"isPublic,omitempty"`
	CreatedAt   string `yaml:"createdAt,omitempty"`
	UpdatedAt   string `yaml:"updatedAt,omitempty"`
}

func (FrontmatterCodec) Marshal(p *Post) ([]byte, error) {
	isPublic := p.IsPublic
	fm := frontmatter{
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		IsPublic:    &isPublic,
		CreatedAt:   formatTimestamp(p.CreatedAt),
		UpdatedAt:   formatTimestamp(p.UpdatedAt),
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(frontmatterDelim)
	buf.WriteByte('\n')
	buf.Write(header)
	buf.Write(frontmatterDelim)
	buf.WriteByte('\n')
	buf.WriteString(p.Content)

	return buf.Bytes(), nil
}

// Unmarshal parses a frontmatter file. A file with no frontmatter block is all body.
func (FrontmatterCodec) Unmarshal(slug string, data []byte) (*Post, error) {
	header, body := splitFrontmatter(data)

	var fm frontmatter
	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
	}

	createdAt, err := parseTimestamp(fm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: createdAt: %v", ErrMalformedRecord, err)
	}

	updatedAt, err := parseTimestamp(fm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: updatedAt: %v", ErrMalformedRecord, err)
	}

	p := &Post{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Date:        normalizeDate(fm.Date),
		Content:     string(body),
		IsPublic:    fm.IsPublic == nil || *fm.IsPublic,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if p.Title == "" {
		p.Title = untitled
	}

	return p, nil
}

// splitFrontmatter returns the YAML block and the body. The line ending after the closing
// delimiter belongs to neither.
func splitFrontmatter(data []byte) ([]byte, []byte) {
	first, rest, ok := cutLine(data)
	if !ok || !bytes.Equal(first, frontmatterDelim) {
		return nil, data
	}

	offset := 0
	for offset <= len(rest) {
		line, next, more := cutLine(rest[offset:])
		if bytes.Equal(line, frontmatterDelim) {
			return rest[:offset], next
		}
		if !more {
			break
		}
		offset = len(rest) - len(next)
	}

	// An unterminated block is treated as plain body.
	return nil, data
}

// cutLine splits off the first line, dropping its "\n" or "\r\n" terminator. more is false when
// data holds no line terminator.
func cutLine(data []byte) (line, rest []byte, more bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data, nil, false
	}
	return bytes.TrimSuffix(data[:i], []byte("\r")), data[i+1:], true
}

// normalizeDate turns full timestamps, which some editors write into frontmatter, into a plain
// calendar date. Anything unparseable is kept as is.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(dateLayout)
	}
	return s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ParseDate parses a post date for ordering. Unparseable or empty dates sort as the epoch.
func ParseDate(s string) time.Time {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}
