package poststore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	mdxExt = ".mdx"
	mdExt  = ".md"
)

// FSBucket keeps one file per key in a directory. Writes go to <key>.mdx; legacy <key>.md files are
// read, listed and deleted as well.
type FSBucket struct {
	dir string
}

func NewFSBucket(dir string) (*FSBucket, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create posts directory: %w", err)
	}
	return &FSBucket{dir: dir}, nil
}

func (b *FSBucket) Dir() string {
	return b.dir
}

func (b *FSBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := b.existing(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *FSBucket) ModTime(ctx context.Context, key string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	path, err := b.existing(key)
	if err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().UTC(), nil
}

// Put writes to a temporary file in the same directory and renames it over the target.
func (b *FSBucket) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !validKey(key) {
		return fmt.Errorf("invalid key %q", key)
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, filepath.Join(b.dir, key+mdxExt)); err != nil {
		os.Remove(tmpName)
		return err
	}

	// The .mdx file now shadows any legacy copy.
	if err := os.Remove(filepath.Join(b.dir, key+mdExt)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (b *FSBucket) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !validKey(key) {
		return ErrNotFound
	}

	removed := false
	for _, ext := range []string{mdxExt, mdExt} {
		err := os.Remove(filepath.Join(b.dir, key+ext))
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}

	if !removed {
		return ErrNotFound
	}
	return nil
}

func (b *FSBucket) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != mdxExt && ext != mdExt {
			continue
		}

		key := strings.TrimSuffix(name, ext)
		if !validKey(key) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys, nil
}

func (b *FSBucket) Close() error {
	return nil
}

func (b *FSBucket) existing(key string) (string, error) {
	if !validKey(key) {
		return "", ErrNotFound
	}

	for _, ext := range []string{mdxExt, mdExt} {
		path := filepath.Join(b.dir, key+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	return "", ErrNotFound
}

// validKey rejects keys that could escape a directory or prefix, or name hidden files. Any other
// name, canonical slug or not, is a usable key.
func validKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, ".") && !strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}
