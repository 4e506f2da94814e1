package poststore

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBucket stores records as jsonb rows of the posts table, scoped by namespace.
type PostgresBucket struct {
	db        *sql.DB
	namespace string
}

func NewPostgresBucket(db *sql.DB, namespace string) *PostgresBucket {
	return &PostgresBucket{db: db, namespace: namespace}
}

func (b *PostgresBucket) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT data FROM posts WHERE namespace = $1 AND slug = $2`

	var data []byte
	err := b.db.QueryRowContext(ctx, query, b.namespace, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

func (b *PostgresBucket) Put(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO posts (namespace, slug, data) VALUES ($1, $2, $3)
		ON CONFLICT (namespace, slug) DO UPDATE SET data = EXCLUDED.data, modified_at = NOW()`

	_, err := b.db.ExecContext(ctx, query, b.namespace, key, string(data))
	return err
}

func (b *PostgresBucket) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM posts WHERE namespace = $1 AND slug = $2`

	result, err := b.db.ExecContext(ctx, query, b.namespace, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (b *PostgresBucket) Keys(ctx context.Context) ([]string, error) {
	query := `SELECT slug FROM posts WHERE namespace = $1`

	rows, err := b.db.QueryContext(ctx, query, b.namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		keys = append(keys, slug)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (b *PostgresBucket) Close() error {
	return b.db.Close()
}
