package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps object bytes in the blobs table. Objects are served back
// by ServeHandler, so publicBase must point at this service's /blobs route.
type PostgresStore struct {
	db         *pgxpool.Pool
	publicBase string
}

// NewPostgresStore creates a PostgresStore on an already migrated pool.
func NewPostgresStore(db *pgxpool.Pool, publicBase string) *PostgresStore {
	return &PostgresStore{db: db, publicBase: strings.TrimRight(publicBase, "/")}
}

// Put inserts or replaces the object at pathname.
func (s *PostgresStore) Put(ctx context.Context, pathname string, body io.Reader, _ int64, opts PutOptions) (*Blob, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	key := pathname
	if opts.AddRandomSuffix {
		key = WithRandomSuffix(pathname)
	}

	b := &Blob{Pathname: key, ContentType: opts.ContentType}
	err = s.db.QueryRow(ctx,
		`INSERT INTO blobs (pathname, content, content_type, size)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (pathname) DO UPDATE
		 SET content = EXCLUDED.content, content_type = EXCLUDED.content_type,
		     size = EXCLUDED.size, uploaded_at = NOW()
		 RETURNING size, uploaded_at`,
		key, data, opts.ContentType, len(data),
	).Scan(&b.Size, &b.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert blob %q: %w", key, err)
	}
	s.fillURLs(b)
	return b, nil
}

// List returns objects under opts.Prefix ordered by pathname.
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]Blob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT pathname, size, uploaded_at, content_type
		 FROM blobs
		 WHERE starts_with(pathname, $1)
		 ORDER BY pathname
		 LIMIT $2`,
		opts.Prefix, clampLimit(opts.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list blobs %q: %w", opts.Prefix, err)
	}
	defer rows.Close()

	var blobs []Blob
	for rows.Next() {
		var b Blob
		if err := rows.Scan(&b.Pathname, &b.Size, &b.UploadedAt, &b.ContentType); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		s.fillURLs(&b)
		blobs = append(blobs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blobs %q: %w", opts.Prefix, err)
	}
	return blobs, nil
}

// Delete removes the object addressed by url.
func (s *PostgresStore) Delete(ctx context.Context, url string) error {
	key, err := KeyFromURL(s.publicBase, url)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM blobs WHERE pathname = $1`, key); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

// Get loads the object at pathname.
func (s *PostgresStore) Get(ctx context.Context, pathname string) (*Blob, io.ReadCloser, error) {
	b := &Blob{Pathname: pathname}
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT content, content_type, size, uploaded_at FROM blobs WHERE pathname = $1`,
		pathname,
	).Scan(&data, &b.ContentType, &b.Size, &b.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get blob %q: %w", pathname, err)
	}
	s.fillURLs(b)
	return b, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *PostgresStore) fillURLs(b *Blob) {
	b.URL = publicURL(s.publicBase, b.Pathname)
	b.DownloadURL = localDownloadURL(b.URL)
}
