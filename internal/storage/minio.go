package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const downloadURLExpiry = 24 * time.Hour

// MinioStore implements BlobStore using a MinIO (or any S3-compatible) backend.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// MinioConfig holds the connection settings for NewMinioStore.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/media"
	UseSSL     bool
}

// NewMinioStore creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStore.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		log.Printf("storage: created bucket %q", cfg.Bucket)
	}

	if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}, nil
}

// Put streams body to MinIO under pathname.
func (s *MinioStore) Put(ctx context.Context, pathname string, body io.Reader, size int64, opts PutOptions) (*Blob, error) {
	key := pathname
	if opts.AddRandomSuffix {
		key = WithRandomSuffix(pathname)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	uploadedAt := info.LastModified
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}
	return s.blob(ctx, key, info.Size, uploadedAt, opts.ContentType), nil
}

// List walks the bucket under opts.Prefix and stops after opts.Limit objects.
func (s *MinioStore) List(ctx context.Context, opts ListOptions) ([]Blob, error) {
	limit := clampLimit(opts.Limit)

	// Cancelling stops the listing goroutine once enough objects were read.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	blobs := make([]Blob, 0, limit)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: true,
		MaxKeys:   limit,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %q: %w", opts.Prefix, obj.Err)
		}
		blobs = append(blobs, *s.blob(ctx, obj.Key, obj.Size, obj.LastModified, obj.ContentType))
		if len(blobs) == limit {
			break
		}
	}
	return blobs, nil
}

// Delete removes the object addressed by url from the bucket.
func (s *MinioStore) Delete(ctx context.Context, rawURL string) error {
	key, err := KeyFromURL(s.publicBase, rawURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// Get opens the object at pathname for reading.
func (s *MinioStore) Get(ctx context.Context, pathname string) (*Blob, io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, pathname, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object %q: %w", pathname, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("stat object %q: %w", pathname, err)
	}
	return s.blob(ctx, pathname, info.Size, info.LastModified, info.ContentType), obj, nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/media/uploads/file.jpg"
func (s *MinioStore) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}

func (s *MinioStore) blob(ctx context.Context, key string, size int64, uploadedAt time.Time, contentType string) *Blob {
	return &Blob{
		URL:         s.PublicURL(key),
		DownloadURL: s.downloadURL(ctx, key),
		Pathname:    key,
		Size:        size,
		UploadedAt:  uploadedAt,
		ContentType: contentType,
	}
}

// downloadURL presigns a GET that forces an attachment download. Presigning is
// local, so a failure only drops the link.
func (s *MinioStore) downloadURL(ctx context.Context, key string) string {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, downloadURLExpiry, params)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("storage: presign %q: %v", key, err)
		}
		return ""
	}
	return u.String()
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
