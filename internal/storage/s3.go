package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds construction parameters for NewS3Store.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; set for S3-compatible services
	UseSSL          bool   // scheme for an Endpoint given without one
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	PublicBase      string
	PathStyle       bool
}

// S3Store implements BlobStore on AWS S3. Objects are expected to be readable
// through PublicBase (bucket policy or CDN); the store does not set ACLs.
type S3Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	publicBase string
}

// NewS3Store loads the AWS configuration and returns an S3Store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.Contains(endpoint, "://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicBase := cfg.PublicBase
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}

	return &S3Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Put uploads body under pathname.
func (s *S3Store) Put(ctx context.Context, pathname string, body io.Reader, size int64, opts PutOptions) (*Blob, error) {
	key := pathname
	if opts.AddRandomSuffix {
		key = WithRandomSuffix(pathname)
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}
	return s.blob(ctx, key, size, time.Now().UTC(), opts.ContentType), nil
}

// List pages through ListObjectsV2 until opts.Limit objects were collected.
func (s *S3Store) List(ctx context.Context, opts ListOptions) ([]Blob, error) {
	limit := clampLimit(opts.Limit)
	blobs := make([]Blob, 0, limit)
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(opts.Prefix),
			MaxKeys:           aws.Int32(int32(limit - len(blobs))),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", opts.Prefix, err)
		}
		for _, obj := range out.Contents {
			blobs = append(blobs, *s.blob(ctx, aws.ToString(obj.Key), aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified), ""))
		}
		if len(blobs) >= limit || !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	if len(blobs) > limit {
		blobs = blobs[:limit]
	}
	return blobs, nil
}

// Delete removes the object addressed by url.
func (s *S3Store) Delete(ctx context.Context, rawURL string) error {
	key, err := KeyFromURL(s.publicBase, rawURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// Get opens the object at pathname for reading.
func (s *S3Store) Get(ctx context.Context, pathname string) (*Blob, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(pathname),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get object %q: %w", pathname, err)
	}
	b := s.blob(ctx, pathname, aws.ToInt64(out.ContentLength), aws.ToTime(out.LastModified), aws.ToString(out.ContentType))
	return b, out.Body, nil
}

func (s *S3Store) blob(ctx context.Context, key string, size int64, uploadedAt time.Time, contentType string) *Blob {
	return &Blob{
		URL:         publicURL(s.publicBase, key),
		DownloadURL: s.downloadURL(ctx, key),
		Pathname:    key,
		Size:        size,
		UploadedAt:  uploadedAt,
		ContentType: contentType,
	}
}

func (s *S3Store) downloadURL(ctx context.Context, key string) string {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
	}, s3.WithPresignExpires(downloadURLExpiry))
	if err != nil {
		log.Printf("storage: presign %q: %v", key, err)
		return ""
	}
	return req.URL
}
