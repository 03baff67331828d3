// Package objectstore stores animal photos in an S3-compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"growt/internal/domain"
)

// Options configures the photo store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// PublicBaseURL, when set, prefixes object keys in returned URLs.
	// Otherwise URLs are path-style against Endpoint.
	PublicBaseURL string
}

// Store implements domain.PhotoStore on minio-go.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zap.Logger

	mu    sync.Mutex
	ready bool
}

var _ domain.PhotoStore = (*Store)(nil)

// New constructs the store. No network calls are made until the first upload.
func New(opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is required")
	}
	secure := strings.HasPrefix(strings.ToLower(strings.TrimSpace(opts.Endpoint)), "https")
	host := sanitizeEndpoint(opts.Endpoint)
	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	return &Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: publicBase(opts, host, secure),
		logger:  logger.With(zap.String("component", "objectstore")),
	}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return err
		}
		s.logger.Info("created bucket", zap.String("bucket", s.bucket))
	}
	s.ready = true
	return nil
}

// PutPhoto uploads a photo and returns the URL it is served from.
func (s *Store) PutPhoto(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: size < 5*1024*1024,
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("stored photo", zap.String("key", key), zap.Int64("size", info.Size))
	return s.objectURL(key), nil
}

// DeletePhoto removes a photo. Missing objects are not an error.
func (s *Store) DeletePhoto(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("delete photo", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) objectURL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

func publicBase(opts Options, host string, secure bool) string {
	if base := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"); base != "" {
		return base
	}
	u := url.URL{Scheme: "http", Host: host, Path: "/" + opts.Bucket}
	if secure {
		u.Scheme = "https"
	}
	return u.String()
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
