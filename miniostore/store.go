// Package miniostore implements docrepo.Storage on MinIO or any S3
// compatible server with minio-go.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/docrepo"
)

// maxListKeys matches the size of the first ListObjectsV2 page.
const maxListKeys = 1000

const codeNoSuchKey = "NoSuchKey"

type Config struct {
	Endpoint  string // host:port or a URL with http/https scheme
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool // ignored when Endpoint carries a scheme
}

// NewClient creates a minio client for cfg.
func NewClient(cfg Config) (*minio.Client, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:     secure,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// normaliseEndpoint accepts "minio:9000" as well as "http://minio:9000".
func normaliseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("minio endpoint is required")
	}

	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse minio endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid minio endpoint %q", raw)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("minio endpoint must not contain a path: %q", raw)
	}
	return u.Host, u.Scheme == "https", nil
}

// Store is a docrepo.Storage backed by one bucket.
type Store struct {
	client *minio.Client
	bucket string
}

func New(client *minio.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Get opens the object. minio-go fetches lazily, so the object is stat'ed
// first to surface a missing key here rather than on the first read.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError("get object", key, err)
	}

	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, s.mapError("stat object", key, err)
	}

	return &object{obj: obj, store: s, key: key}, nil
}

// List returns at most maxListKeys entries under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]docrepo.ObjectEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := []docrepo.ObjectEntry{}
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   maxListKeys,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, info.Err)
		}
		entries = append(entries, docrepo.ObjectEntry{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
		if len(entries) == maxListKeys {
			break
		}
	}
	return entries, nil
}

func (s *Store) mapError(op, key string, err error) error {
	if minio.ToErrorResponse(err).Code == codeNoSuchKey {
		return docrepo.ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}

// object maps read errors of a lazily fetched object.
type object struct {
	obj   *minio.Object
	store *Store
	key   string
}

func (o *object) Read(p []byte) (int, error) {
	n, err := o.obj.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, o.store.mapError("read object", o.key, err)
	}
	return n, err
}

func (o *object) Close() error {
	return o.obj.Close()
}
