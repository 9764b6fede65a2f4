package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure the S3 adapters implement the interfaces.
var (
	_ driven.SnapshotSource    = (*S3Source)(nil)
	_ driven.SnapshotPublisher = (*S3Publisher)(nil)
)

// ObjectStore is the subset of S3 the snapshot adapters use.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// MinioStore implements ObjectStore with minio-go against any
// S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore creates a store from settings. An endpoint given as a URL
// selects TLS from its scheme.
func NewMinioStore(cfg domain.S3Settings) (*MinioStore, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	secure := cfg.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &MinioStore{client: client}, nil
}

// GetObject reads a whole object. A missing key is domain.ErrNotFound.
func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(err)
	}
	return data, nil
}

// PutObject writes a whole object.
func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Message)
	case "SlowDown":
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, resp.Message)
	}
	return fmt.Errorf("%w: s3: %v", domain.ErrUpstream, err)
}

// S3Source fetches a snapshot from an object store.
type S3Source struct {
	store  ObjectStore
	bucket string
	key    string
}

// NewS3Source creates a source for s3://bucket/key.
func NewS3Source(store ObjectStore, location string) (*S3Source, error) {
	bucket, key, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	return &S3Source{store: store, bucket: bucket, key: key}, nil
}

// Location returns the s3 URL.
func (s *S3Source) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch downloads and decodes the snapshot.
func (s *S3Source) Fetch(ctx context.Context) (*domain.IndexSnapshot, error) {
	data, err := s.store.GetObject(ctx, s.bucket, s.key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.Location(), err)
	}
	return Decode(data)
}

// S3Publisher uploads snapshots to an object store.
type S3Publisher struct {
	store  ObjectStore
	bucket string
	key    string
}

// NewS3Publisher creates a publisher for s3://bucket/key.
func NewS3Publisher(store ObjectStore, location string) (*S3Publisher, error) {
	bucket, key, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	return &S3Publisher{store: store, bucket: bucket, key: key}, nil
}

// Publish uploads the snapshot and returns its s3 URL.
func (p *S3Publisher) Publish(ctx context.Context, snap *domain.IndexSnapshot) (string, error) {
	data, err := Encode(snap)
	if err != nil {
		return "", err
	}
	if err := p.store.PutObject(ctx, p.bucket, p.key, data); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return "s3://" + p.bucket + "/" + p.key, nil
}

// ParseS3 splits s3://bucket/key.
func ParseS3(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != SchemeS3 {
		return "", "", fmt.Errorf("%w: not an s3 location: %q", domain.ErrInvalidInput, location)
	}
	return splitS3(u)
}

func splitS3(u *url.URL) (string, string, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 location needs bucket and key: %q", domain.ErrInvalidInput, u.String())
	}
	return bucket, key, nil
}
