package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Location schemes.
const (
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
	SchemeS3     = "s3"
	SchemeGitHub = "github"
)

// SourceOptions carries what the remote sources need.
type SourceOptions struct {
	// HTTP fetches http and https locations.
	HTTP *httpclient.Client

	// S3 opens the object store for s3 locations. Called only when needed.
	S3 func() (ObjectStore, error)

	// GitHubToken authenticates github locations. Optional.
	GitHubToken string

	// GitHubBaseURL overrides the API endpoint (for tests and GHES).
	GitHubBaseURL string
}

// NewSource returns the source for a remote location.
func NewSource(location string, opts SourceOptions) (driven.SnapshotSource, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%w: snapshot location %q", domain.ErrInvalidInput, location)
	}

	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		client := opts.HTTP
		if client == nil {
			client = httpclient.New(httpclient.Config{})
		}
		return &HTTPSource{url: location, client: client}, nil

	case SchemeS3:
		bucket, key, err := splitS3(u)
		if err != nil {
			return nil, err
		}
		if opts.S3 == nil {
			return nil, fmt.Errorf("%w: no object store configured for %s", domain.ErrInvalidInput, location)
		}
		store, err := opts.S3()
		if err != nil {
			return nil, err
		}
		return &S3Source{store: store, bucket: bucket, key: key}, nil

	case SchemeGitHub:
		loc, err := parseGitHub(u)
		if err != nil {
			return nil, err
		}
		return newGitHubSource(loc, opts.GitHubToken, opts.GitHubBaseURL)

	default:
		return nil, fmt.Errorf("%w: unsupported snapshot scheme %q", domain.ErrInvalidInput, u.Scheme)
	}
}

// HTTPSource fetches a snapshot over HTTP.
type HTTPSource struct {
	url    string
	client *httpclient.Client
}

// Location returns the URL.
func (s *HTTPSource) Location() string {
	return s.url
}

// Fetch downloads and decodes the snapshot.
func (s *HTTPSource) Fetch(ctx context.Context) (*domain.IndexSnapshot, error) {
	data, err := s.client.Download(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("download snapshot: %w", err)
	}
	return Decode(data)
}
