package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure GitHubSource implements the interface.
var _ driven.SnapshotSource = (*GitHubSource)(nil)

// githubTimeout bounds one snapshot download.
const githubTimeout = 2 * time.Minute

// GitHubLocation addresses a file in a repository.
type GitHubLocation struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// String renders the location as github://owner/repo/path[@ref].
func (l GitHubLocation) String() string {
	s := "github://" + l.Owner + "/" + l.Repo + "/" + l.Path
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// GitHubSource fetches a snapshot committed to a repository.
type GitHubSource struct {
	loc    GitHubLocation
	client *gh.Client
}

func newGitHubSource(loc GitHubLocation, token, baseURL string) (*GitHubSource, error) {
	httpClient := &http.Client{Timeout: githubTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = githubTimeout
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: github base url: %v", domain.ErrInvalidInput, err)
		}
		client.BaseURL = u
	}
	return &GitHubSource{loc: loc, client: client}, nil
}

// Location returns the github URL.
func (s *GitHubSource) Location() string {
	return s.loc.String()
}

// Fetch downloads and decodes the snapshot.
func (s *GitHubSource) Fetch(ctx context.Context) (*domain.IndexSnapshot, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: s.loc.Ref}
	rc, resp, err := s.client.Repositories.DownloadContents(ctx, s.loc.Owner, s.loc.Repo, s.loc.Path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetch %s: %w", s.Location(), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w: %v", s.Location(), domain.ErrUpstream, err)
	}
	defer rc.Close()

	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: %w: status %d", s.Location(), domain.ErrUpstream, resp.StatusCode)
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Location(), err)
	}
	return Decode(data)
}

// parseGitHub parses github://owner/repo/path/to/file[@ref].
func parseGitHub(u *url.URL) (GitHubLocation, error) {
	rest := strings.TrimPrefix(u.Path, "/")
	var ref string
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest, ref = rest[:i], rest[i+1:]
	}

	repo, path, _ := strings.Cut(rest, "/")
	loc := GitHubLocation{Owner: u.Host, Repo: repo, Path: path, Ref: ref}
	if loc.Owner == "" || loc.Repo == "" || loc.Path == "" {
		return GitHubLocation{}, fmt.Errorf("%w: github location needs owner, repo and path: %q",
			domain.ErrInvalidInput, u.String())
	}
	return loc, nil
}
