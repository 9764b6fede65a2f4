package domain

import (
	"path/filepath"
	"time"
)

// Settings is the resolved application configuration.
type Settings struct {
	Snapshot  SnapshotSettings
	S3        S3Settings
	Live      LiveSettings
	Build     BuildSettings
	HTTP      HTTPSettings
	Query     QuerySettings
	Scheduler SchedulerSettings

	// CacheDir holds downloaded documents and discovery results.
	CacheDir string

	// IrelandImportDir holds lobbying.ie CSV exports.
	IrelandImportDir string
}

// SnapshotSettings locates the index snapshot.
type SnapshotSettings struct {
	// Path is the local snapshot file.
	Path string

	// RemoteURL is tried when the local file is missing or unreadable.
	// Supported schemes: https, http, s3, github.
	RemoteURL string

	// GitHubToken authenticates github:// fetches. Optional.
	GitHubToken string
}

// S3Settings configures the S3-compatible object store.
type S3Settings struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// LiveSettings controls the live fallback path.
type LiveSettings struct {
	// Enabled allows live upstream searches when no index covers a jurisdiction.
	Enabled bool

	// MonthsBack bounds live searches to recent publications.
	MonthsBack int

	// CacheTTL is how long live results are reused.
	CacheTTL time.Duration
}

// Window returns the live recency window.
func (l LiveSettings) Window() time.Duration {
	return time.Duration(l.MonthsBack) * 30 * 24 * time.Hour
}

// BuildSettings controls the index builder.
type BuildSettings struct {
	// Jurisdictions are built into the snapshot.
	Jurisdictions []string

	// MaxPublications caps discovery per publication kind.
	MaxPublications int

	// Concurrency bounds parallel document fetches.
	Concurrency int
}

// HTTPSettings controls upstream requests.
type HTTPSettings struct {
	RequestsPerSecond float64
	SearchTimeout     time.Duration
	DownloadTimeout   time.Duration
	UserAgent         string
}

// QuerySettings controls the resolver.
type QuerySettings struct {
	// Concurrency bounds parallel jurisdiction resolution.
	Concurrency int
}

// SchedulerSettings controls periodic builds.
type SchedulerSettings struct {
	Enabled       bool
	BuildInterval time.Duration
}

// DefaultSettings returns defaults rooted at the given home directory.
func DefaultSettings(home string) Settings {
	base := filepath.Join(home, ".telemachus")
	return Settings{
		Snapshot: SnapshotSettings{
			Path: filepath.Join(base, "data", "snapshot.json"),
		},
		S3: S3Settings{
			Region: "us-east-1",
			UseSSL: true,
		},
		Live: LiveSettings{
			Enabled:    true,
			MonthsBack: 12,
			CacheTTL:   24 * time.Hour,
		},
		Build: BuildSettings{
			Jurisdictions:   []string{JurisdictionUK, JurisdictionIreland},
			MaxPublications: 1500,
			Concurrency:     4,
		},
		HTTP: HTTPSettings{
			RequestsPerSecond: 4,
			SearchTimeout:     30 * time.Second,
			DownloadTimeout:   120 * time.Second,
			UserAgent:         "telemachus/1.0 (+https://github.com/custodia-labs/telemachus)",
		},
		Query: QuerySettings{
			Concurrency: 4,
		},
		Scheduler: SchedulerSettings{
			Enabled:       true,
			BuildInterval: 7 * 24 * time.Hour,
		},
		CacheDir:         filepath.Join(base, "cache"),
		IrelandImportDir: filepath.Join(base, "imports", "ie"),
	}
}
