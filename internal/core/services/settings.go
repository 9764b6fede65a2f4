package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySnapshotPath         = "snapshot.path"
	keySnapshotRemoteURL    = "snapshot.remote_url"
	keySnapshotGitHubToken  = "snapshot.github_token"
	keyS3Endpoint           = "s3.endpoint"
	keyS3AccessKey          = "s3.access_key"
	keyS3SecretKey          = "s3.secret_key"
	keyS3Region             = "s3.region"
	keyS3UseSSL             = "s3.use_ssl"
	keyLiveEnabled          = "live.enabled"
	keyLiveMonthsBack       = "live.months_back"
	keyLiveCacheTTLHours    = "live.cache_ttl_hours"
	keyBuildJurisdictions   = "build.jurisdictions"
	keyBuildMaxPublications = "build.max_publications"
	keyBuildConcurrency     = "build.concurrency"
	keyHTTPRequestsPerSec   = "http.requests_per_second"
	keyHTTPSearchTimeout    = "http.search_timeout_seconds"
	keyHTTPDownloadTimeout  = "http.download_timeout_seconds"
	keyHTTPUserAgent        = "http.user_agent"
	keyCacheDir             = "cache.dir"
	keyIrelandImportDir     = "ireland.import_dir"
	keySchedulerEnabled     = "scheduler.enabled"
	keySchedulerInterval    = "scheduler.build_interval_hours"
	keyQueryConcurrency     = "query.concurrency"
)

// EnvGitHubToken overrides snapshot.github_token.
const EnvGitHubToken = "TELEMACHUS_GITHUB_TOKEN"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

var settingKinds = map[string]valueKind{
	keySnapshotPath:         kindString,
	keySnapshotRemoteURL:    kindString,
	keySnapshotGitHubToken:  kindString,
	keyS3Endpoint:           kindString,
	keyS3AccessKey:          kindString,
	keyS3SecretKey:          kindString,
	keyS3Region:             kindString,
	keyS3UseSSL:             kindBool,
	keyLiveEnabled:          kindBool,
	keyLiveMonthsBack:       kindInt,
	keyLiveCacheTTLHours:    kindInt,
	keyBuildJurisdictions:   kindList,
	keyBuildMaxPublications: kindInt,
	keyBuildConcurrency:     kindInt,
	keyHTTPRequestsPerSec:   kindFloat,
	keyHTTPSearchTimeout:    kindInt,
	keyHTTPDownloadTimeout:  kindInt,
	keyHTTPUserAgent:        kindString,
	keyCacheDir:             kindString,
	keyIrelandImportDir:     kindString,
	keySchedulerEnabled:     kindBool,
	keySchedulerInterval:    kindInt,
	keyQueryConcurrency:     kindInt,
}

// SettingsService maps configuration keys onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
	home        string
	getenv      func(string) string
}

// NewSettingsService creates a settings service. Defaults are rooted at home;
// getenv supplies environment overrides and may be nil.
func NewSettingsService(configStore driven.ConfigStore, home string, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{
		configStore: configStore,
		home:        home,
		getenv:      getenv,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings(s.home)
}

// Get retrieves current settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := s.GetDefaults()

	settings := &domain.Settings{
		Snapshot: domain.SnapshotSettings{
			Path:        s.getString(keySnapshotPath, d.Snapshot.Path),
			RemoteURL:   s.configStore.GetString(keySnapshotRemoteURL),
			GitHubToken: s.configStore.GetString(keySnapshotGitHubToken),
		},
		S3: domain.S3Settings{
			Endpoint:  s.configStore.GetString(keyS3Endpoint),
			AccessKey: s.configStore.GetString(keyS3AccessKey),
			SecretKey: s.configStore.GetString(keyS3SecretKey),
			Region:    s.getString(keyS3Region, d.S3.Region),
			UseSSL:    s.getBool(keyS3UseSSL, d.S3.UseSSL),
		},
		Live: domain.LiveSettings{
			Enabled:    s.getBool(keyLiveEnabled, d.Live.Enabled),
			MonthsBack: s.getInt(keyLiveMonthsBack, d.Live.MonthsBack),
			CacheTTL:   s.getHours(keyLiveCacheTTLHours, d.Live.CacheTTL),
		},
		Build: domain.BuildSettings{
			Jurisdictions:   s.getList(keyBuildJurisdictions, d.Build.Jurisdictions),
			MaxPublications: s.getInt(keyBuildMaxPublications, d.Build.MaxPublications),
			Concurrency:     s.getInt(keyBuildConcurrency, d.Build.Concurrency),
		},
		HTTP: domain.HTTPSettings{
			RequestsPerSecond: s.getFloat(keyHTTPRequestsPerSec, d.HTTP.RequestsPerSecond),
			SearchTimeout:     s.getSeconds(keyHTTPSearchTimeout, d.HTTP.SearchTimeout),
			DownloadTimeout:   s.getSeconds(keyHTTPDownloadTimeout, d.HTTP.DownloadTimeout),
			UserAgent:         s.getString(keyHTTPUserAgent, d.HTTP.UserAgent),
		},
		Query: domain.QuerySettings{
			Concurrency: s.getInt(keyQueryConcurrency, d.Query.Concurrency),
		},
		Scheduler: domain.SchedulerSettings{
			Enabled:       s.getBool(keySchedulerEnabled, d.Scheduler.Enabled),
			BuildInterval: s.getHours(keySchedulerInterval, d.Scheduler.BuildInterval),
		},
		CacheDir:         s.getString(keyCacheDir, d.CacheDir),
		IrelandImportDir: s.getString(keyIrelandImportDir, d.IrelandImportDir),
	}

	if token := s.getenv(EnvGitHubToken); token != "" {
		settings.Snapshot.GitHubToken = token
	}
	if settings.Live.MonthsBack < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyLiveMonthsBack)
	}
	return settings, nil
}

// Keys lists the recognised configuration keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value formats the effective value of one key.
func (s *SettingsService) Value(key string) (string, error) {
	if _, ok := settingKinds[key]; !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	st, err := s.Get()
	if err != nil {
		return "", err
	}

	hours := func(d time.Duration) string { return strconv.Itoa(int(d / time.Hour)) }
	seconds := func(d time.Duration) string { return strconv.Itoa(int(d / time.Second)) }

	switch key {
	case keySnapshotPath:
		return st.Snapshot.Path, nil
	case keySnapshotRemoteURL:
		return st.Snapshot.RemoteURL, nil
	case keySnapshotGitHubToken:
		return st.Snapshot.GitHubToken, nil
	case keyS3Endpoint:
		return st.S3.Endpoint, nil
	case keyS3AccessKey:
		return st.S3.AccessKey, nil
	case keyS3SecretKey:
		return st.S3.SecretKey, nil
	case keyS3Region:
		return st.S3.Region, nil
	case keyS3UseSSL:
		return strconv.FormatBool(st.S3.UseSSL), nil
	case keyLiveEnabled:
		return strconv.FormatBool(st.Live.Enabled), nil
	case keyLiveMonthsBack:
		return strconv.Itoa(st.Live.MonthsBack), nil
	case keyLiveCacheTTLHours:
		return hours(st.Live.CacheTTL), nil
	case keyBuildJurisdictions:
		return strings.Join(st.Build.Jurisdictions, ","), nil
	case keyBuildMaxPublications:
		return strconv.Itoa(st.Build.MaxPublications), nil
	case keyBuildConcurrency:
		return strconv.Itoa(st.Build.Concurrency), nil
	case keyHTTPRequestsPerSec:
		return strconv.FormatFloat(st.HTTP.RequestsPerSecond, 'g', -1, 64), nil
	case keyHTTPSearchTimeout:
		return seconds(st.HTTP.SearchTimeout), nil
	case keyHTTPDownloadTimeout:
		return seconds(st.HTTP.DownloadTimeout), nil
	case keyHTTPUserAgent:
		return st.HTTP.UserAgent, nil
	case keyCacheDir:
		return st.CacheDir, nil
	case keyIrelandImportDir:
		return st.IrelandImportDir, nil
	case keySchedulerEnabled:
		return strconv.FormatBool(st.Scheduler.Enabled), nil
	case keySchedulerInterval:
		return hours(st.Scheduler.BuildInterval), nil
	case keyQueryConcurrency:
		return strconv.Itoa(st.Query.Concurrency), nil
	}
	return "", nil
}

// Set parses and stores one key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

// getHours reads a whole number of hours. Non-positive values use the default.
func (s *SettingsService) getHours(key string, defaultVal time.Duration) time.Duration {
	n := s.configStore.GetInt(key)
	if n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Hour
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	n := s.configStore.GetInt(key)
	if n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Second
}
