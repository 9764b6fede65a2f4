package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	filecache "github.com/custodia-labs/telemachus/internal/adapters/driven/cache/file"
	fileconfig "github.com/custodia-labs/telemachus/internal/adapters/driven/config/file"
	"github.com/custodia-labs/telemachus/internal/adapters/driven/snapshot"
	"github.com/custodia-labs/telemachus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/telemachus/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/telemachus/internal/adapters/driving/cli"
	"github.com/custodia-labs/telemachus/internal/connectors/avoimuus"
	"github.com/custodia-labs/telemachus/internal/connectors/bundestag"
	"github.com/custodia-labs/telemachus/internal/connectors/catalonia"
	"github.com/custodia-labs/telemachus/internal/connectors/govuk"
	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/connectors/kpk"
	"github.com/custodia-labs/telemachus/internal/connectors/lobbyfacts"
	"github.com/custodia-labs/telemachus/internal/connectors/lobbyingie"
	"github.com/custodia-labs/telemachus/internal/connectors/lobbyreg"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/services"
	"github.com/custodia-labs/telemachus/internal/logger"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
	"github.com/custodia-labs/telemachus/internal/postprocessors"
)

const (
	// documentCacheTTL bounds how long downloaded documents are reused.
	documentCacheTTL = 24 * time.Hour

	// importDebounce coalesces bursts of import directory events.
	importDebounce = 5 * time.Second
)

type application struct {
	services cli.Services
	closers  []func() error
}

// Close releases the application's resources. It is safe to call twice.
func (a *application) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
	a.closers = nil
}

// wire builds the object graph from ~/.telemachus.
func wire() (*application, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	base := filepath.Join(home, ".telemachus")
	app := &application{}

	var configStore driven.ConfigStore
	if fileStore, err := fileconfig.NewConfigStore(base); err != nil {
		logger.Warn("config file unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore(nil)
	} else {
		configStore = fileStore
	}
	settingsService := services.NewSettingsService(configStore, home, os.Getenv)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var (
		schedulerStore driven.SchedulerStore = memory.NewSchedulerStore()
		buildRuns      driven.BuildRunStore  = memory.NewBuildRunStore()
		resultCache    driven.ResultCache    = memory.NewResultCache()
	)
	if db, err := sqlite.NewStore(filepath.Join(base, "data")); err != nil {
		logger.Warn("sqlite unavailable, history and caches are not persisted: %v", err)
	} else {
		app.closers = append(app.closers, db.Close)
		schedulerStore = db.SchedulerStore()
		buildRuns = db.BuildRunStore()
		resultCache = db.ResultCache()
	}

	client := httpclient.New(httpclient.ConfigFromSettings(settings.HTTP))
	docCache := filecache.NewDocumentCache(settings.CacheDir, documentCacheTTL)
	normalisers := tabular.NewDefaultRegistry()
	registry := services.NewAdapterRegistry(adapters(settings, client, docCache, normalisers)...)

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	buildPipeline, err := processors.BuildPipeline(postprocessors.Dedupe)
	if err != nil {
		return nil, err
	}
	livePipeline, err := processors.BuildPipeline(postprocessors.Dedupe, postprocessors.DateSort)
	if err != nil {
		return nil, err
	}

	snapshotStore := snapshot.NewFileStore(settings.Snapshot.Path)
	openS3 := func() (snapshot.ObjectStore, error) { return snapshot.NewMinioStore(settings.S3) }

	var remote driven.SnapshotSource
	if settings.Snapshot.RemoteURL != "" {
		remote, err = snapshot.NewSource(settings.Snapshot.RemoteURL, snapshot.SourceOptions{
			HTTP:        client,
			S3:          openS3,
			GitHubToken: settings.Snapshot.GitHubToken,
		})
		if err != nil {
			logger.Warn("remote snapshot disabled: %v", err)
			remote = nil
		}
	}
	handle := services.NewIndexHandle(snapshotStore, remote)

	resolver := services.NewQueryResolver(registry, handle, resultCache, livePipeline, services.ResolverConfig{
		Live:        settings.Live,
		Concurrency: settings.Query.Concurrency,
	})
	builder := services.NewIndexBuilder(registry, normalisers, buildPipeline, snapshotStore, buildRuns, services.BuilderConfig{
		Jurisdictions:   settings.Build.Jurisdictions,
		MaxPublications: settings.Build.MaxPublications,
		Concurrency:     settings.Build.Concurrency,
	})
	scheduler := services.NewScheduler(
		domain.SchedulerConfigFromSettings(settings.Scheduler),
		schedulerStore,
		builder,
		lobbyingie.NewWatcher(settings.IrelandImportDir, importDebounce),
	)

	app.services = cli.Services{
		Resolver:       resolver,
		IndexBuilder:   builder,
		IndexLoader:    handle,
		Registry:       registry,
		Settings:       settingsService,
		Scheduler:      scheduler,
		SchedulerStore: schedulerStore,
		SnapshotStore:  snapshotStore,
		Publisher: func(location string) (driven.SnapshotPublisher, error) {
			store, err := openS3()
			if err != nil {
				return nil, err
			}
			publisher, err := snapshot.NewS3Publisher(store, location)
			if err != nil {
				return nil, err
			}
			return publisher, nil
		},
	}
	return app, nil
}

// adapters creates one source adapter per jurisdiction with a normaliser.
func adapters(
	settings *domain.Settings,
	client *httpclient.Client,
	cache driven.DocumentCache,
	normalisers *tabular.Registry,
) []driven.SourceAdapter {
	constructors := []struct {
		id  string
		new func(driven.RowNormaliser) driven.SourceAdapter
	}{
		{domain.JurisdictionUK, func(n driven.RowNormaliser) driven.SourceAdapter {
			return govuk.New(govuk.DefaultConfig(), client, cache, n)
		}},
		{domain.JurisdictionIreland, func(n driven.RowNormaliser) driven.SourceAdapter {
			return lobbyingie.New(settings.IrelandImportDir, n)
		}},
		{domain.JurisdictionEU, func(n driven.RowNormaliser) driven.SourceAdapter {
			return lobbyfacts.New(lobbyfacts.Config{}, client, cache, n)
		}},
		{domain.JurisdictionGermany, func(n driven.RowNormaliser) driven.SourceAdapter {
			return bundestag.New(bundestag.Config{}, client, n)
		}},
		{domain.JurisdictionAustria, func(n driven.RowNormaliser) driven.SourceAdapter {
			return lobbyreg.New("", client, cache, n)
		}},
		{domain.JurisdictionCatalonia, func(n driven.RowNormaliser) driven.SourceAdapter {
			return catalonia.New("", 0, client, n)
		}},
		{domain.JurisdictionFinland, func(n driven.RowNormaliser) driven.SourceAdapter {
			return avoimuus.New("", client, cache, n)
		}},
		{domain.JurisdictionSlovenia, func(n driven.RowNormaliser) driven.SourceAdapter {
			return kpk.New("", client, cache, n)
		}},
	}

	out := make([]driven.SourceAdapter, 0, len(constructors))
	for _, c := range constructors {
		n, ok := normalisers.Get(c.id)
		if !ok {
			logger.Warn("no normaliser for %s, jurisdiction disabled", c.id)
			continue
		}
		out = append(out, c.new(n))
	}
	return out
}
