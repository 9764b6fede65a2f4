// Package cli provides the Cobra command tree for telemachus.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// PublisherFactory opens a publisher for a remote snapshot location.
type PublisherFactory func(location string) (driven.SnapshotPublisher, error)

// Services are the ports the commands drive. Nil fields disable the
// commands that need them.
type Services struct {
	Resolver       driving.QueryResolver
	IndexBuilder   driving.IndexBuilder
	IndexLoader    driving.IndexLoader
	Registry       driving.AdapterRegistry
	Settings       driving.SettingsService
	Scheduler      driving.Scheduler
	SchedulerStore driven.SchedulerStore
	SnapshotStore  driven.SnapshotStore
	Publisher      PublisherFactory
}

var (
	version = "dev"

	resolver         driving.QueryResolver
	indexBuilder     driving.IndexBuilder
	indexLoader      driving.IndexLoader
	adapterRegistry  driving.AdapterRegistry
	settingsService  driving.SettingsService
	scheduler        driving.Scheduler
	schedulerStore   driven.SchedulerStore
	snapshotStore    driven.SnapshotStore
	publisherFactory PublisherFactory

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "telemachus",
	Short: "Search public lobbying registers",
	Long: `telemachus answers questions like "who met ministers about X?" across
public lobbying and transparency registers.

Records from the UK, Ireland, the EU Transparency Register, Germany,
Austria, Catalonia, Finland and Slovenia are served from a prebuilt index
where one exists, and searched live otherwise.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the application services into the commands.
func SetServices(s Services) {
	resolver = s.Resolver
	indexBuilder = s.IndexBuilder
	indexLoader = s.IndexLoader
	adapterRegistry = s.Registry
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerStore = s.SchedulerStore
	snapshotStore = s.SnapshotStore
	publisherFactory = s.Publisher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// allJurisdictions returns the registered jurisdiction IDs in registration order.
func allJurisdictions() []string {
	if adapterRegistry == nil {
		return nil
	}
	infos := adapterRegistry.Jurisdictions()
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}
