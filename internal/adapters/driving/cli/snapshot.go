package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the index snapshot",
}

var snapshotPublishCmd = &cobra.Command{
	Use:   "publish [location]",
	Short: "Upload the local snapshot",
	Long: `Uploads the local index snapshot to an S3-compatible bucket so other
installations can fetch it through snapshot.remote_url.

The location defaults to the snapshot.remote_url setting, e.g.
  telemachus snapshot publish s3://lobbying/index/snapshot.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotPublish,
}

var snapshotPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the local snapshot path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if snapshotStore == nil {
			return errors.New("snapshot store not configured")
		}
		cmd.Println(snapshotStore.Path())
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotPublishCmd)
	snapshotCmd.AddCommand(snapshotPathCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotPublish(cmd *cobra.Command, args []string) error {
	if snapshotStore == nil {
		return errors.New("snapshot store not configured")
	}
	if publisherFactory == nil {
		return errors.New("snapshot publisher not configured")
	}

	location := ""
	if len(args) == 1 {
		location = args[0]
	} else if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		location = settings.Snapshot.RemoteURL
	}
	if location == "" {
		return errors.New("no location given and snapshot.remote_url is not set")
	}

	snap, err := snapshotStore.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load local snapshot: %w", err)
	}

	publisher, err := publisherFactory(location)
	if err != nil {
		return err
	}
	published, err := publisher.Publish(cmd.Context(), snap)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	cmd.Printf("Published %d records to %s\n", snap.Metadata.RecordCount, published)
	return nil
}
