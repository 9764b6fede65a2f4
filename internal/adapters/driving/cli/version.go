package cli

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print the version number only")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) {
	if versionShort {
		cmd.Println(version)
		return
	}

	cmd.Printf("telemachus version %s\n", version)
	cmd.Printf("  %-10s %s\n", "go", runtime.Version())
	if rev := vcsRevision(); rev != "" {
		cmd.Printf("  %-10s %s\n", "commit", rev)
	}
	if ids := allJurisdictions(); len(ids) > 0 {
		cmd.Printf("  %-10s %s\n", "registers", strings.Join(ids, ", "))
	}
	if snapshotStore != nil {
		cmd.Printf("  %-10s %s\n", "snapshot", snapshotStore.Path())
	}
}

// vcsRevision returns the short commit the binary was built from, if recorded.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
