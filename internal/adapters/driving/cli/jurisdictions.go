package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var jurisdictionsJSON bool

var jurisdictionsCmd = &cobra.Command{
	Use:   "jurisdictions",
	Short: "List supported registers",
	Args:  cobra.NoArgs,
	RunE:  runJurisdictions,
}

func init() {
	jurisdictionsCmd.Flags().BoolVar(&jurisdictionsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(jurisdictionsCmd)
}

func runJurisdictions(cmd *cobra.Command, _ []string) error {
	if adapterRegistry == nil {
		return errors.New("adapter registry not configured")
	}
	infos := adapterRegistry.Jurisdictions()

	if jurisdictionsJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal jurisdictions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	indexed := map[string]int{}
	if indexLoader != nil {
		if snap, ok := indexLoader.Loaded(); ok {
			indexed = snap.Metadata.SourceCounts
		}
	}

	st := newStyles(cmd.OutOrStdout())
	for _, info := range infos {
		cmd.Printf("%-4s %s\n", info.ID, st.Subtitle.Render(info.Name))
		cmd.Printf("     %s\n", info.Register)

		var modes []string
		if info.SupportsDiscovery {
			modes = append(modes, "index")
		}
		if info.SupportsLiveSearch {
			modes = append(modes, "live")
		}
		line := fmt.Sprintf("     coverage %s, %v", info.CoverageNote, modes)
		if n, ok := indexed[info.ID]; ok {
			line += fmt.Sprintf(", %d indexed", n)
		}
		cmd.Println(st.Muted.Render(line))
	}
	return nil
}
