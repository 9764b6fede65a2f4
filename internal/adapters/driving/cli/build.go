package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

var (
	buildJurisdictions   []string
	buildMaxPublications int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index snapshot",
	Long: `Discovers published transparency documents, downloads and normalises them,
removes duplicate meetings and writes a new index snapshot.

The previous snapshot is only replaced once the new one is complete.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVarP(&buildJurisdictions, "jurisdiction", "j", nil,
		"jurisdictions to build (default: build.jurisdictions setting)")
	buildCmd.Flags().IntVar(&buildMaxPublications, "max-publications", 0,
		"cap on discovered publications per kind (default: build.max_publications setting)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	if indexBuilder == nil {
		return errors.New("index builder not configured")
	}

	cmd.Println("Building index...")
	snap, err := indexBuilder.Build(cmd.Context(), domain.BuildOptions{
		Jurisdictions:   buildJurisdictions,
		MaxPublications: buildMaxPublications,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Success.Render(fmt.Sprintf("Indexed %d records", snap.Metadata.RecordCount)))
	if snapshotStore != nil {
		cmd.Printf("Snapshot: %s\n", snapshotStore.Path())
	}
	cmd.Println()
	printStageCounts(cmd, st, snap.Metadata.StageCounts)
	printSourceCounts(cmd, st, snap.Metadata.SourceCounts)
	printSkipped(cmd, st, snap.Metadata.Skipped)
	return nil
}

func printStageCounts(cmd *cobra.Command, st *styles, c domain.StageCounts) {
	cmd.Println(st.Subtitle.Render("Stages"))
	for _, kind := range sortedKeys(c.PublicationsDiscovered) {
		cmd.Printf("  discovered %-20s %d\n", kind, c.PublicationsDiscovered[kind])
	}
	cmd.Printf("  %-31s %d\n", "documents resolved", c.DocumentsResolved)
	cmd.Printf("  %-31s %d\n", "documents fetched", c.DocumentsFetched)
	if c.DocumentsFailed > 0 {
		cmd.Printf("  %-31s %s\n", "documents failed", st.Warning.Render(fmt.Sprint(c.DocumentsFailed)))
	}
	cmd.Printf("  %-31s %d\n", "rows read", c.RowsRead)
	cmd.Printf("  %-31s %d\n", "rows dropped", c.RowsDropped)
	cmd.Printf("  %-31s %d\n", "records before dedupe", c.RecordsBeforeDedupe)
	cmd.Printf("  %-31s %d\n", "records after dedupe", c.RecordsAfterDedupe)
}

func printSourceCounts(cmd *cobra.Command, st *styles, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	cmd.Println(st.Subtitle.Render("Jurisdictions"))
	for _, id := range sortedKeys(counts) {
		cmd.Printf("  %-4s %d\n", id, counts[id])
	}
}

// printSkipped lists jurisdictions left to live search.
func printSkipped(cmd *cobra.Command, st *styles, skipped map[string]string) {
	if len(skipped) == 0 {
		return
	}
	cmd.Println(st.Subtitle.Render("Skipped (live search only)"))
	for _, id := range sortedKeys(skipped) {
		cmd.Printf("  %-4s %s\n", id, st.Warning.Render(skipped[id]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
