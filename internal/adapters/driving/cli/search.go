package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

var (
	searchLimit         int
	searchJSON          bool
	searchJurisdictions []string
)

// topEntries caps each aggregate in the text output.
const topEntries = 5

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search lobbying registers",
	Long: `Resolves a query against every requested jurisdiction.

Queries support AND, OR and NOT between terms, for example
  telemachus search "shell OR bp"
  telemachus search "meta NOT facebook"

Jurisdictions covered by the index are answered from it. The rest are
searched live against the upstream register when live search is enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of records to print")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the full result as JSON")
	searchCmd.Flags().StringSliceVarP(&searchJurisdictions, "jurisdiction", "j", nil,
		"jurisdictions to search (default: all registered)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if resolver == nil {
		return errors.New("query resolver not configured")
	}

	jurisdictions := searchJurisdictions
	if len(jurisdictions) == 0 {
		jurisdictions = allJurisdictions()
	}

	result, err := resolver.Resolve(cmd.Context(), args[0], jurisdictions)
	if result == nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		if jsonErr := outputSearchJSON(cmd, result); jsonErr != nil {
			return jsonErr
		}
	} else {
		outputSearchText(cmd, result)
	}

	if err != nil {
		return fmt.Errorf("search incomplete: %w", err)
	}
	return nil
}

func outputSearchJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, result *domain.QueryResult) {
	st := newStyles(cmd.OutOrStdout())

	cmd.Println(st.Title.Render(fmt.Sprintf("%q", result.Query)))
	if len(result.Terms) > 1 {
		cmd.Println(st.Muted.Render("Terms: " + strings.Join(result.Terms, " | ")))
	}
	if !result.IndexAvailable {
		cmd.Println(st.Warning.Render("Index not available, live search only"))
	}
	cmd.Println()

	cmd.Println(st.Subtitle.Render("Jurisdictions"))
	for i := range result.Jurisdictions {
		cmd.Println("  " + describeJurisdiction(st, &result.Jurisdictions[i]))
	}
	cmd.Println()

	if result.MeetingsCount == 0 {
		cmd.Println("No meetings found.")
		return
	}

	cmd.Println(st.Subtitle.Render(fmt.Sprintf("%d meetings", result.MeetingsCount)))
	printAggregate(cmd, st, "Counterparts", result.Aggregates.ByCounterpart)
	printAggregate(cmd, st, "Departments", result.Aggregates.ByDepartment)
	printAggregate(cmd, st, "Years", result.Aggregates.ByYear)
	cmd.Println()

	printRecords(cmd, st, result.MatchedRecords, len(result.Terms) > 1)
}

func describeJurisdiction(st *styles, j *domain.JurisdictionResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-4s ", j.Jurisdiction))

	switch j.Outcome {
	case domain.OutcomeFound:
		b.WriteString(st.Success.Render(fmt.Sprintf("%d found", j.MeetingsCount)))
	case domain.OutcomeNotFound:
		b.WriteString(st.Muted.Render("none found"))
	case domain.OutcomeErrored:
		b.WriteString(st.Error.Render("error: " + j.Reason))
		return b.String()
	}

	var details []string
	if j.Path != "" {
		details = append(details, "via "+string(j.Path))
	}
	if j.DateRange != "" {
		details = append(details, j.DateRange)
	}
	if j.CoverageNote != "" {
		details = append(details, "coverage "+j.CoverageNote)
	}
	if len(details) > 0 {
		b.WriteString(st.Muted.Render(" (" + strings.Join(details, ", ") + ")"))
	}
	return b.String()
}

func printAggregate(cmd *cobra.Command, st *styles, title string, entries []domain.CountEntry) {
	if len(entries) == 0 {
		return
	}
	parts := make([]string, 0, topEntries)
	for i, e := range entries {
		if i == topEntries {
			parts = append(parts, fmt.Sprintf("+%d more", len(entries)-topEntries))
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", e.Key, e.Count))
	}
	cmd.Printf("  %s %s\n", st.Muted.Render(title+":"), strings.Join(parts, ", "))
}

func printRecords(cmd *cobra.Command, st *styles, records []domain.TaggedRecord, showTerm bool) {
	shown := records
	if searchLimit > 0 && len(shown) > searchLimit {
		shown = shown[:searchLimit]
	}

	for i := range shown {
		r := &shown[i]
		date := r.Date
		if date == "" {
			date = "undated"
		}
		cmd.Printf("  [%d] %s  %s\n", i+1, st.Muted.Render(date), truncate(r.SubjectName, st.width-20))
		cmd.Printf("      %s met %s\n", r.Jurisdiction, labelOrUnknown(r.CounterpartName))
		if r.Department != "" {
			cmd.Printf("      %s\n", truncate(r.Department, st.width-6))
		}
		if r.Topic != "" {
			cmd.Printf("      %s\n", st.Muted.Render(truncate(r.Topic, st.width-6)))
		}
		if showTerm && r.MatchedTerm != "" {
			cmd.Printf("      %s\n", st.Muted.Render("matched: "+r.MatchedTerm))
		}
	}

	if len(shown) < len(records) {
		cmd.Println()
		cmd.Println(st.Muted.Render(fmt.Sprintf("%d more not shown, use --limit or --json", len(records)-len(shown))))
	}
}

func labelOrUnknown(s string) string {
	if s == "" {
		return domain.UnknownLabel
	}
	return s
}
