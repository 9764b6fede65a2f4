package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// statusRuns is the number of build runs shown.
const statusRuns = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and scheduler status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if indexLoader == nil {
		return errors.New("index loader not configured")
	}
	st := newStyles(cmd.OutOrStdout())
	ctx := cmd.Context()

	cmd.Println(st.Title.Render("Index"))
	snap, err := indexLoader.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrIndexNotAvailable):
		cmd.Println(st.Warning.Render("  not available: " + err.Error()))
	case err != nil:
		return err
	default:
		meta := snap.Metadata
		cmd.Printf("  build     %s\n", meta.BuildID)
		cmd.Printf("  created   %s\n", meta.CreatedAt.Format(time.RFC3339))
		cmd.Printf("  records   %d\n", meta.RecordCount)
		cmd.Printf("  coverage  %s\n", meta.CoverageNote)
		for _, id := range sortedKeys(meta.SourceCounts) {
			cmd.Printf("  %-9s %d\n", id, meta.SourceCounts[id])
		}
		for _, id := range sortedKeys(meta.Skipped) {
			cmd.Printf("  %-9s %s\n", id, st.Warning.Render("live only: "+meta.Skipped[id]))
		}
	}
	cmd.Println()

	if indexBuilder != nil {
		runs, err := indexBuilder.History(ctx, statusRuns)
		if err != nil {
			return err
		}
		cmd.Println(st.Title.Render("Recent builds"))
		if len(runs) == 0 {
			cmd.Println(st.Muted.Render("  none"))
		}
		for i := range runs {
			cmd.Println("  " + describeRun(st, &runs[i]))
		}
		cmd.Println()
	}

	if schedulerStore != nil {
		tasks, err := schedulerStore.ListTasks(ctx)
		if err != nil {
			return err
		}
		cmd.Println(st.Title.Render("Scheduled tasks"))
		if len(tasks) == 0 {
			cmd.Println(st.Muted.Render("  none"))
		}
		for i := range tasks {
			cmd.Println("  " + describeTask(st, &tasks[i]))
		}
	}
	return nil
}

func describeRun(st *styles, run *domain.BuildRun) string {
	when := run.StartedAt.Format("2006-01-02 15:04")
	switch {
	case run.Success && run.Error != "":
		return when + "  " + st.Success.Render("ok") + "  " + plural(run.RecordCount, "record") + "  " + st.Warning.Render(run.Error)
	case run.Success:
		return when + "  " + st.Success.Render("ok") + "  " + plural(run.RecordCount, "record")
	case run.EndedAt.IsZero():
		return when + "  " + st.Warning.Render("running")
	default:
		return when + "  " + st.Error.Render("failed") + "  " + run.Error
	}
}

func describeTask(st *styles, task *domain.ScheduledTask) string {
	line := task.Name + "  every " + task.Interval.String()
	if !task.Enabled {
		return line + "  " + st.Muted.Render("disabled")
	}
	line += "  next " + task.NextRun.Format("2006-01-02 15:04")
	if task.LastError != "" {
		line += "  " + st.Error.Render("last error: "+task.LastError)
	}
	return line
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
