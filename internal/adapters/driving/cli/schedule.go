package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

var scheduleHistoryLimit int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Scheduled index builds",
	Long: `Commands for the background scheduler that rebuilds the index periodically
and whenever the Ireland import directory changes.`,
}

var scheduleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runScheduleStart,
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a scheduled task now",
	Long:  `Runs a task immediately, outside its schedule. Defaults to the index build.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScheduleRun,
}

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history [task]",
	Short: "Show recent task results",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScheduleHistory,
}

func init() {
	scheduleHistoryCmd.Flags().IntVarP(&scheduleHistoryLimit, "limit", "n", 10, "maximum number of results")
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleHistoryCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func taskArg(args []string) string {
	if len(args) == 0 {
		return domain.TaskIDIndexBuild
	}
	return args[0]
}

func runScheduleStart(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Scheduler running, press Ctrl+C to stop.")
	err := scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil {
		return stopErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	taskID := taskArg(args)
	cmd.Printf("Running %s...\n", taskID)
	if err := scheduler.RunNow(cmd.Context(), taskID); err != nil {
		return fmt.Errorf("task %s failed: %w", taskID, err)
	}
	cmd.Println("Done.")
	return nil
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	if schedulerStore == nil {
		return errors.New("scheduler store not configured")
	}

	taskID := taskArg(args)
	results, err := schedulerStore.GetTaskHistory(cmd.Context(), taskID, scheduleHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(results) == 0 {
		cmd.Printf("No runs recorded for %s.\n", taskID)
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	for i := range results {
		r := &results[i]
		status := st.Success.Render("ok")
		if !r.Success {
			status = st.Error.Render("failed: " + r.Error)
		}
		cmd.Printf("  %s  %-8s  %6d items  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"),
			r.EndedAt.Sub(r.StartedAt).Round(time.Second),
			r.ItemsProcessed,
			status)
	}
	return nil
}
