package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/core/executor"
	"github.com/nrollins/bucketsync/internal/core/planner"
	"github.com/nrollins/bucketsync/internal/domain"
	"github.com/nrollins/bucketsync/internal/logger"
	"github.com/nrollins/bucketsync/internal/progress"
)

// runSync drives a push or pull run end to end.
func runSync(cmd *cobra.Command, direction domain.Direction, unsafe, dryRun bool) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()
	defer logger.Shutdown()

	safe := !unsafe
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if dryRun {
		plan, err := svc.Plan(ctx, direction, safe)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), planner.Describe(plan))
		return nil
	}

	if !globalFlags.Quiet {
		svc.SetProgressReporter(progress.NewBarReporter())
	}

	var report *executor.Report
	if direction == domain.DirectionPush {
		report, err = svc.Push(ctx, safe)
	} else {
		report, err = svc.Pull(ctx, safe)
	}

	if err != nil {
		var partial *domain.PartialError
		if errors.As(err, &partial) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s) failed:\n", len(partial.Errors))
			for _, te := range partial.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s: %v\n", te.Path, te.Op, te.Err)
			}
			printReport(cmd, report)
			return fmt.Errorf("sync completed with %d error(s)", len(partial.Errors))
		}
		return err
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *executor.Report) {
	if report == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"Done: %d copied (%s), %d renamed, %d deleted, %d unchanged",
		report.Copied,
		progress.FormatBytes(report.BytesCopied),
		report.Renamed,
		report.Deleted,
		report.Kept,
	)
	if report.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d skipped", report.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
