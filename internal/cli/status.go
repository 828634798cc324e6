package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/domain"
	"github.com/nrollins/bucketsync/internal/logger"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how the local directory and the bucket differ",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Shutdown()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := svc.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "In sync:      %d\n", st.Summary.Matches)
			fmt.Fprintf(out, "Conflicting:  %d\n", st.Summary.NameConflicts)
			fmt.Fprintf(out, "Local only:   %d\n", st.Summary.LocalOnly)
			fmt.Fprintf(out, "Bucket only:  %d\n", st.Summary.RemoteOnly)

			if verbose {
				for _, e := range st.Entries {
					if e.Relation == domain.RelMatch {
						continue
					}
					fmt.Fprintf(out, "  %-14s %s\n", e.Relation.String(), e.Path)
				}
			}

			if st.Locked && st.Holder != nil {
				fmt.Fprintf(out, "Sync in progress: PID %d on %s since %s\n",
					st.Holder.PID, st.Holder.Hostname, st.Holder.StartTime.Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every differing path")

	return cmd
}

// NewUnlockCommand creates the unlock command, which removes a lock
// left behind by a crashed run.
func NewUnlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Forcibly remove the bucket sync lock",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Shutdown()

			if err := svc.ForceUnlock(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Lock removed.")
			return nil
		},
	}
}
