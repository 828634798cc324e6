package cli

import (
	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/domain"
)

// NewPullCommand creates the pull command.
func NewPullCommand() *cobra.Command {
	var unsafe, dryRun bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Sync the bucket to the local directory",
		Long: `Pull makes the local directory match the bucket. Local files
that conflict with an object are renamed aside (safe mode, the
default) or overwritten (--unsafe). Local files with no object
counterpart are renamed aside, or deleted with --unsafe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, domain.DirectionPull, unsafe, dryRun)
		},
	}

	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "allow destructive overwrites and deletes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without applying it")

	return cmd
}
