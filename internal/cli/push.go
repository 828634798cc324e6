package cli

import (
	"github.com/spf13/cobra"

	"github.com/nrollins/bucketsync/internal/domain"
)

// NewPushCommand creates the push command.
func NewPushCommand() *cobra.Command {
	var unsafe, dryRun bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Sync the local directory to the bucket",
		Long: `Push makes the bucket match the local directory. Objects that
conflict with a local file are renamed aside (safe mode, the default)
or overwritten (--unsafe). Objects with no local counterpart are
renamed aside, or deleted with --unsafe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, domain.DirectionPush, unsafe, dryRun)
		},
	}

	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "allow destructive overwrites and deletes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without applying it")

	return cmd
}
