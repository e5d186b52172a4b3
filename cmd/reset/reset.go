// Package reset implements the destructive reset command.
package reset

import (
	"fmt"

	"github.com/spf13/cobra"

	"hikelog/internal/app"
)

// Command creates the reset command.
func Command(ctx *app.Context) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every hike and observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete all data without --force")
			}
			if err := ctx.Repo.ResetAll(); err != nil {
				return err
			}
			cmd.Println("All hikes and observations deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the destructive reset")

	return cmd
}
