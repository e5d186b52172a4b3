// Package watch implements the live hike list command: it stays subscribed
// and reprints the list whenever stored data changes.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hikelog/cmd/list"
	"hikelog/internal/app"
	"hikelog/internal/viewmodel"
)

// Command creates the watch command.
func Command(ctx *app.Context) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the hike list live, reprinting on every change",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := viewmodel.NewListViewModel(ctx.Repo)
			defer vm.Close()
			if prefix != "" {
				vm.SetPrefix(prefix)
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case <-sigCtx.Done():
					return nil
				case hikes, ok := <-vm.Hikes():
					if !ok {
						return vm.Err()
					}
					fmt.Println()
					list.PrintHikes(os.Stdout, hikes)
				}
			}
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Filter by name prefix (case-insensitive)")

	return cmd
}
