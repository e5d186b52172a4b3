// Package observations implements listing and recording of field notes for
// one hike.
package observations

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hikelog/internal/app"
	"hikelog/internal/viewmodel"
)

// Command creates the observations command.
func Command(ctx *app.Context) *cobra.Command {
	var (
		addText  string
		comments string
		deleteID uint
	)

	cmd := &cobra.Command{
		Use:   "observations <hike-id>",
		Short: "List or record field observations for a hike",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid hike id %q", args[0])
			}
			hikeID := uint(id)

			vm := viewmodel.NewDetailViewModel(ctx.Repo)
			defer vm.Close()

			if addText != "" {
				// observedAt blank means now
				if err := vm.AddObservation(hikeID, addText, "", comments); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("delete") {
				if err := vm.DeleteObservation(deleteID); err != nil {
					return err
				}
			}

			// Subscribe after the mutations so the first emission already
			// reflects them.
			vm.Start(hikeID)

			hike, err := vm.Hike()
			if err != nil {
				return err
			}
			if hike == nil {
				return fmt.Errorf("hike %d does not exist", hikeID)
			}

			observations, ok := <-vm.Observations()
			if !ok {
				return vm.Err()
			}

			cmd.Printf("%s (%s, %s)\n", hike.Name, hike.Location, hike.Date)
			if len(observations) == 0 {
				cmd.Println("No observations yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tOBSERVED AT\tOBSERVATION\tCOMMENTS")
			for i := range observations {
				o := &observations[i]
				note := ""
				if o.Comments != nil {
					note = *o.Comments
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.ID, o.ObservedAt, o.Observation, note)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&addText, "add", "", "Record a new observation with the given text")
	cmd.Flags().StringVar(&comments, "comments", "", "Optional comments for --add")
	cmd.Flags().UintVar(&deleteID, "delete", 0, "Delete the observation with the given id")

	return cmd
}
