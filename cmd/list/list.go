// Package list implements the one-shot hike listing command.
package list

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hikelog/internal/app"
	"hikelog/internal/datastore"
	"hikelog/internal/viewmodel"
)

// Command creates the list command.
func Command(ctx *app.Context) *cobra.Command {
	var (
		prefix    string
		name      string
		location  string
		minLen    float64
		maxLen    float64
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hikes with their observation counts",
		Long: `List hikes with their observation counts.

With --prefix the list is filtered by case-insensitive name prefix and
ordered by name. With any advanced flag (--name, --location, --min-len,
--max-len, --from, --to) the matching hikes are listed by date, newest
first. The two modes are mutually exclusive; without flags the full list
is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			advanced := cmd.Flags().Changed("name") || cmd.Flags().Changed("location") ||
				cmd.Flags().Changed("min-len") || cmd.Flags().Changed("max-len") ||
				cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
			if advanced && cmd.Flags().Changed("prefix") {
				return fmt.Errorf("--prefix cannot be combined with advanced search flags")
			}

			vm := viewmodel.NewListViewModel(ctx.Repo)
			defer vm.Close()

			switch {
			case advanced:
				vm.SetAdvanced(name, location,
					changedFloat(cmd, "min-len", minLen),
					changedFloat(cmd, "max-len", maxLen),
					startDate, endDate)
			case prefix != "":
				vm.SetPrefix(prefix)
			}

			hikes, ok := <-vm.Hikes()
			if !ok {
				return vm.Err()
			}
			PrintHikes(os.Stdout, hikes)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Filter by name prefix (case-insensitive)")
	cmd.Flags().StringVar(&name, "name", "", "Advanced: name starts with")
	cmd.Flags().StringVar(&location, "location", "", "Advanced: location starts with")
	cmd.Flags().Float64Var(&minLen, "min-len", 0, "Advanced: minimum length in km")
	cmd.Flags().Float64Var(&maxLen, "max-len", 0, "Advanced: maximum length in km")
	cmd.Flags().StringVar(&startDate, "from", "", "Advanced: earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "to", "", "Advanced: latest date (YYYY-MM-DD)")

	return cmd
}

func changedFloat(cmd *cobra.Command, flag string, value float64) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

// PrintHikes renders a hike result set as an aligned table.
func PrintHikes(out *os.File, hikes []datastore.HikeWithObsCount) {
	if len(hikes) == 0 {
		fmt.Fprintln(out, "No hikes recorded.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tNAME\tLOCATION\tKM\tDIFFICULTY\tPARKING\tOBS")
	for i := range hikes {
		h := &hikes[i]
		parking := "no"
		if h.ParkingAvailable {
			parking = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%s\t%s\t%d\n",
			h.ID, h.Date, h.Name, h.Location, h.LengthKm, h.Difficulty, parking, h.ObsCount)
	}
	w.Flush()
}
