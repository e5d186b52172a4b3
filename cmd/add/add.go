// Package add implements the command that records a new hike.
package add

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"hikelog/internal/app"
	"hikelog/internal/form"
	"hikelog/internal/viewmodel"
)

// Command creates the add command.
func Command(ctx *app.Context) *cobra.Command {
	var (
		draft   form.HikeForm
		parking string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new hike",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch parking {
			case "yes":
				v := true
				draft.Parking = &v
			case "no":
				v := false
				draft.Parking = &v
			case "":
				// left unset, validation flags it
			default:
				return fmt.Errorf("invalid --parking value %q, expected yes or no", parking)
			}

			vm := viewmodel.NewFormViewModel(ctx.Repo)
			vm.Update(func(form.HikeForm) form.HikeForm { return draft })

			if errs := vm.Validate(); len(errs) > 0 {
				printFieldErrors(cmd, errs)
				return fmt.Errorf("hike not saved, %d field(s) invalid", len(errs))
			}

			id, err := vm.Save()
			if err != nil {
				return err
			}
			cmd.Printf("Saved hike %d: %s\n", id, draft.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "Hike name (required)")
	cmd.Flags().StringVar(&draft.Location, "location", "", "Location (required)")
	cmd.Flags().StringVar(&draft.Date, "date", "", "Date as YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&parking, "parking", "", "Parking available: yes or no (required)")
	cmd.Flags().StringVar(&draft.LengthKm, "length", "", "Length in km (required, positive)")
	cmd.Flags().StringVar(&draft.Difficulty, "difficulty", "", "Difficulty: EASY, MODERATE or HARD (required)")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Optional description")
	cmd.Flags().StringVar(&draft.ElevationGainM, "elevation", "", "Optional elevation gain in meters")
	cmd.Flags().StringVar(&draft.GroupSize, "group-size", "", "Optional group size")

	return cmd
}

func printFieldErrors(cmd *cobra.Command, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		cmd.PrintErrf("  %s: %s\n", field, errs[field])
	}
}
