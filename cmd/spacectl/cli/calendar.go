package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"space-booking/internal/domain/calendar"

	"github.com/spf13/cobra"
)

type calendarOutput struct {
	Timezone string       `json:"timezone"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Days     []calendarDay `json:"days"`
}

type calendarDay struct {
	Date  string `json:"date"`
	State string `json:"state"`
	Hours []int  `json:"hours,omitempty"`
}

func calendarCmd() *cobra.Command {
	var locationFile, from, to string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show blackout occupancy of a location file over a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := loadLocation(locationFile)
			if err != nil {
				return err
			}
			f, err := calendar.ParseDate(from)
			if err != nil {
				return err
			}
			t, err := calendar.ParseDate(to)
			if err != nil {
				return err
			}
			rng, err := calendar.NewRange(f, t)
			if err != nil {
				return err
			}

			occ := loc.Occupancy(rng, nil, time.Now())
			result := calendarOutput{Timezone: loc.Timezone(), From: f.String(), To: t.String()}
			for _, d := range occ.Days(rng) {
				result.Days = append(result.Days, calendarDay{Date: d.Date.String(), State: string(d.State), Hours: d.Hours})
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, result)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "DATE\tSTATE\tBLOCKED HOURS\n")
			for _, d := range result.Days {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Date, d.State, formatHours(d.Hours))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&locationFile, "location", "", "Location snapshot JSON file")
	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func formatHours(hours []int) string {
	if len(hours) == 0 {
		return "-"
	}
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d", h)
	}
	return strings.Join(parts, ",")
}
