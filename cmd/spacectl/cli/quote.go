package cli

import (
	"fmt"
	"text/tabwriter"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/pricing"

	"github.com/spf13/cobra"
)

func quoteCmd() *cobra.Command {
	var locationFile, date, start, end, tier, activity string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a window against a location file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := loadLocation(locationFile)
			if err != nil {
				return err
			}
			w, err := calendar.ParseWindow(date, start, end)
			if err != nil {
				return err
			}
			t, err := pricing.ParseTier(tier)
			if err != nil {
				return err
			}
			a, err := pricing.ParseActivity(activity)
			if err != nil {
				return err
			}
			q, err := loc.Quote(pricing.QuoteInput{Window: w, Tier: t, Activity: a})
			if err != nil {
				return err
			}
			q = q.Rounded()

			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, q)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Window\t%s (%s)\n", w, loc.Timezone())
			fmt.Fprintf(tw, "Rate\t%.2f/h x %.1fh\n", q.HourlyRate, q.DurationHours)
			fmt.Fprintf(tw, "Subtotal\t%.2f\n", q.Subtotal)
			for _, f := range q.AdditiveFees {
				fmt.Fprintf(tw, "  %s (%s)\t%.2f\n", f.Name, f.Kind, f.Amount)
			}
			fmt.Fprintf(tw, "Service fee\t%.2f\n", q.ServiceFee)
			fmt.Fprintf(tw, "Total\t%.2f\n", q.Total)
			if q.BelowMinimum {
				fmt.Fprintf(tw, "Note\tbelow the %.1fh minimum\n", q.MinimumHours)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&locationFile, "location", "", "Location snapshot JSON file")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM); at or before start runs past midnight")
	cmd.Flags().StringVar(&tier, "tier", string(pricing.TierMedium), "Tier")
	cmd.Flags().StringVar(&activity, "activity", string(pricing.ActivityPhoto), "Activity")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
