package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"fintrack/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type report struct {
	Currency    string               `json:"currency"`
	Dashboard   *service.Dashboard   `json:"dashboard"`
	Predictions *service.Predictions `json:"predictions"`
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print totals, monthly sums and the balance projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			profile, err := service.NewSettingsService(store).Profile()
			if err != nil {
				return err
			}
			analytics := service.NewAnalyticsService(store)
			dashboard, err := analytics.Dashboard()
			if err != nil {
				return err
			}
			predictions, err := analytics.Predictions()
			if err != nil {
				return err
			}

			r := report{Currency: profile.Currency, Dashboard: dashboard, Predictions: predictions}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			return writeReport(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func writeReport(out io.Writer, r report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	money := func(f float64) string { return decimal.NewFromFloat(f).StringFixed(2) + " " + r.Currency }

	fmt.Fprintln(w, "OVERVIEW\t")
	fmt.Fprintf(w, "Total income\t%s\n", money(r.Dashboard.TotalIncome))
	fmt.Fprintf(w, "Total outgoing\t%s\n", money(r.Dashboard.TotalOutgoing))
	fmt.Fprintf(w, "Balance\t%s\n", money(r.Dashboard.Balance))
	fmt.Fprintln(w, "\t")

	fmt.Fprintln(w, "MONTH\tINCOME\tOUTGOING")
	income, outgoing := map[string]float64{}, map[string]float64{}
	for _, m := range r.Dashboard.MonthlyIncome {
		income[m.Month] = m.Total
	}
	for _, m := range r.Dashboard.MonthlyOutgoing {
		outgoing[m.Month] = m.Total
	}
	months := make([]string, 0, len(income)+len(outgoing))
	for month := range income {
		months = append(months, month)
	}
	for month := range outgoing {
		if _, ok := income[month]; !ok {
			months = append(months, month)
		}
	}
	sort.Strings(months)
	for _, month := range months {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", month, income[month], outgoing[month])
	}
	fmt.Fprintln(w, "\t")

	p := r.Predictions
	fmt.Fprintln(w, "PROJECTION\t")
	fmt.Fprintf(w, "Avg monthly income\t%s\n", money(p.AvgMonthlyIncome))
	fmt.Fprintf(w, "Avg monthly outgoing\t%s\n", money(p.AvgMonthlyOutgoing))
	fmt.Fprintf(w, "Monthly subscriptions\t%s\n", money(p.SubscriptionMonthlyTotal))
	fmt.Fprintf(w, "Savings rate\t%.1f%%\n", p.SavingsRate)
	fmt.Fprintf(w, "In 1 week\t%s\n", money(p.Projection.Week))
	fmt.Fprintf(w, "In 1 month\t%s\n", money(p.Projection.Month))
	fmt.Fprintf(w, "In 3 months\t%s\n", money(p.Projection.ThreeMonths))

	if len(p.CategoryTrends) > 0 {
		fmt.Fprintln(w, "\t")
		fmt.Fprintln(w, "CATEGORY\tLAST 3 MONTHS\tCHANGE")
		for _, t := range p.CategoryTrends {
			fmt.Fprintf(w, "%s\t%.2f\t%+.1f%% %s\n", t.Category, t.Recent, t.ChangePercent, t.Direction)
		}
	}
	return w.Flush()
}
