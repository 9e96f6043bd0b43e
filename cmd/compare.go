package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"loan-simulator/domain"
	"loan-simulator/render"
)

func newCompareCmd(root *rootFlags) *cobra.Command {
	var (
		principal float64
		rates     map[string]string
		source    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one principal over several durations",
		Long: "Compare one principal over several durations, each with its own rate.\n" +
			"Rates always come from --rate. With --source the rates a broker publishes for the\n" +
			"same durations are printed next to the comparison, for reference only.",
		Example: `  loansim compare -p 250000 --rate 15=3.05,20=3.20,25=3.40
  loansim compare -p 250000 --rate 20=3.10 --source empruntis`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			input := domain.CompareInput{Principal: principal, Rates: make(map[int]float64)}
			for y, r := range rates {
				years, err := strconv.Atoi(y)
				if err != nil {
					return fmt.Errorf("duration %q is not a number of years", y)
				}
				rate, err := strconv.ParseFloat(r, 64)
				if err != nil {
					return fmt.Errorf("rate %q for %d years is not a number", r, years)
				}
				input.Rates[years] = rate
			}

			result, err := a.compare.Compare(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, render.RenderComparison(result, a.cfg.Display.CurrencySymbol))

			if source != "" {
				board, err := a.rates.Board(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, publishedRates(board, source, result))
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&principal, "principal", "p", 250_000, "Amount borrowed")
	cmd.Flags().StringToStringVar(&rates, "rate", nil, "Rates per duration, as years=percent pairs")
	cmd.Flags().StringVar(&source, "source", "", "Show the rates published by a broker (meilleurtaux, empruntis) for reference")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")
	return cmd
}

// publishedRates lists, for each compared duration, the rate source publishes
// beside the rate the comparison used.
func publishedRates(board domain.RateBoard, source string, result domain.CompareResult) string {
	if msg, failed := board.Errors[source]; failed {
		return fmt.Sprintf("  %s unavailable: %s\n", source, msg)
	}
	t := render.Table{
		Title:   "Published by " + source,
		Headers: []string{"Duration", "Your rate", "Published"},
	}
	for _, o := range result.Options {
		published := "-"
		if q, ok := board.RateFor(source, o.DurationYears); ok {
			published = render.FormatPercent(q.RatePercent)
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d years", o.DurationYears),
			render.FormatPercent(o.AnnualRate),
			published,
		})
	}
	return render.RenderTable(t)
}
