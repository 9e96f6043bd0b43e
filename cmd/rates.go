package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"loan-simulator/render"
)

func newRatesCmd(root *rootFlags) *cobra.Command {
	var (
		refresh bool
		history int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show mortgage rates published by French brokers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			if history > 0 {
				quotes, err := a.rates.LatestSnapshots(cmd.Context(), history)
				if err != nil {
					return err
				}
				if asJSON {
					return enc.Encode(quotes)
				}
				t := render.Table{
					Title:   "Rate snapshots",
					Headers: []string{"Fetched", "Source", "Duration", "Rate"},
				}
				for _, q := range quotes {
					t.Rows = append(t.Rows, []string{
						q.FetchedAt.Local().Format("2006-01-02 15:04"),
						q.Source,
						q.DurationLabel,
						render.FormatPercent(q.RatePercent),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, render.RenderTable(t))
				return nil
			}

			load := a.rates.Board
			if refresh {
				load = a.rates.Refresh
			}
			board, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return enc.Encode(board)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, render.RenderRateBoard(board))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Scrape the sources even if cached rates exist")
	cmd.Flags().IntVar(&history, "history", 0, "Show the n most recent stored quotes instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
