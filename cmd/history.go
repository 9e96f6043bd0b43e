package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"loan-simulator/render"
	"loan-simulator/service"
)

func newHistoryCmd(root *rootFlags) *cobra.Command {
	var (
		limit  int
		id     string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past simulations, or show one with its schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			sym := a.cfg.Display.CurrencySymbol

			if id != "" {
				sim, err := a.loans.Simulation(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return enc.Encode(sim)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, render.RenderSummary(sim.Parameters, simulationResult(sim), sym, 96))
				fmt.Fprintln(out)
				fmt.Fprint(out, render.RenderSchedule(sim.Schedule, sym, 12))
				return nil
			}

			sims, err := a.loans.History(cmd.Context(), service.ClampLimit(limit))
			if err != nil {
				return err
			}
			if asJSON {
				return enc.Encode(sims)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, render.RenderHistory(sims, sym))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultHistoryLimit, "Number of simulations to list")
	cmd.Flags().StringVar(&id, "id", "", "Show a single simulation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
