package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"loan-simulator/domain"
	"loan-simulator/render"
)

func newCalculateCmd(root *rootFlags) *cobra.Command {
	var (
		loan     loanFlags
		schedule bool
		step     int
		charts   bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute monthly payment, interest cost and amortization schedule",
		Example: `  loansim calculate -p 250000 -r 1.5 -y 20
  loansim calculate -p 180000 -r 3.2 -y 25 --schedule --step 12 --charts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			sim, err := a.loans.CalculateLoan(cmd.Context(), domain.LoanInput{
				LoanParameters:  loan.parameters(),
				IncludeSchedule: schedule || charts || asJSON,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sim)
			}

			sym := a.cfg.Display.CurrencySymbol
			result := simulationResult(sim)

			fmt.Fprintln(out)
			fmt.Fprintln(out, render.RenderTitle("LOAN SIMULATION"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, render.RenderSummary(sim.Parameters, result, sym, 96))

			if charts {
				fmt.Fprintln(out)
				fmt.Fprintln(out, render.CumulativeChart(sim.Schedule, sym, a.cfg.Display.ChartWidth, a.cfg.Display.ChartHeight))
				fmt.Fprintln(out, render.CompositionChart(sim.Schedule, sym, a.cfg.Display.ChartWidth, max(a.cfg.Display.ChartHeight/2, 4)))
			}
			if schedule {
				fmt.Fprintln(out)
				fmt.Fprint(out, render.RenderSchedule(sim.Schedule, sym, step))
			}
			return nil
		},
	}

	loan.register(cmd)
	cmd.Flags().BoolVarP(&schedule, "schedule", "s", false, "Print the amortization table")
	cmd.Flags().IntVar(&step, "step", 1, "Print every n-th month of the table")
	cmd.Flags().BoolVar(&charts, "charts", false, "Draw the cumulative and monthly composition charts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the simulation as JSON")
	return cmd
}
