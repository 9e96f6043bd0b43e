package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loan-simulator/export"
)

func newExportCmd(root *rootFlags) *cobra.Command {
	var (
		loan   loanFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the amortization schedule to a CSV, XLSX, PDF or JSON file",
		Example: `  loansim export -p 250000 -r 1.5 -y 20 --format pdf
  loansim export --format csv -o - | head`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			params := loan.parameters()
			result, err := a.loans.Schedule(params)
			if err != nil {
				return err
			}
			schedule := export.Schedule{Parameters: params, Result: result}

			if output == "-" {
				return export.Write(cmd.OutOrStdout(), f, schedule)
			}
			if output == "" {
				output = schedule.Filename(f)
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.Write(file, f, schedule); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "  Wrote %s (%d months)\n", output, len(result.Schedule))
			return nil
		},
	}

	loan.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, xlsx, pdf or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default derived from the parameters)")
	return cmd
}
