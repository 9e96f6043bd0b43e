package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"loan-simulator/tui"
)

func newTUICmd(root *rootFlags) *cobra.Command {
	var loan loanFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive simulator with charts, schedule and market rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			lipgloss.SetColorProfile(termenv.TrueColor)

			model := tui.NewApp(a.loans, a.rates, a.cfg.Display, loan.parameters())
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	loan.register(cmd)
	return cmd
}
