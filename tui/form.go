package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/service"
)

// formValues holds the raw form input. Amounts accept a comma as decimal
// separator and spaces as thousands separators.
type formValues struct {
	principal string
	rate      string
	years     int
}

func newFormValues(p domain.LoanParameters) *formValues {
	return &formValues{
		principal: strconv.FormatFloat(p.Principal, 'f', -1, 64),
		rate:      strconv.FormatFloat(p.AnnualInterestRatePercent, 'f', -1, 64),
		years:     p.DurationYears,
	}
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func (v *formValues) parameters() (domain.LoanParameters, error) {
	principal, err := parseNumber(v.principal)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: principal %q is not a number", service.ErrInvalidArgument, v.principal)
	}
	rate, err := parseNumber(v.rate)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: rate %q is not a number", service.ErrInvalidArgument, v.rate)
	}
	return domain.LoanParameters{
		Principal:                 principal,
		AnnualInterestRatePercent: rate,
		DurationYears:             v.years,
	}, nil
}

func newParamsForm(v *formValues, limits config.LimitsConfig) *huh.Form {
	years := make([]huh.Option[int], 0, limits.MaxDurationYears-limits.MinDurationYears+1)
	for y := limits.MinDurationYears; y <= limits.MaxDurationYears; y++ {
		label := fmt.Sprintf("%d years", y)
		if y == 1 {
			label = "1 year"
		}
		years = append(years, huh.NewOption(label, y))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Principal borrowed").
				Description(fmt.Sprintf("Between %.0f and %.0f.", limits.MinPrincipal, limits.MaxPrincipal)).
				Value(&v.principal).
				Validate(func(s string) error {
					p, err := parseNumber(s)
					if err != nil {
						return fmt.Errorf("enter a number")
					}
					if p < limits.MinPrincipal || p > limits.MaxPrincipal {
						return fmt.Errorf("must be between %.0f and %.0f", limits.MinPrincipal, limits.MaxPrincipal)
					}
					return nil
				}),
			huh.NewInput().
				Title("Annual interest rate (%)").
				Value(&v.rate).
				Validate(func(s string) error {
					r, err := parseNumber(s)
					if err != nil {
						return fmt.Errorf("enter a number")
					}
					if r < 0 || r > limits.MaxAnnualRate {
						return fmt.Errorf("must be between 0 and %.2f", limits.MaxAnnualRate)
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Duration").
				Options(years...).
				Height(8).
				Value(&v.years),
		),
	).WithShowHelp(true)
}
