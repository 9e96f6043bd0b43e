package scraper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"loan-simulator/domain"
)

// EmpruntisName identifies quotes scraped from empruntis.com.
const EmpruntisName = "empruntis"

// Empruntis scrapes the best-rate barometer (15, 20, 25 years).
type Empruntis struct {
	client *Client
	url    string
}

// NewEmpruntis returns the source reading url.
func NewEmpruntis(client *Client, url string) *Empruntis {
	return &Empruntis{client: client, url: url}
}

func (e *Empruntis) Name() string { return EmpruntisName }

func (e *Empruntis) Fetch(ctx context.Context) ([]domain.RateQuote, error) {
	var quotes []domain.RateQuote
	err := e.client.get(ctx, e.url, func(body io.Reader) error {
		var skipped []string
		var err error
		quotes, skipped, err = ParseEmpruntis(body)
		for _, s := range skipped {
			e.client.logger.Warn("rate not convertible to a number",
				zap.String("source", EmpruntisName),
				zap.String("text", s))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EmpruntisName, err)
	}

	now := e.client.now()
	for i := range quotes {
		quotes[i].FetchedAt = now
	}
	return quotes, nil
}

// ParseEmpruntis extracts one quote per duration block. Blocks whose rate is
// not a number are skipped and their raw text returned in skipped.
func ParseEmpruntis(r io.Reader) (quotes []domain.RateQuote, skipped []string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing html: %w", err)
	}

	board := doc.Find("div.blocs_meilleur_taux").First()
	if board.Length() == 0 {
		return nil, nil, fmt.Errorf("%w: best-rate block not found", ErrStructureChanged)
	}

	board.Find("div.body_taux").Each(func(_ int, s *goquery.Selection) {
		durationTag := s.Find("span.txt_taux").First()
		rateTag := s.Find("span.taux").First()
		if durationTag.Length() == 0 || rateTag.Length() == 0 {
			return
		}

		rateText := strings.TrimSpace(rateTag.Text())
		rate, err := ParseRate(rateText)
		if err != nil {
			skipped = append(skipped, rateText)
			return
		}

		label, years := ParseDuration(durationTag.Text())
		quotes = append(quotes, domain.RateQuote{
			Source:        EmpruntisName,
			DurationLabel: label,
			DurationYears: years,
			RatePercent:   rate,
		})
	})

	if len(quotes) == 0 {
		return nil, skipped, fmt.Errorf("%w: no rate could be read", ErrStructureChanged)
	}
	return quotes, skipped, nil
}
