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

// MeilleurtauxName identifies quotes scraped from meilleurtaux.com.
const MeilleurtauxName = "meilleurtaux"

// The homepage shows a single average rate on the mortgage card, published
// for 15-year loans.
const meilleurtauxDuration = "15 ans"

// Meilleurtaux scrapes the average rate card of the meilleurtaux homepage.
type Meilleurtaux struct {
	client *Client
	url    string
}

// NewMeilleurtaux returns the source reading url.
func NewMeilleurtaux(client *Client, url string) *Meilleurtaux {
	return &Meilleurtaux{client: client, url: url}
}

func (m *Meilleurtaux) Name() string { return MeilleurtauxName }

func (m *Meilleurtaux) Fetch(ctx context.Context) ([]domain.RateQuote, error) {
	var rate float64
	err := m.client.get(ctx, m.url, func(body io.Reader) error {
		var err error
		rate, err = ParseMeilleurtaux(body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MeilleurtauxName, err)
	}

	label, years := ParseDuration(meilleurtauxDuration)
	m.client.logger.Debug("scraped rate",
		zap.String("source", MeilleurtauxName),
		zap.Float64("rate", rate))

	return []domain.RateQuote{{
		Source:        MeilleurtauxName,
		DurationLabel: label,
		DurationYears: years,
		RatePercent:   rate,
		FetchedAt:     m.client.now(),
	}}, nil
}

// ParseMeilleurtaux extracts the mortgage rate from the homepage HTML.
func ParseMeilleurtaux(r io.Reader) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}

	card := doc.Find(`a.cards.fc[href="/demande-simulation/credit-immobilier/"]`).First()
	if card.Length() == 0 {
		return 0, fmt.Errorf("%w: mortgage card not found", ErrStructureChanged)
	}
	foot := card.Find("div.foot").First()
	if foot.Length() == 0 {
		return 0, fmt.Errorf("%w: card footer not found", ErrStructureChanged)
	}
	tag := foot.Find("b").First()
	if tag.Length() == 0 {
		return 0, fmt.Errorf("%w: rate tag not found", ErrStructureChanged)
	}

	return ParseRate(strings.TrimSpace(tag.Text()))
}
