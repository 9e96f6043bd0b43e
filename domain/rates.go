package domain

import "time"

// RateQuote is one published mortgage rate scraped from a broker site.
type RateQuote struct {
	Source        string    `json:"source"`
	DurationLabel string    `json:"duration_label"`
	DurationYears int       `json:"duration_years"`
	RatePercent   float64   `json:"rate_percent"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// RateBoard groups the latest quotes of every configured source.
type RateBoard struct {
	Quotes    map[string][]RateQuote `json:"quotes"`
	Errors    map[string]string      `json:"errors,omitempty"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// RateFor returns the first quote of source for the given duration.
func (b RateBoard) RateFor(source string, years int) (RateQuote, bool) {
	for _, q := range b.Quotes[source] {
		if q.DurationYears == years {
			return q, true
		}
	}
	return RateQuote{}, false
}
