// Package scraper fetches published mortgage rates from French broker sites.
//
// Each source turns one page into a list of quotes keyed by loan duration.
// Page structure is outside our control, so every selector miss is reported
// as ErrStructureChanged rather than as an empty result.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"loan-simulator/domain"
)

var (
	// ErrStructureChanged means the expected HTML elements were not found.
	ErrStructureChanged = errors.New("page structure changed")
	// ErrUpstreamStatus means the site answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// Source is a site publishing mortgage rates.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RateQuote, error)
}

// Client performs the HTTP side shared by all sources.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *zap.Logger
	now       func() time.Time
}

// NewClient returns a client with the given per-request timeout.
func NewClient(timeout time.Duration, userAgent string, logger *zap.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
		now:       time.Now,
	}
}

// get fetches url and hands the body to parse.
func (c *Client) get(ctx context.Context, url string, parse func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, url, resp.StatusCode)
	}
	return parse(resp.Body)
}

var durationPattern = regexp.MustCompile(`(\d+)\s*ans?`)

// ParseRate converts a French-formatted percentage ("3,25 %") to a float.
func ParseRate(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.ReplaceAll(cleaned, "%", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSpace(cleaned)
	rate, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("rate %q: %w", text, err)
	}
	return rate, nil
}

// ParseDuration normalizes a duration caption such as "sur 15 ans(1)" to its
// label ("15 ans") and number of years. Years is 0 when no number is found.
func ParseDuration(text string) (string, int) {
	label := strings.TrimSpace(strings.SplitN(text, "(", 2)[0])
	label = strings.TrimSpace(strings.TrimPrefix(label, "sur "))

	m := durationPattern.FindStringSubmatch(label)
	if m == nil {
		return label, 0
	}
	years, _ := strconv.Atoi(m[1])
	return label, years
}
