package domain

import "time"

// Session is a visitor of the HTTP API, identified by cookie.
type Session struct {
	ID           string    `json:"id"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	StartedAt    time.Time `json:"started_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	RequestCount int       `json:"request_count"`
}

// Duration is the time elapsed between the first and the last request.
func (s Session) Duration() time.Duration {
	return s.LastSeenAt.Sub(s.StartedAt)
}
