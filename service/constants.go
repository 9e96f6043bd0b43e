package service

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500

	// MaxCompareDurations bounds how many durations one comparison may contain.
	MaxCompareDurations = 30
)

// ClampLimit brings a requested list size into [1, MaxHistoryLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
