package format

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseISO8601 parses a timestamp or a plain date. The research filters accept
// both forms, everything else on the API uses full RFC3339 timestamps.
func ParseISO8601(dateStr string) time.Time {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err == nil {
		return t
	}

	t, err = time.Parse(time.DateOnly, dateStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date input, not ISO8601 compatible")
	}
	return t
}
