package records

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const ClockLayout = "15:04"

var ErrInvalidTime = errors.New("time must be HH:MM (24h)")

// NormalizeTime parses a 24h clock time and renders it as HH:MM, so "9:00"
// and "09:00" name the same slot.
func NormalizeTime(raw string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return t.Format(ClockLayout), nil
}
