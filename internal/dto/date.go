package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
)

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty value yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date %q", errs.ErrInvalidInput, value)
}
