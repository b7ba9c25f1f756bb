package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/google/uuid"
)

// timeLayout is fixed width with nanoseconds, so stored UTC timestamps
// sort as text in time order and CreatedAt can break sibling ties.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts any RFC 3339 timestamp, including rows written with
// trimmed fractions.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nowUTC returns the current UTC time.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// encodeAttributes serializes item attributes for the TEXT attributes column.
func encodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encoding attributes: %w", err)
	}
	return string(b), nil
}

// decodeAttributes is the inverse of encodeAttributes. Empty maps decode to nil.
func decodeAttributes(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return attrs, nil
}

// prepareForAdd copies the item and fills identity and timestamps.
func prepareForAdd(item *domain.ProjectItem) *domain.ProjectItem {
	c := item.Clone()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := nowUTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	return c
}

func duplicateIdentity(id string) error {
	return fmt.Errorf("project item %s: %w", id, domain.ErrDuplicateIdentity)
}

func itemNotFound(id string) error {
	return fmt.Errorf("project item %s: %w", id, domain.ErrNotFound)
}
