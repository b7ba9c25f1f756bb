package domain

import "time"

// Project owns exactly one rooted tree of project items.
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
