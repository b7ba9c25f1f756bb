package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bsolutions/shes/internal/domain"
	"github.com/google/uuid"
)

var testClock atomic.Int64

// tick returns strictly increasing timestamps so fixture order is stable.
func tick() time.Time {
	n := testClock.Add(1)
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Millisecond)
}

func NewTestProject(name string) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProjectItem options
type ItemOption func(*domain.ProjectItem)

func WithItemID(id string) ItemOption {
	return func(i *domain.ProjectItem) {
		i.ID = id
	}
}

func WithParent(id string) ItemOption {
	return func(i *domain.ProjectItem) {
		i.ParentID = &id
	}
}

func WithOrder(order int) ItemOption {
	return func(i *domain.ProjectItem) {
		i.OrderIndex = order
	}
}

func WithAttribute(key, value string) ItemOption {
	return func(i *domain.ProjectItem) {
		if i.Attributes == nil {
			i.Attributes = map[string]string{}
		}
		i.Attributes[key] = value
	}
}

func NewTestItem(projectID string, t domain.ItemType, name string, opts ...ItemOption) *domain.ProjectItem {
	now := tick()
	item := &domain.ProjectItem{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Type:      t,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// ScenarioItems returns the Building(1) > Floor(2) > Cabinet(3) structure
// with fixed ids "1", "2" and "3".
func ScenarioItems(projectID string) []*domain.ProjectItem {
	return []*domain.ProjectItem{
		NewTestItem(projectID, domain.TypeBuilding, "HQ", WithItemID("1")),
		NewTestItem(projectID, domain.TypeFloor, "Ground", WithItemID("2"), WithParent("1")),
		NewTestItem(projectID, domain.TypeCabinet, "Distribution", WithItemID("3"), WithParent("2")),
	}
}

// Chain builds a root plus depth-1 nested descendants, all of type t, with
// ids "<prefix>0".."<prefix>N".
func Chain(projectID string, t domain.ItemType, prefix string, depth int) []*domain.ProjectItem {
	items := make([]*domain.ProjectItem, 0, depth)
	for i := 0; i < depth; i++ {
		opts := []ItemOption{WithItemID(fmt.Sprintf("%s%d", prefix, i))}
		if i > 0 {
			opts = append(opts, WithParent(fmt.Sprintf("%s%d", prefix, i-1)))
		}
		items = append(items, NewTestItem(projectID, t, fmt.Sprintf("level %d", i), opts...))
	}
	return items
}
