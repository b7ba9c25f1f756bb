package domain

import "time"

// ProjectItem is the persisted node of a project's installation structure.
// ParentID is nil only for the project's root item.
type ProjectItem struct {
	ID         string
	ProjectID  string
	ParentID   *string
	Type       ItemType
	Name       string
	OrderIndex int
	Attributes map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsRoot reports whether the item has no parent.
func (p *ProjectItem) IsRoot() bool {
	return p.ParentID == nil
}

// ParentIDValue returns the parent id or "" for the root.
func (p *ProjectItem) ParentIDValue() string {
	if p.ParentID == nil {
		return ""
	}
	return *p.ParentID
}

// Clone returns a deep copy. Callers mutate clones, never shared entities.
func (p *ProjectItem) Clone() *ProjectItem {
	if p == nil {
		return nil
	}
	c := *p
	if p.ParentID != nil {
		parent := *p.ParentID
		c.ParentID = &parent
	}
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

// ValidateName rejects empty labels. Whitespace is kept as typed.
func ValidateName(name string) error {
	if name == "" {
		return NewInvalidName(name)
	}
	return nil
}
