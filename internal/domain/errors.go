package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Every leaf error below matches exactly one of them
// through errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrStructuralIntegrity = errors.New("structural integrity error")
)

var (
	ErrInvalidChildType = errors.New("invalid child type")
	ErrInvalidName      = errors.New("invalid name")
	ErrUnknownType      = errors.New("unknown item type")

	ErrMissingRoot     = errors.New("missing root")
	ErrOrphanReference = errors.New("orphan reference")
	ErrCycleDetected   = errors.New("cycle detected")

	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("duplicate identity")

	ErrCannotDeleteRoot = errors.New("cannot delete root item")
	ErrPersistence      = errors.New("persistence error")
	ErrNotReady         = errors.New("project not ready")
)

// ValidationError reports bad caller input. It is always raised before the
// store is touched.
type ValidationError struct {
	Kind   error // ErrInvalidChildType, ErrInvalidName or ErrUnknownType
	Type   ItemType
	Parent ItemType
	Name   string
}

func NewInvalidChildType(child, parent ItemType) *ValidationError {
	return &ValidationError{Kind: ErrInvalidChildType, Type: child, Parent: parent}
}

func NewInvalidName(name string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidName, Name: name}
}

func NewUnknownType(t ItemType) *ValidationError {
	return &ValidationError{Kind: ErrUnknownType, Type: t}
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrInvalidChildType:
		return fmt.Sprintf("%v: %q is not allowed under %q", e.Kind, e.Type, e.Parent)
	case ErrInvalidName:
		return fmt.Sprintf("%v: %q must not be empty", e.Kind, e.Name)
	case ErrUnknownType:
		return fmt.Sprintf("%v: %q", e.Kind, e.Type)
	}
	return fmt.Sprintf("%v", e.Kind)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == e.Kind
}

// IntegrityError reports corrupted persisted structure found while building
// a tree. The load that hit it is abandoned.
type IntegrityError struct {
	Kind   error // ErrMissingRoot, ErrOrphanReference, ErrCycleDetected or ErrDuplicateIdentity
	ItemID string
	Detail string
}

func (e *IntegrityError) Error() string {
	msg := e.Kind.Error()
	if e.ItemID != "" {
		msg += " at item " + e.ItemID
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrStructuralIntegrity || target == e.Kind
}

// PersistenceError wraps a store failure together with the operation and
// the item it was applied to.
type PersistenceError struct {
	Op     string
	ItemID string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("%v: %s: %v", ErrPersistence, e.Op, e.Err)
	}
	return fmt.Sprintf("%v: %s item %s: %v", ErrPersistence, e.Op, e.ItemID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
