package domain

import "time"

// VersionState is the lifecycle stage of a collection.
type VersionState string

const (
	// VersionBuilding is a collection being populated. Not visible to search.
	VersionBuilding VersionState = "building"

	// VersionValidated is a populated collection that passed promotion checks.
	VersionValidated VersionState = "validated"

	// VersionActive is the collection searches read from.
	VersionActive VersionState = "active"

	// VersionRetired is a previously active collection. Kept until removed
	// by an operator.
	VersionRetired VersionState = "retired"
)

// IsValid reports whether the state is known.
func (s VersionState) IsValid() bool {
	switch s {
	case VersionBuilding, VersionValidated, VersionActive, VersionRetired:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s VersionState) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Retired versions may be re-validated by a rollback.
func (s VersionState) CanTransitionTo(next VersionState) bool {
	switch s {
	case VersionBuilding:
		return next == VersionValidated
	case VersionValidated:
		return next == VersionActive
	case VersionActive:
		return next == VersionRetired
	case VersionRetired:
		return next == VersionValidated
	default:
		return false
	}
}

// Version is the lifecycle record of one collection.
type Version struct {
	// Name is the collection name.
	Name string

	// Namespace groups the versions of one logical index.
	Namespace string

	State VersionState

	// EntryCount is the number of entries at the last state change.
	EntryCount int

	CreatedAt  time.Time
	PromotedAt *time.Time
	RetiredAt  *time.Time
}
