package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Domain-specific ID types
type (
	RunID   ID
	SweepID ID
)

func NewRunID() RunID     { return RunID(NewID()) }
func NewSweepID() SweepID { return SweepID(NewID()) }

func (id RunID) String() string   { return ID(id).String() }
func (id SweepID) String() string { return ID(id).String() }
