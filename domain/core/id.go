package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
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

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	StimulusID    ID
	SessionID     ID
	ParticipantID ID
	AnswerID      ID
)

// String conversions for domain IDs
func (id StimulusID) String() string    { return ID(id).String() }
func (id SessionID) String() string     { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }
func (id AnswerID) String() string      { return ID(id).String() }

// ParseStimulusID parses a string into StimulusID
func ParseStimulusID(s string) (StimulusID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("stimulus ID cannot be empty")
	}
	return StimulusID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	return ParticipantID(s), nil
}
