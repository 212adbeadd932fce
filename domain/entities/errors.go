package entities

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSnapshot     = errors.New("invalid snapshot")
	ErrSessionNotFound     = errors.New("session not found")
	ErrCollaboratorTimeout = errors.New("external collaborator timeout")
)

// InvalidSnapshotError reports a missing or malformed required snapshot field
type InvalidSnapshotError struct {
	Field  string
	Reason string
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s %s", e.Field, e.Reason)
}

func (e *InvalidSnapshotError) Is(target error) bool { return target == ErrInvalidSnapshot }

// SessionNotFoundError is returned for unknown or expired session ids
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found or expired", e.SessionID)
}

func (e *SessionNotFoundError) Is(target error) bool { return target == ErrSessionNotFound }

// ExternalCollaboratorTimeout means a browser or AI call did not finish in time
type ExternalCollaboratorTimeout struct {
	Collaborator string
	Err          error
}

func (e *ExternalCollaboratorTimeout) Error() string {
	return fmt.Sprintf("%s did not respond in time: %v", e.Collaborator, e.Err)
}

func (e *ExternalCollaboratorTimeout) Is(target error) bool { return target == ErrCollaboratorTimeout }

func (e *ExternalCollaboratorTimeout) Unwrap() error { return e.Err }
