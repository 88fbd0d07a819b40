package domain

import "errors"

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")

	// Registry and lifecycle errors; surfaced to the caller with no retry.
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
	ErrUnauthorized = errors.New("role not authorized for this action")

	// Capability boundary errors. Unavailable covers call failure and
	// timeout; MalformedResponse covers a reply that failed contract
	// validation. Neither is ever turned into a guessed default.
	ErrCapabilityUnavailable = errors.New("external capability unavailable")
	ErrMalformedResponse     = errors.New("malformed capability response")

	// ErrNoArtifacts is the only error that fails a report pipeline run
	// outright.
	ErrNoArtifacts = errors.New("no audio artifacts provided")
)
