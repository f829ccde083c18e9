package spotify

import (
	"errors"
	"fmt"
)

// Kind identifies which public resource a request targets.
type Kind string

const (
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
)

// ValidationError reports a caller-fixable input problem, raised before
// any request reaches the upstream.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ResourceError reports that the upstream rejected a query or returned a
// malformed document for a specific resource kind. The upstream's own
// error text is preserved verbatim in Detail.
type ResourceError struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *ResourceError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

var (
	// ErrInvalidJSON marks upstream payloads whose top level is not a
	// JSON object.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrUnrecognizedInput marks identifiers that matched no known input
	// form and were passed through unchanged.
	ErrUnrecognizedInput = errors.New("unrecognized resource identifier form")

	// ErrHashUnavailable means no persisted-query hash is configured for
	// the requested operation.
	ErrHashUnavailable = errors.New("persisted query hash unavailable")
)

func resourceError(kind Kind, message string, err error) *ResourceError {
	return &ResourceError{Kind: kind, Message: message, Detail: err.Error()}
}
