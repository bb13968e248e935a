package content

import "errors"

var (
	// ErrNotFound indicates no content exists for the given identifier.
	ErrNotFound = errors.New("content: content not found")

	// ErrInvalidContentID indicates the identifier is not a 64-character
	// hex string.
	ErrInvalidContentID = errors.New("content: invalid content id")

	// ErrEmptyContent indicates an attempt to store empty content.
	ErrEmptyContent = errors.New("content: content is empty")

	// ErrIOFailure indicates a file read/write error in the local store.
	ErrIOFailure = errors.New("content: I/O failure")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("content: invalid base directory")

	// ErrGatewayFailure indicates the remote gateway could not be reached
	// or answered with a non-success status.
	ErrGatewayFailure = errors.New("content: gateway request failed")

	// ErrHashMismatch indicates fetched content does not hash to the
	// identifier it was requested under.
	ErrHashMismatch = errors.New("content: content hash mismatch")
)
