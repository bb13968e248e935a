package drive

import "errors"

// The four conditions callers of Drive see. Internal failure detail is
// logged, never returned.
var (
	// ErrConflict indicates the request contradicts current state: a name
	// collision, or a parent id that does not reference a folder.
	ErrConflict = errors.New("drive: conflict with current state")

	// ErrNotFound indicates no record satisfies every predicate of the
	// request. Which predicate failed is deliberately not disclosed.
	ErrNotFound = errors.New("drive: not found")

	// ErrUnavailable indicates an external write failed and the upload was
	// rolled back; the client may retry.
	ErrUnavailable = errors.New("drive: storage unavailable")

	// ErrCorrupted marks integrity violations detected during retrieval.
	// It is always joined with ErrNotFound so callers see a plain missing
	// file while operators can tell the difference.
	ErrCorrupted = errors.New("drive: content integrity violated")
)
