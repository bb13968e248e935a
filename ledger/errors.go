package ledger

import "errors"

var (
	// ErrConnectionFailed indicates the ledger node could not be reached.
	ErrConnectionFailed = errors.New("ledger: connection failed")

	// ErrInvalidResponse indicates the response could not be decoded or
	// did not match the request.
	ErrInvalidResponse = errors.New("ledger: invalid response")

	// ErrNotAnchored indicates no anchoring entry exists for the file id.
	ErrNotAnchored = errors.New("ledger: file not anchored")

	// ErrRejected indicates the ledger refused the anchoring submission.
	ErrRejected = errors.New("ledger: submission rejected")
)
