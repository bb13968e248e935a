// Package ledger provides the client for the append-only provenance ledger.
// The ledger anchors each file id to its content identifier with a
// tamper-evident transaction; this package only speaks the narrow
// record/resolve contract, never the ledger's internal chain format.
package ledger

import "context"

// Client is the narrow contract the pipelines consume.
type Client interface {
	// Record anchors (fileID, contentID) on the ledger and returns the
	// transaction identifier of the anchoring entry.
	Record(ctx context.Context, fileID, contentID string) (string, error)

	// Resolve returns the content identifier anchored for fileID.
	Resolve(ctx context.Context, fileID string) (string, error)
}
