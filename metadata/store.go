package metadata

import "context"

// RecentPageSize is the number of entries per page returned by RecentResources.
const RecentPageSize = 10

// Store is the durable metadata contract the pipelines depend on. Both
// implementations (BoltStore, SQLStore) seal encryption material at rest and
// unseal it only on FindVisible.
type Store interface {
	// CreateTentative writes a new record without provenance pointers and
	// returns the assigned id. This is the upload pipeline's durability
	// checkpoint: the record is not retrievable until Finalize.
	CreateTentative(ctx context.Context, rec *FileRecord) (string, error)

	// Finalize attaches the provenance pointers to a tentative record,
	// making it eligible for retrieval.
	Finalize(ctx context.Context, id, contentID, txID string) error

	// Delete removes a record owned by ownerID. Deleting an absent record
	// is a no-op, so the compensation path is idempotent.
	Delete(ctx context.Context, id, ownerID string) error

	// FileExists reports whether a non-folder record with this name exists
	// for the owner. Folder placement is deliberately ignored: file names
	// are unique per owner across the whole tree.
	FileExists(ctx context.Context, ownerID, name string) (bool, error)

	// FolderExists reports whether a folder with this name exists for the
	// owner under the given parent. The empty parent (root) is its own
	// scope, distinct from every real folder.
	FolderExists(ctx context.Context, ownerID, name, parentID string) (bool, error)

	// FolderExistsByID reports whether id references an existing folder.
	FolderExistsByID(ctx context.Context, id string) (bool, error)

	// CreateFolder writes a folder record and returns the assigned id.
	CreateFolder(ctx context.Context, ownerID, name, parentID string) (string, error)

	// FindVisible returns the non-folder record matching id, visibility and
	// origin, with unsealed encryption material. When ownerID is non-empty
	// the record must additionally belong to that owner. Any mismatch is
	// ErrNotFound; the caller never learns which predicate failed.
	FindVisible(ctx context.Context, id string, public, fromService bool, ownerID string) (*FileRecord, error)

	// GetParentLink returns the (id, name, parent_id) projection of a
	// folder, or ErrNotFound when the id does not reference one.
	GetParentLink(ctx context.Context, id string) (*TreeEntry, error)

	// ListResources returns the owner's user-channel records directly under
	// parentID (empty = root), ordered by name.
	ListResources(ctx context.Context, ownerID, parentID string) ([]*Resource, error)

	// SetPublicState flips the visibility of an owned, user-channel file
	// and returns the updated listing projection.
	SetPublicState(ctx context.Context, ownerID, id string, public bool) (*Resource, error)

	// RecentResources returns the owner's service-channel uploads, newest
	// first, in pages of RecentPageSize. Page numbering starts at 0.
	RecentResources(ctx context.Context, ownerID string, page int) ([]*Resource, error)
}
