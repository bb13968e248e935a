// Package metadata defines the durable file/folder record model and the
// Store contract the pipelines depend on, together with a bbolt-backed and a
// Postgres-backed implementation. Encryption material is sealed at rest by a
// MaterialCipher under a server-wide derived key; it only exists in the clear
// inside the upload and retrieval pipelines.
package metadata

import (
	"strings"
	"time"
)

// FileRecord represents one stored object, file or folder.
//
// A folder never carries content, encryption material or provenance
// pointers. A file is either fully finalized (ContentID and TxID present) or
// a tentative record that the upload pipeline will finalize or delete; a
// tentative record is never returned by FindVisible.
type FileRecord struct {
	ID        string
	OwnerID   string
	Name      string
	ParentID  string // empty = root
	IsFolder  bool
	IsPublic  bool
	ByteSize  int64
	Mime      string
	CreatedAt time.Time

	// FromService marks uploads submitted through the trusted-credential
	// service channel; they live in a namespace separate from user folders.
	FromService bool

	// Per-file authenticated-encryption material. In memory these are the
	// raw bytes; the store implementations seal them before persisting.
	EncryptionKey  []byte
	EncryptionSalt []byte
	EncryptionTag  []byte

	// Provenance pointers, empty until the upload pipeline finalizes.
	ContentID string
	TxID      string
}

// Finalized reports whether both provenance pointers are present, which is
// what makes a file record eligible for retrieval.
func (r *FileRecord) Finalized() bool {
	return !r.IsFolder && r.ContentID != "" && r.TxID != ""
}

// TreeEntry is the slim folder projection used by the ancestor walk.
type TreeEntry struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	ParentID string `json:"parent_id" db:"parent_id"`
}

// Resource is the listing projection returned to browsing callers. Type is
// the major part of the mime type ("image", "video", ...), empty for folders.
type Resource struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	IsFolder bool   `json:"is_folder" db:"is_folder"`
	Type     string `json:"type" db:"type"`
	ParentID string `json:"parent_id" db:"parent_id"`
	IsPublic bool   `json:"is_public" db:"is_public"`
}

// mimeMajor returns the part of a mime type before the slash.
func mimeMajor(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		return mime[:i]
	}
	return mime
}

// resourceFromRecord builds the listing projection for a record.
func resourceFromRecord(r *FileRecord) *Resource {
	res := &Resource{
		ID:       r.ID,
		Name:     r.Name,
		IsFolder: r.IsFolder,
		ParentID: r.ParentID,
		IsPublic: r.IsPublic,
	}
	if !r.IsFolder {
		res.Type = mimeMajor(r.Mime)
	}
	return res
}
