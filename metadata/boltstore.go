package metadata

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var bucketFiles = []byte("files")

// BoltStore implements Store on a local bbolt database. Records are gob
// encoded under their id; encryption material is sealed before encoding.
// Suitable for single-node deployments and tests; SQLStore is the shared
// relational backend.
type BoltStore struct {
	db       *bbolt.DB
	material *MaterialCipher
	closed   atomic.Bool
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string, material *MaterialCipher) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("metadata: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metadata: create bucket: %w", err)
	}

	return &BoltStore{db: db, material: material}, nil
}

// Close closes the underlying database. Operations on a closed store
// return ErrStoreClosed.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// update runs a write transaction, guarding against use after Close.
func (s *BoltStore) update(fn func(tx *bbolt.Tx) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

// view runs a read transaction, guarding against use after Close.
func (s *BoltStore) view(fn func(tx *bbolt.Tx) error) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

// encodeRecord serializes a record using gob encoding.
func encodeRecord(rec *FileRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("metadata: encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeRecord deserializes a gob-encoded record.
func decodeRecord(data []byte) (*FileRecord, error) {
	var rec FileRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("metadata: decode record: %w", err)
	}
	return &rec, nil
}

// CreateTentative writes a new record without provenance pointers.
func (s *BoltStore) CreateTentative(_ context.Context, rec *FileRecord) (string, error) {
	if rec.OwnerID == "" || rec.Name == "" {
		return "", fmt.Errorf("%w: owner and name are required", ErrInvalidRecord)
	}

	stored := *rec
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.ContentID = ""
	stored.TxID = ""

	sealed, err := sealRecord(s.material, &stored)
	if err != nil {
		return "", err
	}
	data, err := encodeRecord(sealed)
	if err != nil {
		return "", err
	}

	err = s.update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(stored.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("metadata: put record: %w", err)
	}
	return stored.ID, nil
}

// Finalize attaches the provenance pointers to a tentative record.
func (s *BoltStore) Finalize(_ context.Context, id, contentID, txID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if rec.ContentID != "" || rec.TxID != "" {
			return ErrAlreadyFinalized
		}
		rec.ContentID = contentID
		rec.TxID = txID
		updated, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
}

// Delete removes a record owned by ownerID; absent records are a no-op.
func (s *BoltStore) Delete(_ context.Context, id, ownerID string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if rec.OwnerID != ownerID {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

// scan iterates all records, stopping when fn returns true.
func (s *BoltStore) scan(fn func(rec *FileRecord) (stop bool)) error {
	return s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(_, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			if fn(rec) {
				return errStopScan
			}
			return nil
		})
	})
}

// errStopScan terminates a ForEach early; it never escapes scan's callers.
var errStopScan = errors.New("metadata: stop scan")

// exists runs a scan and reports whether any record matched.
func (s *BoltStore) exists(match func(rec *FileRecord) bool) (bool, error) {
	found := false
	err := s.scan(func(rec *FileRecord) bool {
		if match(rec) {
			found = true
			return true
		}
		return false
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return false, err
	}
	return found, nil
}

// FileExists reports whether a non-folder record with this name exists for
// the owner, regardless of folder placement.
func (s *BoltStore) FileExists(_ context.Context, ownerID, name string) (bool, error) {
	return s.exists(func(rec *FileRecord) bool {
		return !rec.IsFolder && rec.OwnerID == ownerID && rec.Name == name
	})
}

// FolderExists reports whether a folder with this name exists for the owner
// under the given parent (empty parent = root scope).
func (s *BoltStore) FolderExists(_ context.Context, ownerID, name, parentID string) (bool, error) {
	return s.exists(func(rec *FileRecord) bool {
		return rec.IsFolder && rec.OwnerID == ownerID && rec.Name == name && rec.ParentID == parentID
	})
}

// FolderExistsByID reports whether id references an existing folder.
func (s *BoltStore) FolderExistsByID(_ context.Context, id string) (bool, error) {
	rec, err := s.get(id)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.IsFolder, nil
}

// get returns the raw (still sealed) record for id, or nil when absent.
func (s *BoltStore) get(id string) (*FileRecord, error) {
	var rec *FileRecord
	err := s.view(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketFiles).Get([]byte(id))
		if data == nil {
			return nil
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateFolder writes a folder record and returns the assigned id.
func (s *BoltStore) CreateFolder(_ context.Context, ownerID, name, parentID string) (string, error) {
	if ownerID == "" || name == "" {
		return "", fmt.Errorf("%w: owner and name are required", ErrInvalidRecord)
	}

	rec := &FileRecord{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		ParentID:  parentID,
		IsFolder:  true,
		CreatedAt: time.Now().UTC(),
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}
	err = s.update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("metadata: put folder: %w", err)
	}
	return rec.ID, nil
}

// FindVisible returns the non-folder record matching id, visibility and
// origin, with unsealed material. Any predicate mismatch is ErrNotFound.
func (s *BoltStore) FindVisible(_ context.Context, id string, public, fromService bool, ownerID string) (*FileRecord, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.IsFolder || rec.IsPublic != public || rec.FromService != fromService {
		return nil, ErrNotFound
	}
	if ownerID != "" && rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return openRecord(s.material, rec)
}

// GetParentLink returns the tree projection of a folder.
func (s *BoltStore) GetParentLink(_ context.Context, id string) (*TreeEntry, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsFolder {
		return nil, ErrNotFound
	}
	return &TreeEntry{ID: rec.ID, Name: rec.Name, ParentID: rec.ParentID}, nil
}

// ListResources returns the owner's user-channel records under parentID.
func (s *BoltStore) ListResources(_ context.Context, ownerID, parentID string) ([]*Resource, error) {
	var out []*Resource
	err := s.scan(func(rec *FileRecord) bool {
		if rec.OwnerID == ownerID && !rec.FromService && rec.ParentID == parentID {
			out = append(out, resourceFromRecord(rec))
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetPublicState flips the visibility of an owned, user-channel file.
func (s *BoltStore) SetPublicState(_ context.Context, ownerID, id string, public bool) (*Resource, error) {
	var res *Resource
	err := s.update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if rec.OwnerID != ownerID || rec.IsFolder || rec.FromService {
			return ErrNotFound
		}
		rec.IsPublic = public
		updated, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(id), updated); err != nil {
			return err
		}
		res = resourceFromRecord(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecentResources returns the owner's service-channel uploads, newest first.
func (s *BoltStore) RecentResources(_ context.Context, ownerID string, page int) ([]*Resource, error) {
	if page < 0 {
		page = 0
	}
	type dated struct {
		res *Resource
		at  time.Time
	}
	var all []dated
	err := s.scan(func(rec *FileRecord) bool {
		if rec.OwnerID == ownerID && rec.FromService && !rec.IsFolder {
			all = append(all, dated{res: resourceFromRecord(rec), at: rec.CreatedAt})
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].at.Equal(all[j].at) {
			return all[i].res.ID < all[j].res.ID
		}
		return all[i].at.After(all[j].at)
	})

	start := page * RecentPageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + RecentPageSize
	if end > len(all) {
		end = len(all)
	}
	out := make([]*Resource, 0, end-start)
	for _, d := range all[start:end] {
		out = append(out, d.res)
	}
	return out, nil
}
