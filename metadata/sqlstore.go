package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// schema is the DDL bootstrap for the file table. Ids are uuid strings
// generated by the store; NULL parent_id marks a root-level record.
//
// No unique index on (owner_id, name): the uniqueness checks are advisory
// check-then-act, and the duplicate-name race window is accepted behavior.
const schema = `
CREATE TABLE IF NOT EXISTS file (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	name            TEXT NOT NULL,
	parent_id       TEXT,
	is_folder       BOOLEAN NOT NULL DEFAULT FALSE,
	is_public       BOOLEAN NOT NULL DEFAULT FALSE,
	from_service    BOOLEAN NOT NULL DEFAULT FALSE,
	byte_size       BIGINT NOT NULL DEFAULT 0,
	mime            TEXT NOT NULL DEFAULT '',
	encryption_key  BYTEA,
	encryption_salt BYTEA,
	encryption_tag  BYTEA,
	content_id      TEXT,
	tx_id           TEXT
);
CREATE INDEX IF NOT EXISTS file_owner_idx ON file (owner_id);
CREATE INDEX IF NOT EXISTS file_parent_idx ON file (parent_id);
`

// SQLStore implements Store on Postgres through sqlx/pgx. Encryption
// material lands in bytea columns already sealed by the MaterialCipher, so
// the database never sees clear key material (the original deployment used
// pgp_sym_encrypt for the same effect).
type SQLStore struct {
	db       *sqlx.DB
	material *MaterialCipher
}

// Compile-time interface check.
var _ Store = (*SQLStore)(nil)

// NewSQLStore connects to Postgres and verifies the connection.
func NewSQLStore(ctx context.Context, dsn string, material *MaterialCipher) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("metadata: connect postgres: %w", err)
	}
	return &SQLStore{db: db, material: material}, nil
}

// EnsureSchema creates the file table and indexes if they do not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("metadata: ensure schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// fileRow is the scan target for full-record queries. Nullable columns are
// coalesced to the empty string in SQL.
type fileRow struct {
	ID             string    `db:"id"`
	OwnerID        string    `db:"owner_id"`
	Name           string    `db:"name"`
	ParentID       string    `db:"parent_id"`
	IsFolder       bool      `db:"is_folder"`
	IsPublic       bool      `db:"is_public"`
	FromService    bool      `db:"from_service"`
	ByteSize       int64     `db:"byte_size"`
	Mime           string    `db:"mime"`
	CreatedAt      time.Time `db:"created_at"`
	EncryptionKey  []byte    `db:"encryption_key"`
	EncryptionSalt []byte    `db:"encryption_salt"`
	EncryptionTag  []byte    `db:"encryption_tag"`
	ContentID      string    `db:"content_id"`
	TxID           string    `db:"tx_id"`
}

func (r *fileRow) record() *FileRecord {
	return &FileRecord{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		ParentID:       r.ParentID,
		IsFolder:       r.IsFolder,
		IsPublic:       r.IsPublic,
		FromService:    r.FromService,
		ByteSize:       r.ByteSize,
		Mime:           r.Mime,
		CreatedAt:      r.CreatedAt,
		EncryptionKey:  r.EncryptionKey,
		EncryptionSalt: r.EncryptionSalt,
		EncryptionTag:  r.EncryptionTag,
		ContentID:      r.ContentID,
		TxID:           r.TxID,
	}
}

// nullable maps the empty string to SQL NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateTentative writes a new record without provenance pointers.
func (s *SQLStore) CreateTentative(ctx context.Context, rec *FileRecord) (string, error) {
	if rec.OwnerID == "" || rec.Name == "" {
		return "", fmt.Errorf("%w: owner and name are required", ErrInvalidRecord)
	}

	sealed, err := sealRecord(s.material, rec)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO file (id, owner_id, name, parent_id, is_folder, is_public,
		                  from_service, byte_size, mime,
		                  encryption_key, encryption_salt, encryption_tag)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6, $7, $8, $9, $10, $11)`,
		id, rec.OwnerID, rec.Name, nullable(rec.ParentID), rec.IsPublic,
		rec.FromService, rec.ByteSize, rec.Mime,
		sealed.EncryptionKey, sealed.EncryptionSalt, sealed.EncryptionTag)
	if err != nil {
		return "", fmt.Errorf("metadata: insert record: %w", err)
	}
	return id, nil
}

// Finalize attaches the provenance pointers to a tentative record.
func (s *SQLStore) Finalize(ctx context.Context, id, contentID, txID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE file SET content_id = $2, tx_id = $3
		WHERE id = $1 AND content_id IS NULL AND tx_id IS NULL`,
		id, contentID, txID)
	if err != nil {
		return fmt.Errorf("metadata: finalize record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT NULL FROM file WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("metadata: finalize lookup: %w", err)
		}
		if exists {
			return ErrAlreadyFinalized
		}
		return ErrNotFound
	}
	return nil
}

// Delete removes a record owned by ownerID; absent records are a no-op.
func (s *SQLStore) Delete(ctx context.Context, id, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM file WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("metadata: delete record: %w", err)
	}
	return nil
}

// FileExists reports whether a non-folder record with this name exists for
// the owner, regardless of folder placement.
func (s *SQLStore) FileExists(ctx context.Context, ownerID, name string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT NULL FROM file
			WHERE owner_id = $1 AND name = $2 AND is_folder IS FALSE
		)`, ownerID, name)
	if err != nil {
		return false, fmt.Errorf("metadata: file exists: %w", err)
	}
	return exists, nil
}

// FolderExists reports whether a folder with this name exists for the owner
// under the given parent (empty parent = root scope).
func (s *SQLStore) FolderExists(ctx context.Context, ownerID, name, parentID string) (bool, error) {
	var (
		exists bool
		err    error
	)
	if parentID == "" {
		err = s.db.GetContext(ctx, &exists, `
			SELECT EXISTS(
				SELECT NULL FROM file
				WHERE owner_id = $1 AND name = $2 AND is_folder IS TRUE AND parent_id IS NULL
			)`, ownerID, name)
	} else {
		err = s.db.GetContext(ctx, &exists, `
			SELECT EXISTS(
				SELECT NULL FROM file
				WHERE owner_id = $1 AND name = $2 AND is_folder IS TRUE AND parent_id = $3
			)`, ownerID, name, parentID)
	}
	if err != nil {
		return false, fmt.Errorf("metadata: folder exists: %w", err)
	}
	return exists, nil
}

// FolderExistsByID reports whether id references an existing folder.
func (s *SQLStore) FolderExistsByID(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT NULL FROM file WHERE id = $1 AND is_folder IS TRUE
		)`, id)
	if err != nil {
		return false, fmt.Errorf("metadata: folder exists by id: %w", err)
	}
	return exists, nil
}

// CreateFolder writes a folder record and returns the assigned id.
func (s *SQLStore) CreateFolder(ctx context.Context, ownerID, name, parentID string) (string, error) {
	if ownerID == "" || name == "" {
		return "", fmt.Errorf("%w: owner and name are required", ErrInvalidRecord)
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file (id, owner_id, name, parent_id, is_folder)
		VALUES ($1, $2, $3, $4, TRUE)`,
		id, ownerID, name, nullable(parentID))
	if err != nil {
		return "", fmt.Errorf("metadata: insert folder: %w", err)
	}
	return id, nil
}

// FindVisible returns the non-folder record matching id, visibility and
// origin, with unsealed material. Any predicate mismatch is ErrNotFound.
func (s *SQLStore) FindVisible(ctx context.Context, id string, public, fromService bool, ownerID string) (*FileRecord, error) {
	query := `
		SELECT id, owner_id, name, COALESCE(parent_id, '') AS parent_id,
		       is_folder, is_public, from_service, byte_size, mime, created_at,
		       encryption_key, encryption_salt, encryption_tag,
		       COALESCE(content_id, '') AS content_id, COALESCE(tx_id, '') AS tx_id
		FROM file
		WHERE id = $1 AND is_folder IS FALSE AND is_public = $2 AND from_service = $3`
	args := []any{id, public, fromService}
	if ownerID != "" {
		query += ` AND owner_id = $4`
		args = append(args, ownerID)
	}

	var row fileRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: find visible: %w", err)
	}
	return openRecord(s.material, row.record())
}

// GetParentLink returns the tree projection of a folder.
func (s *SQLStore) GetParentLink(ctx context.Context, id string) (*TreeEntry, error) {
	var entry TreeEntry
	err := s.db.GetContext(ctx, &entry, `
		SELECT id, name, COALESCE(parent_id, '') AS parent_id
		FROM file
		WHERE id = $1 AND is_folder IS TRUE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: parent link: %w", err)
	}
	return &entry, nil
}

// resourceColumns is the shared listing projection.
const resourceColumns = `
	id,
	name,
	is_folder,
	CASE WHEN is_folder THEN '' ELSE split_part(mime, '/', 1) END AS type,
	COALESCE(parent_id, '') AS parent_id,
	is_public`

// ListResources returns the owner's user-channel records under parentID.
func (s *SQLStore) ListResources(ctx context.Context, ownerID, parentID string) ([]*Resource, error) {
	query := `SELECT ` + resourceColumns + `
		FROM file
		WHERE owner_id = $1 AND from_service IS FALSE AND parent_id `
	args := []any{ownerID}
	if parentID == "" {
		query += `IS NULL`
	} else {
		query += `= $2`
		args = append(args, parentID)
	}
	query += ` ORDER BY name`

	var out []*Resource
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("metadata: list resources: %w", err)
	}
	return out, nil
}

// SetPublicState flips the visibility of an owned, user-channel file.
func (s *SQLStore) SetPublicState(ctx context.Context, ownerID, id string, public bool) (*Resource, error) {
	var res Resource
	err := s.db.GetContext(ctx, &res, `
		UPDATE file SET is_public = $3
		WHERE id = $2 AND owner_id = $1 AND is_folder IS FALSE AND from_service IS FALSE
		RETURNING `+resourceColumns, ownerID, id, public)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("metadata: set public state: %w", err)
	}
	return &res, nil
}

// RecentResources returns the owner's service-channel uploads, newest first.
func (s *SQLStore) RecentResources(ctx context.Context, ownerID string, page int) ([]*Resource, error) {
	if page < 0 {
		page = 0
	}
	var out []*Resource
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+resourceColumns+`
		FROM file
		WHERE owner_id = $1 AND from_service IS TRUE AND is_folder IS FALSE
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		ownerID, RecentPageSize, page*RecentPageSize)
	if err != nil {
		return nil, fmt.Errorf("metadata: recent resources: %w", err)
	}
	return out, nil
}
