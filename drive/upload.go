package drive

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chaindrive/libchaindrive-go/filecrypt"
	"github.com/chaindrive/libchaindrive-go/metadata"
)

// UploadOpts carries one upload request.
type UploadOpts struct {
	// Plaintext is the file content as submitted.
	Plaintext []byte

	// Name is the file name. User-channel names must be unique per owner
	// regardless of folder placement.
	Name string

	// Mime is the declared content type.
	Mime string

	// OwnerID identifies the authenticated owner.
	OwnerID string

	// ParentID places the file under a folder; empty means root. The id
	// must reference an existing folder.
	ParentID string

	// Origin is the channel the request arrived on.
	Origin Origin
}

// Upload runs the full pipeline: collision checks, encryption, tentative
// metadata write, content store write, ledger anchoring, finalization. On
// any failure after the tentative write the record is deleted again, so no
// half-finished file ever becomes visible. Returns the id of the new record.
//
// Once the tentative record exists the remaining legs run detached from the
// caller's cancellation: a disconnecting client must not be able to strand
// an orphaned record.
//
// The name checks are advisory check-then-act: two concurrent uploads of
// the same name can both pass. The metadata store carries no unique index,
// so the late writer wins a duplicate name rather than an error.
func (d *Drive) Upload(ctx context.Context, opts *UploadOpts) (string, error) {
	if opts == nil || len(opts.Plaintext) == 0 {
		return "", fmt.Errorf("drive: upload content is required")
	}
	if opts.Name == "" || opts.OwnerID == "" {
		return "", fmt.Errorf("drive: upload name and owner are required")
	}

	if opts.ParentID != "" {
		ok, err := d.meta.FolderExistsByID(ctx, opts.ParentID)
		if err != nil {
			return "", fmt.Errorf("drive: check parent folder: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: parent is not a folder", ErrConflict)
		}
	}

	// Service uploads live in their own namespace and skip the check.
	if !opts.Origin.fromService() {
		exists, err := d.meta.FileExists(ctx, opts.OwnerID, opts.Name)
		if err != nil {
			return "", fmt.Errorf("drive: check file name: %w", err)
		}
		if exists {
			return "", fmt.Errorf("%w: file name already in use", ErrConflict)
		}
	}

	enc, err := filecrypt.Encrypt(opts.Plaintext)
	if err != nil {
		return "", fmt.Errorf("drive: encrypt: %w", err)
	}

	rec := &metadata.FileRecord{
		OwnerID:        opts.OwnerID,
		Name:           opts.Name,
		ParentID:       opts.ParentID,
		Mime:           opts.Mime,
		ByteSize:       int64(len(opts.Plaintext)),
		FromService:    opts.Origin.fromService(),
		EncryptionKey:  enc.Key,
		EncryptionSalt: enc.Salt,
		EncryptionTag:  enc.Tag,
	}

	id, err := d.meta.CreateTentative(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("drive: create record: %w", err)
	}

	// From here on we either finalize or compensate, regardless of what
	// the caller does with its context.
	detached := context.WithoutCancel(ctx)

	contentID, err := d.content.Put(detached, enc.Ciphertext)
	if err != nil {
		return "", d.compensate(detached, id, opts.OwnerID, "content store write", err)
	}

	txID, err := d.ledger.Record(detached, id, contentID)
	if err != nil {
		return "", d.compensate(detached, id, opts.OwnerID, "ledger anchoring", err)
	}

	if err := d.meta.Finalize(detached, id, contentID, txID); err != nil {
		return "", d.compensate(detached, id, opts.OwnerID, "finalize record", err)
	}

	d.log.Info("upload finalized",
		zap.String("file_id", id),
		zap.String("content_id", contentID),
		zap.String("tx_id", txID),
		zap.String("origin", opts.Origin.String()))
	return id, nil
}

// compensate deletes the tentative record after a failed external leg and
// maps the failure to ErrUnavailable. A failed delete leaves an orphan that
// is invisible to retrieval; it is logged for operator cleanup.
func (d *Drive) compensate(ctx context.Context, id, ownerID, leg string, cause error) error {
	if delErr := d.meta.Delete(ctx, id, ownerID); delErr != nil {
		d.log.Error("upload compensation failed, orphaned record left behind",
			zap.String("file_id", id),
			zap.String("failed_leg", leg),
			zap.Error(errors.Join(cause, delErr)))
	} else {
		d.log.Warn("upload rolled back",
			zap.String("file_id", id),
			zap.String("failed_leg", leg),
			zap.Error(cause))
	}
	return fmt.Errorf("%w: %s failed", ErrUnavailable, leg)
}
