package drive

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chaindrive/libchaindrive-go/filecrypt"
	"github.com/chaindrive/libchaindrive-go/metadata"
)

// RetrieveOpts carries one retrieval request.
type RetrieveOpts struct {
	// FileID is the record to retrieve.
	FileID string

	// OwnerID is the authenticated owner; empty for anonymous access,
	// which can only reach public files.
	OwnerID string

	// Public selects which visibility the caller is asking for. A public
	// request never returns a private file and vice versa.
	Public bool

	// Origin is the channel the request arrived on; it must match the
	// channel the file was uploaded through.
	Origin Origin
}

// FileContent is a decrypted file together with the metadata a response
// needs.
type FileContent struct {
	Data     []byte
	Name     string
	Mime     string
	ByteSize int64
}

// Retrieve runs the full pipeline: visibility-checked lookup, ledger
// resolution, content fetch, authenticated decryption. Every failure mode
// surfaces as ErrNotFound; integrity violations additionally carry
// ErrCorrupted for operators, and are logged.
func (d *Drive) Retrieve(ctx context.Context, opts *RetrieveOpts) (*FileContent, error) {
	if opts == nil || opts.FileID == "" {
		return nil, ErrNotFound
	}

	rec, err := d.meta.FindVisible(ctx, opts.FileID, opts.Public, opts.Origin.fromService(), opts.OwnerID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, metadata.ErrMaterialUnwrap) {
			return nil, d.corrupted(opts.FileID, "unwrap encryption material", err)
		}
		return nil, fmt.Errorf("drive: metadata lookup: %w", err)
	}
	if !rec.Finalized() {
		return nil, ErrNotFound
	}

	contentID, err := d.ledger.Resolve(ctx, rec.ID)
	if err != nil {
		d.log.Warn("ledger resolution failed",
			zap.String("file_id", rec.ID),
			zap.Error(err))
		return nil, ErrNotFound
	}
	if contentID != rec.ContentID {
		return nil, d.corrupted(rec.ID, "ledger anchor disagrees with stored pointer", nil)
	}

	ciphertext, err := d.content.Get(ctx, contentID)
	if err != nil {
		d.log.Warn("content fetch failed",
			zap.String("file_id", rec.ID),
			zap.String("content_id", contentID),
			zap.Error(err))
		return nil, ErrNotFound
	}

	plaintext, err := filecrypt.Decrypt(ciphertext, rec.EncryptionKey, rec.EncryptionSalt, rec.EncryptionTag)
	if err != nil {
		return nil, d.corrupted(rec.ID, "authenticated decryption", err)
	}

	return &FileContent{
		Data:     plaintext,
		Name:     rec.Name,
		Mime:     rec.Mime,
		ByteSize: rec.ByteSize,
	}, nil
}

// corrupted logs an integrity violation and returns the joined sentinel
// pair: callers match ErrNotFound, operators match ErrCorrupted.
func (d *Drive) corrupted(fileID, stage string, cause error) error {
	d.log.Error("integrity violation during retrieval",
		zap.String("file_id", fileID),
		zap.String("stage", stage),
		zap.Error(cause))
	return errors.Join(ErrNotFound, ErrCorrupted)
}
