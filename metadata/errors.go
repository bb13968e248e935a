package metadata

import "errors"

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("metadata: record not found")

	// ErrInvalidRecord indicates a record is missing required fields.
	ErrInvalidRecord = errors.New("metadata: invalid record")

	// ErrAlreadyFinalized indicates Finalize was called on a record that
	// already carries provenance pointers.
	ErrAlreadyFinalized = errors.New("metadata: record already finalized")

	// ErrMaterialUnwrap indicates at-rest decryption of encryption material
	// failed. This points at master-secret rotation without re-sealing, or
	// storage-level corruption.
	ErrMaterialUnwrap = errors.New("metadata: cannot unwrap encryption material")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("metadata: store is closed")
)
