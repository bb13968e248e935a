package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	material, err := NewMaterialCipher([]byte("test master secret"))
	require.NoError(t, err)
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "meta.db"), material)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testFileRecord(owner, name, parent string) *FileRecord {
	return &FileRecord{
		OwnerID:        owner,
		Name:           name,
		ParentID:       parent,
		ByteSize:       42,
		Mime:           "application/pdf",
		EncryptionKey:  []byte("0123456789abcdef0123456789abcdef"),
		EncryptionSalt: []byte("0123456789abcdef"),
		EncryptionTag:  []byte("fedcba9876543210"),
	}
}

func TestCreateTentativeAndFinalize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTentative(ctx, testFileRecord("u1", "report.pdf", ""))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Tentative records are never visible.
	_, err = store.FindVisible(ctx, id, false, false, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Finalize(ctx, id, "cid-1", "tx-1"))

	rec, err := store.FindVisible(ctx, id, false, false, "u1")
	require.NoError(t, err)
	assert.Equal(t, "cid-1", rec.ContentID)
	assert.Equal(t, "tx-1", rec.TxID)
	assert.True(t, rec.Finalized())
	assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), rec.EncryptionKey)
	assert.Equal(t, []byte("0123456789abcdef"), rec.EncryptionSalt)
	assert.Equal(t, []byte("fedcba9876543210"), rec.EncryptionTag)
}

func TestFinalizeErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Finalize(ctx, "missing", "c", "t"), ErrNotFound)

	id, err := store.CreateTentative(ctx, testFileRecord("u1", "a.txt", ""))
	require.NoError(t, err)
	require.NoError(t, store.Finalize(ctx, id, "c", "t"))
	assert.ErrorIs(t, store.Finalize(ctx, id, "c2", "t2"), ErrAlreadyFinalized)
}

func TestMaterialSealedAtRest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := testFileRecord("u1", "sealed.bin", "")
	id, err := store.CreateTentative(ctx, rec)
	require.NoError(t, err)

	// The raw stored record must not contain the clear key material.
	raw, err := store.get(id)
	require.NoError(t, err)
	assert.NotEqual(t, rec.EncryptionKey, raw.EncryptionKey)
	assert.NotEqual(t, rec.EncryptionSalt, raw.EncryptionSalt)
	assert.NotEqual(t, rec.EncryptionTag, raw.EncryptionTag)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTentative(ctx, testFileRecord("u1", "gone.txt", ""))
	require.NoError(t, err)

	// Wrong owner is a no-op.
	require.NoError(t, store.Delete(ctx, id, "u2"))
	require.NoError(t, store.Finalize(ctx, id, "c", "t"))

	require.NoError(t, store.Delete(ctx, id, "u1"))
	_, err = store.FindVisible(ctx, id, false, false, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is still a no-op.
	require.NoError(t, store.Delete(ctx, id, "u1"))
}

func TestFileExistsIgnoresParent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	folderID, err := store.CreateFolder(ctx, "u1", "docs", "")
	require.NoError(t, err)

	_, err = store.CreateTentative(ctx, testFileRecord("u1", "report.pdf", folderID))
	require.NoError(t, err)

	// File names are unique per owner across the whole tree.
	exists, err := store.FileExists(ctx, "u1", "report.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	// A folder with the same name does not count as a file.
	exists, err = store.FileExists(ctx, "u1", "docs")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.FileExists(ctx, "u2", "report.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFolderExistsScopedToParent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rootDocs, err := store.CreateFolder(ctx, "u1", "docs", "")
	require.NoError(t, err)
	_, err = store.CreateFolder(ctx, "u1", "docs", rootDocs)
	require.NoError(t, err)

	exists, err := store.FolderExists(ctx, "u1", "docs", "")
	require.NoError(t, err)
	assert.True(t, exists, "root scope")

	exists, err = store.FolderExists(ctx, "u1", "docs", rootDocs)
	require.NoError(t, err)
	assert.True(t, exists, "nested scope")

	exists, err = store.FolderExists(ctx, "u1", "docs", "other-parent")
	require.NoError(t, err)
	assert.False(t, exists, "sibling scope")
}

func TestFolderExistsByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	folderID, err := store.CreateFolder(ctx, "u1", "docs", "")
	require.NoError(t, err)
	fileID, err := store.CreateTentative(ctx, testFileRecord("u1", "f.txt", ""))
	require.NoError(t, err)

	ok, err := store.FolderExistsByID(ctx, folderID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.FolderExistsByID(ctx, fileID)
	require.NoError(t, err)
	assert.False(t, ok, "a file id is not a folder")

	ok, err = store.FolderExistsByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindVisibleFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := testFileRecord("u1", "private.txt", "")
	id, err := store.CreateTentative(ctx, rec)
	require.NoError(t, err)
	require.NoError(t, store.Finalize(ctx, id, "c", "t"))

	tests := []struct {
		name        string
		id          string
		public      bool
		fromService bool
		ownerID     string
		wantErr     error
	}{
		{"owner match", id, false, false, "u1", nil},
		{"anonymous private", id, false, false, "", nil},
		{"wrong visibility", id, true, false, "u1", ErrNotFound},
		{"wrong origin", id, false, true, "u1", ErrNotFound},
		{"wrong owner", id, false, false, "u2", ErrNotFound},
		{"missing id", "missing", false, false, "u1", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindVisible(ctx, tt.id, tt.public, tt.fromService, tt.ownerID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "private.txt", got.Name)
		})
	}
}

func TestGetParentLink(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	parentID, err := store.CreateFolder(ctx, "u1", "outer", "")
	require.NoError(t, err)
	childID, err := store.CreateFolder(ctx, "u1", "inner", parentID)
	require.NoError(t, err)

	entry, err := store.GetParentLink(ctx, childID)
	require.NoError(t, err)
	assert.Equal(t, &TreeEntry{ID: childID, Name: "inner", ParentID: parentID}, entry)

	_, err = store.GetParentLink(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Files are not part of the folder tree projection.
	fileID, err := store.CreateTentative(ctx, testFileRecord("u1", "f.txt", parentID))
	require.NoError(t, err)
	_, err = store.GetParentLink(ctx, fileID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListResources(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	folderID, err := store.CreateFolder(ctx, "u1", "docs", "")
	require.NoError(t, err)
	_, err = store.CreateTentative(ctx, testFileRecord("u1", "b.pdf", folderID))
	require.NoError(t, err)
	_, err = store.CreateTentative(ctx, testFileRecord("u1", "a.pdf", folderID))
	require.NoError(t, err)

	// Service uploads never show up in user listings.
	svc := testFileRecord("u1", "svc.bin", folderID)
	svc.FromService = true
	_, err = store.CreateTentative(ctx, svc)
	require.NoError(t, err)

	root, err := store.ListResources(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "docs", root[0].Name)
	assert.True(t, root[0].IsFolder)
	assert.Empty(t, root[0].Type)

	inside, err := store.ListResources(ctx, "u1", folderID)
	require.NoError(t, err)
	require.Len(t, inside, 2)
	assert.Equal(t, "a.pdf", inside[0].Name)
	assert.Equal(t, "b.pdf", inside[1].Name)
	assert.Equal(t, "application", inside[0].Type)
}

func TestSetPublicState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTentative(ctx, testFileRecord("u1", "flip.txt", ""))
	require.NoError(t, err)
	require.NoError(t, store.Finalize(ctx, id, "c", "t"))

	res, err := store.SetPublicState(ctx, "u1", id, true)
	require.NoError(t, err)
	assert.True(t, res.IsPublic)

	_, err = store.FindVisible(ctx, id, true, false, "")
	require.NoError(t, err, "now publicly visible")

	_, err = store.SetPublicState(ctx, "u2", id, false)
	assert.ErrorIs(t, err, ErrNotFound, "foreign record")

	folderID, err := store.CreateFolder(ctx, "u1", "docs", "")
	require.NoError(t, err)
	_, err = store.SetPublicState(ctx, "u1", folderID, true)
	assert.ErrorIs(t, err, ErrNotFound, "folders have no visibility")
}

func TestRecentResourcesPaging(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < RecentPageSize+3; i++ {
		rec := testFileRecord("u1", "svc", "")
		rec.Name = rec.Name + "-" + string(rune('a'+i))
		rec.FromService = true
		_, err := store.CreateTentative(ctx, rec)
		require.NoError(t, err)
	}

	page0, err := store.RecentResources(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, page0, RecentPageSize)

	page1, err := store.RecentResources(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, page1, 3)

	page2, err := store.RecentResources(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Empty(t, page2)
}

func TestBoltStoreClosed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTentative(ctx, testFileRecord("u1", "a.txt", ""))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	// Closing twice is harmless.
	require.NoError(t, store.Close())

	_, err = store.CreateTentative(ctx, testFileRecord("u1", "b.txt", ""))
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Finalize(ctx, id, "c", "t"), ErrStoreClosed)
	assert.ErrorIs(t, store.Delete(ctx, id, "u1"), ErrStoreClosed)
	_, err = store.FindVisible(ctx, id, false, false, "u1")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.FileExists(ctx, "u1", "a.txt")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = store.ListResources(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
