package drive

import (
	"context"
	"fmt"
)

// NewFolder creates a folder for the owner under parentID (empty = root)
// and returns its id. Folder names are unique per parent, so the same name
// may recur in different folders.
func (d *Drive) NewFolder(ctx context.Context, ownerID, name, parentID string) (string, error) {
	if name == "" || ownerID == "" {
		return "", fmt.Errorf("drive: folder name and owner are required")
	}

	if parentID != "" {
		ok, err := d.meta.FolderExistsByID(ctx, parentID)
		if err != nil {
			return "", fmt.Errorf("drive: check parent folder: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: parent is not a folder", ErrConflict)
		}
	}

	exists, err := d.meta.FolderExists(ctx, ownerID, name, parentID)
	if err != nil {
		return "", fmt.Errorf("drive: check folder name: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%w: folder name already in use here", ErrConflict)
	}

	id, err := d.meta.CreateFolder(ctx, ownerID, name, parentID)
	if err != nil {
		return "", fmt.Errorf("drive: create folder: %w", err)
	}
	return id, nil
}
