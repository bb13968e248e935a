package drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaindrive/libchaindrive-go/metadata"
)

// maxTreeDepth caps the ancestor walk so corrupted parent links forming a
// cycle cannot spin it forever.
const maxTreeDepth = 255

// Ancestors walks parent links from folderID up to the root and returns the
// chain outermost first, ending with the starting folder itself. The empty
// id (root) yields an empty chain. A dangling parent link contributes a nil
// placeholder and ends the walk, mirroring what a breadcrumb renderer
// should show for a half-deleted tree.
func (d *Drive) Ancestors(ctx context.Context, folderID string) ([]*metadata.TreeEntry, error) {
	chain := []*metadata.TreeEntry{}
	current := folderID
	for depth := 0; current != "" && depth < maxTreeDepth; depth++ {
		entry, err := d.meta.GetParentLink(ctx, current)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				chain = append([]*metadata.TreeEntry{nil}, chain...)
				return chain, nil
			}
			return nil, fmt.Errorf("drive: ancestor lookup: %w", err)
		}
		chain = append([]*metadata.TreeEntry{entry}, chain...)
		current = entry.ParentID
	}
	return chain, nil
}
