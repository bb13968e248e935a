package drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaindrive/libchaindrive-go/metadata"
)

// ResourceList is one folder view: the items directly under a folder plus
// the ancestor chain leading to it.
type ResourceList struct {
	Tree  []*metadata.TreeEntry `json:"tree"`
	Items []*metadata.Resource  `json:"resources"`
}

// Resources lists the owner's files and folders directly under parentID
// (empty = root), name-ordered, together with the ancestor chain of the
// folder being viewed. Service-channel uploads never appear here.
func (d *Drive) Resources(ctx context.Context, ownerID, parentID string) (*ResourceList, error) {
	items, err := d.meta.ListResources(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("drive: list resources: %w", err)
	}
	tree, err := d.Ancestors(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return &ResourceList{Tree: tree, Items: items}, nil
}

// SetPublicState flips the visibility of an owned user-channel file and
// returns its updated listing projection. Folders and service uploads have
// no public state; asking for them is ErrNotFound.
func (d *Drive) SetPublicState(ctx context.Context, ownerID, fileID string, public bool) (*metadata.Resource, error) {
	res, err := d.meta.SetPublicState(ctx, ownerID, fileID, public)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("drive: set public state: %w", err)
	}
	return res, nil
}

// RecentResources pages through the owner's service-channel uploads, newest
// first. Page numbering starts at 0.
func (d *Drive) RecentResources(ctx context.Context, ownerID string, page int) ([]*metadata.Resource, error) {
	if page < 0 {
		page = 0
	}
	res, err := d.meta.RecentResources(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("drive: list recent uploads: %w", err)
	}
	return res, nil
}
