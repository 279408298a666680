// Package store defines the query surface of the representation store and
// provides an in-memory implementation for fixtures and tests. A database
// backed implementation lives in the surreal subpackage.
package store

import (
	"context"

	"github.com/vk/workbuildgo/internal/entity"
)

// Store is the read-only query surface the workfile builder consumes. All
// multi-entity lookups are batched by parent IDs; implementations must not
// issue per-item round trips.
type Store interface {
	// FolderByPath resolves a folder by its project-relative path. Returns
	// nil (not an error) when the folder does not exist.
	FolderByPath(ctx context.Context, project, path string) (*entity.Folder, error)

	// LinkedFolders lists folders linked from the given folder.
	LinkedFolders(ctx context.Context, project string, folderID entity.ID) ([]*entity.Folder, error)

	// ProductsByFolderIDs lists all products belonging to any of the folders.
	ProductsByFolderIDs(ctx context.Context, project string, folderIDs []entity.ID) ([]*entity.Product, error)

	// LastVersionsByProductIDs returns the single latest version per product.
	// Products with no versions are absent from the result.
	LastVersionsByProductIDs(ctx context.Context, project string, productIDs []entity.ID) (map[entity.ID]*entity.Version, error)

	// RepresentationsByVersionIDs lists all representations under the versions.
	RepresentationsByVersionIDs(ctx context.Context, project string, versionIDs []entity.ID) ([]*entity.Representation, error)
}
