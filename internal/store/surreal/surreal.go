// Package surreal implements store.Store on top of a SurrealDB database.
//
// Entities live in the folder, product, version, representation and link
// tables, each carrying a project field. Every Store method issues exactly
// one query, batched by parent IDs.
package surreal

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/vk/workbuildgo/internal/entity"
)

// Config carries the connection parameters for a SurrealDB instance.
type Config struct {
	URL       string
	Username  string
	Password  string
	Namespace string
	Database  string
}

// Store is a SurrealDB-backed representation store.
type Store struct {
	db *surrealdb.DB
}

// Connect dials the database, authenticates and selects the configured
// namespace and database.
func Connect(cfg Config) (*Store, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb at %s: %w", cfg.URL, err)
	}
	if cfg.Username != "" {
		if _, err := db.Signin(map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			db.Close()
			return nil, fmt.Errorf("surrealdb signin failed: %w", err)
		}
	}
	if _, err := db.Use(cfg.Namespace, cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to select %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}
	return &Store{db: db}, nil
}

// Close terminates the database connection.
func (s *Store) Close() {
	s.db.Close()
}

type folderRecord struct {
	ID      string `json:"id,omitempty"`
	Project string `json:"project"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Tasks   []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"tasks"`
}

type productRecord struct {
	ID          string   `json:"id,omitempty"`
	Project     string   `json:"project"`
	Folder      string   `json:"folder"`
	Name        string   `json:"name"`
	ProductType string   `json:"product_type"`
	Families    []string `json:"families"`
}

type versionRecord struct {
	ID      string `json:"id,omitempty"`
	Project string `json:"project"`
	Product string `json:"product"`
	Version int    `json:"version"`
}

type repreRecord struct {
	ID      string `json:"id,omitempty"`
	Project string `json:"project"`
	Version string `json:"version"`
	Name    string `json:"name"`
	Path    string `json:"path"`
}

func (r *folderRecord) toEntity() *entity.Folder {
	folder := &entity.Folder{
		ID:    entity.ID(r.ID),
		Path:  r.Path,
		Name:  r.Name,
		Tasks: make(map[string]entity.Task, len(r.Tasks)),
	}
	for _, task := range r.Tasks {
		folder.Tasks[task.Name] = entity.Task{Name: task.Name, Type: task.Type}
	}
	return folder
}

// FolderByPath implements store.Store.
func (s *Store) FolderByPath(_ context.Context, project, path string) (*entity.Folder, error) {
	records, err := surrealdb.SmartUnmarshal[[]folderRecord](s.db.Query(
		"SELECT * FROM folder WHERE project = $project AND path = $path LIMIT 1",
		map[string]any{"project": project, "path": path},
	))
	if err != nil {
		return nil, fmt.Errorf("folder lookup failed for %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toEntity(), nil
}

// LinkedFolders implements store.Store.
func (s *Store) LinkedFolders(_ context.Context, project string, folderID entity.ID) ([]*entity.Folder, error) {
	records, err := surrealdb.SmartUnmarshal[[]folderRecord](s.db.Query(
		"SELECT * FROM folder WHERE project = $project"+
			" AND id INSIDE (SELECT VALUE target FROM link WHERE source = $folder)",
		map[string]any{"project": project, "folder": string(folderID)},
	))
	if err != nil {
		return nil, fmt.Errorf("linked folders lookup failed for %s: %w", folderID, err)
	}
	folders := make([]*entity.Folder, 0, len(records))
	for i := range records {
		folders = append(folders, records[i].toEntity())
	}
	return folders, nil
}

// ProductsByFolderIDs implements store.Store.
func (s *Store) ProductsByFolderIDs(_ context.Context, project string, folderIDs []entity.ID) ([]*entity.Product, error) {
	records, err := surrealdb.SmartUnmarshal[[]productRecord](s.db.Query(
		"SELECT * FROM product WHERE project = $project AND folder INSIDE $folders",
		map[string]any{"project": project, "folders": idStrings(folderIDs)},
	))
	if err != nil {
		return nil, fmt.Errorf("products lookup failed: %w", err)
	}
	products := make([]*entity.Product, 0, len(records))
	for _, r := range records {
		products = append(products, &entity.Product{
			ID:          entity.ID(r.ID),
			FolderID:    entity.ID(r.Folder),
			Name:        r.Name,
			ProductType: r.ProductType,
			Families:    r.Families,
		})
	}
	return products, nil
}

// LastVersionsByProductIDs implements store.Store. Versions arrive ordered
// newest first and are reduced to one per product client side.
func (s *Store) LastVersionsByProductIDs(_ context.Context, project string, productIDs []entity.ID) (map[entity.ID]*entity.Version, error) {
	records, err := surrealdb.SmartUnmarshal[[]versionRecord](s.db.Query(
		"SELECT * FROM version WHERE project = $project AND product INSIDE $products ORDER BY version DESC",
		map[string]any{"project": project, "products": idStrings(productIDs)},
	))
	if err != nil {
		return nil, fmt.Errorf("versions lookup failed: %w", err)
	}
	out := make(map[entity.ID]*entity.Version)
	for _, r := range records {
		productID := entity.ID(r.Product)
		if _, ok := out[productID]; ok {
			continue
		}
		out[productID] = &entity.Version{
			ID:        entity.ID(r.ID),
			ProductID: productID,
			Version:   r.Version,
		}
	}
	return out, nil
}

// RepresentationsByVersionIDs implements store.Store.
func (s *Store) RepresentationsByVersionIDs(_ context.Context, project string, versionIDs []entity.ID) ([]*entity.Representation, error) {
	records, err := surrealdb.SmartUnmarshal[[]repreRecord](s.db.Query(
		"SELECT * FROM representation WHERE project = $project AND version INSIDE $versions",
		map[string]any{"project": project, "versions": idStrings(versionIDs)},
	))
	if err != nil {
		return nil, fmt.Errorf("representations lookup failed: %w", err)
	}
	repres := make([]*entity.Representation, 0, len(records))
	for _, r := range records {
		repres = append(repres, &entity.Representation{
			ID:        entity.ID(r.ID),
			VersionID: entity.ID(r.Version),
			Name:      r.Name,
			Path:      r.Path,
		})
	}
	return repres, nil
}

func idStrings(ids []entity.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
