package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vk/workbuildgo/internal/entity"
)

// Memory is an in-memory Store. It backs tests and the snapshot-file mode of
// the CLI. Safe for concurrent reads; writes are expected to happen during
// setup only but are guarded anyway.
type Memory struct {
	mu      sync.RWMutex
	folders map[string]map[entity.ID]*entity.Folder
	links   map[string]map[entity.ID][]entity.ID
	// children indexes, per project
	products map[string]map[entity.ID]*entity.Product
	versions map[string]map[entity.ID]*entity.Version
	repres   map[string]map[entity.ID]*entity.Representation
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		folders:  make(map[string]map[entity.ID]*entity.Folder),
		links:    make(map[string]map[entity.ID][]entity.ID),
		products: make(map[string]map[entity.ID]*entity.Product),
		versions: make(map[string]map[entity.ID]*entity.Version),
		repres:   make(map[string]map[entity.ID]*entity.Representation),
	}
}

// AddFolder inserts a folder into a project, assigning an ID when missing.
func (m *Memory) AddFolder(project string, folder *entity.Folder) *entity.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if folder.ID == "" {
		folder.ID = entity.NewID()
	}
	if m.folders[project] == nil {
		m.folders[project] = make(map[entity.ID]*entity.Folder)
	}
	m.folders[project][folder.ID] = folder
	return folder
}

// AddLink records a directed link from one folder to another.
func (m *Memory) AddLink(project string, from, to entity.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links[project] == nil {
		m.links[project] = make(map[entity.ID][]entity.ID)
	}
	m.links[project][from] = append(m.links[project][from], to)
}

// AddProduct inserts a product, assigning an ID when missing.
func (m *Memory) AddProduct(project string, product *entity.Product) *entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == "" {
		product.ID = entity.NewID()
	}
	if m.products[project] == nil {
		m.products[project] = make(map[entity.ID]*entity.Product)
	}
	m.products[project][product.ID] = product
	return product
}

// AddVersion inserts a version, assigning an ID when missing.
func (m *Memory) AddVersion(project string, version *entity.Version) *entity.Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version.ID == "" {
		version.ID = entity.NewID()
	}
	if m.versions[project] == nil {
		m.versions[project] = make(map[entity.ID]*entity.Version)
	}
	m.versions[project][version.ID] = version
	return version
}

// AddRepresentation inserts a representation, assigning an ID when missing.
func (m *Memory) AddRepresentation(project string, repre *entity.Representation) *entity.Representation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if repre.ID == "" {
		repre.ID = entity.NewID()
	}
	if m.repres[project] == nil {
		m.repres[project] = make(map[entity.ID]*entity.Representation)
	}
	m.repres[project][repre.ID] = repre
	return repre
}

// FolderByPath implements Store.
func (m *Memory) FolderByPath(_ context.Context, project, path string) (*entity.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, folder := range m.folders[project] {
		if folder.Path == path {
			return folder, nil
		}
	}
	return nil, nil
}

// LinkedFolders implements Store.
func (m *Memory) LinkedFolders(_ context.Context, project string, folderID entity.ID) ([]*entity.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*entity.Folder
	for _, linkedID := range m.links[project][folderID] {
		if folder, ok := m.folders[project][linkedID]; ok {
			out = append(out, folder)
		}
	}
	sortFoldersByPath(out)
	return out, nil
}

// ProductsByFolderIDs implements Store.
func (m *Memory) ProductsByFolderIDs(_ context.Context, project string, folderIDs []entity.ID) ([]*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := idSet(folderIDs)
	var out []*entity.Product
	for _, product := range m.products[project] {
		if _, ok := wanted[product.FolderID]; ok {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LastVersionsByProductIDs implements Store.
func (m *Memory) LastVersionsByProductIDs(_ context.Context, project string, productIDs []entity.ID) (map[entity.ID]*entity.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := idSet(productIDs)
	out := make(map[entity.ID]*entity.Version)
	for _, version := range m.versions[project] {
		if _, ok := wanted[version.ProductID]; !ok {
			continue
		}
		last, ok := out[version.ProductID]
		if !ok || version.Version > last.Version {
			out[version.ProductID] = version
		}
	}
	return out, nil
}

// RepresentationsByVersionIDs implements Store.
func (m *Memory) RepresentationsByVersionIDs(_ context.Context, project string, versionIDs []entity.ID) ([]*entity.Representation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := idSet(versionIDs)
	var out []*entity.Representation
	for _, repre := range m.repres[project] {
		if _, ok := wanted[repre.VersionID]; ok {
			out = append(out, repre)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func idSet(ids []entity.ID) map[entity.ID]struct{} {
	set := make(map[entity.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortFoldersByPath(folders []*entity.Folder) {
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
}
