// Package entity defines the read-side data model of the representation
// store: folders, products, versions and representations, plus the container
// records produced by a successful load.
package entity

import (
	"strings"

	"github.com/google/uuid"
)

// ID identifies a single entity inside a project.
type ID string

// NewID mints a fresh random ID. Used by in-memory fixtures; real stores
// return server-assigned IDs.
func NewID() ID {
	return ID(uuid.NewString())
}

// Task is a single task definition attached to a folder.
type Task struct {
	Name string
	Type string
}

// Folder is a node in the project hierarchy. Folders are read-only from the
// builder's perspective.
type Folder struct {
	ID       ID
	Path     string
	Name     string
	ParentID ID
	Tasks    map[string]Task
}

// TaskType returns the task type for a task name, or "" when the folder has
// no such task.
func (f *Folder) TaskType(taskName string) string {
	if f == nil || f.Tasks == nil {
		return ""
	}
	task, ok := f.Tasks[taskName]
	if !ok {
		// Task names are matched case-insensitively across the pipeline.
		for name, t := range f.Tasks {
			if strings.EqualFold(name, taskName) {
				return t.Type
			}
		}
		return ""
	}
	return task.Type
}

// Product is a named deliverable category belonging to exactly one folder.
type Product struct {
	ID          ID
	FolderID    ID
	Name        string
	ProductType string
	// Families is the legacy multi-value classification. Only consulted
	// when ProductType is empty.
	Families []string
}

// TypeName resolves the product type, falling back to the first legacy
// family entry. Returns "" when neither is set; such products are skipped
// by the builder.
func (p *Product) TypeName() string {
	if p.ProductType != "" {
		return p.ProductType
	}
	if len(p.Families) > 0 {
		return p.Families[0]
	}
	return ""
}

// Version is an immutable snapshot of a product's output. Only the latest
// version per product is ever considered by the builder.
type Version struct {
	ID        ID
	ProductID ID
	Version   int
}

// Representation is a specific file/format instance of a version. Names are
// matched case-insensitively against profile configuration.
type Representation struct {
	ID        ID
	VersionID ID
	Name      string
	Path      string
}

// Container is the record of a successfully loaded representation. It is
// created by a loader plugin and handed back to the caller; persisting it
// into host scene metadata is the caller's job.
type Container struct {
	Name             string
	Namespace        string
	LoaderName       string
	RepresentationID ID
	Data             map[string]string
}
