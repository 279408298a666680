package store

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/workbuildgo/internal/entity"
)

// Snapshot file schema. A snapshot describes one or more projects with their
// folder/product/version/representation tree and folder links, and is the
// file-backed way to populate a Memory store.

type snapshotFile struct {
	Projects []*snapshotProject `hcl:"project,block"`
}

type snapshotProject struct {
	Name    string            `hcl:"name,label"`
	Folders []*snapshotFolder `hcl:"folder,block"`
}

type snapshotFolder struct {
	Path          string             `hcl:"path,label"`
	Name          string             `hcl:"name,optional"`
	LinkedFolders []string           `hcl:"linked_folders,optional"`
	Tasks         []*snapshotTask    `hcl:"task,block"`
	Products      []*snapshotProduct `hcl:"product,block"`
}

type snapshotTask struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

type snapshotProduct struct {
	Name        string             `hcl:"name,label"`
	ProductType string             `hcl:"product_type,optional"`
	Families    []string           `hcl:"families,optional"`
	Versions    []*snapshotVersion `hcl:"version,block"`
}

type snapshotVersion struct {
	Number          string           `hcl:"number,label"`
	Representations []*snapshotRepre `hcl:"representation,block"`
}

type snapshotRepre struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path,optional"`
}

// LoadSnapshot parses an HCL project snapshot file and returns a Memory
// store populated with its contents.
func LoadSnapshot(path string) (*Memory, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, diags)
	}

	var snapshot snapshotFile
	if diags := gohcl.DecodeBody(file.Body, nil, &snapshot); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, diags)
	}

	mem := NewMemory()
	for _, project := range snapshot.Projects {
		if err := populateProject(mem, project); err != nil {
			return nil, fmt.Errorf("snapshot %s, project %q: %w", path, project.Name, err)
		}
	}
	return mem, nil
}

func populateProject(mem *Memory, project *snapshotProject) error {
	folderIDsByPath := make(map[string]entity.ID, len(project.Folders))

	for _, sf := range project.Folders {
		folder := &entity.Folder{
			Path:  sf.Path,
			Name:  sf.Name,
			Tasks: make(map[string]entity.Task, len(sf.Tasks)),
		}
		if folder.Name == "" {
			folder.Name = lastPathSegment(sf.Path)
		}
		for _, task := range sf.Tasks {
			folder.Tasks[task.Name] = entity.Task{Name: task.Name, Type: task.Type}
		}
		mem.AddFolder(project.Name, folder)
		folderIDsByPath[folder.Path] = folder.ID

		for _, sp := range sf.Products {
			product := mem.AddProduct(project.Name, &entity.Product{
				FolderID:    folder.ID,
				Name:        sp.Name,
				ProductType: sp.ProductType,
				Families:    sp.Families,
			})
			for _, sv := range sp.Versions {
				number, err := strconv.Atoi(sv.Number)
				if err != nil {
					return fmt.Errorf("product %q: invalid version label %q", sp.Name, sv.Number)
				}
				version := mem.AddVersion(project.Name, &entity.Version{
					ProductID: product.ID,
					Version:   number,
				})
				for _, sr := range sv.Representations {
					mem.AddRepresentation(project.Name, &entity.Representation{
						VersionID: version.ID,
						Name:      sr.Name,
						Path:      sr.Path,
					})
				}
			}
		}
	}

	// Links reference folders by path, so resolve them in a second pass.
	for _, sf := range project.Folders {
		fromID := folderIDsByPath[sf.Path]
		for _, target := range sf.LinkedFolders {
			toID, ok := folderIDsByPath[target]
			if !ok {
				return fmt.Errorf("folder %q links to unknown folder %q", sf.Path, target)
			}
			mem.AddLink(project.Name, fromID, toID)
		}
	}
	return nil
}

func lastPathSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
