package testutil

import (
	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/store"
)

// ProductFixture describes one product with a single version and its
// representations, for compact store setup in tests.
type ProductFixture struct {
	Name        string
	ProductType string
	Families    []string
	Version     int
	Repres      []string
}

// AddFolderTree inserts a folder with a set of single-version products into
// a memory store and returns the folder.
func AddFolderTree(mem *store.Memory, project, folderPath, taskName, taskType string, products []ProductFixture) *entity.Folder {
	folder := mem.AddFolder(project, &entity.Folder{
		Path: folderPath,
		Name: folderPath,
		Tasks: map[string]entity.Task{
			taskName: {Name: taskName, Type: taskType},
		},
	})
	for _, fixture := range products {
		version := fixture.Version
		if version == 0 {
			version = 1
		}
		product := mem.AddProduct(project, &entity.Product{
			FolderID:    folder.ID,
			Name:        fixture.Name,
			ProductType: fixture.ProductType,
			Families:    fixture.Families,
		})
		ver := mem.AddVersion(project, &entity.Version{
			ProductID: product.ID,
			Version:   version,
		})
		for _, repreName := range fixture.Repres {
			mem.AddRepresentation(project, &entity.Representation{
				VersionID: ver.ID,
				Name:      repreName,
				Path:      "/publish/" + folderPath + "/" + fixture.Name + "." + repreName,
			})
		}
	}
	return folder
}
