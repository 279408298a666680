package builder

import (
	"context"

	"github.com/vk/workbuildgo/internal/entity"
)

// productData holds one product with its latest version and that version's
// representations.
type productData struct {
	Product         *entity.Product
	Version         *entity.Version
	Representations []*entity.Representation
}

// folderData is one folder's worth of collected entities, keyed by product.
type folderData struct {
	Folder   *entity.Folder
	Products map[entity.ID]*productData
	// productOrder preserves store return order for deterministic logs.
	productOrder []entity.ID
}

// collectLastVersionRepres fetches products, their single latest version and
// every representation under it, for all folders at once. Exactly one
// batched store query per entity level. An empty folder list yields an empty
// map without touching the store.
func (b *Builder) collectLastVersionRepres(ctx context.Context, project string, folders []*entity.Folder) (map[entity.ID]*folderData, error) {
	output := make(map[entity.ID]*folderData)
	if len(folders) == 0 {
		return output, nil
	}

	foldersByID := make(map[entity.ID]*entity.Folder, len(folders))
	folderIDs := make([]entity.ID, 0, len(folders))
	for _, folder := range folders {
		if _, ok := foldersByID[folder.ID]; ok {
			continue
		}
		foldersByID[folder.ID] = folder
		folderIDs = append(folderIDs, folder.ID)
	}

	products, err := b.store.ProductsByFolderIDs(ctx, project, folderIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[entity.ID]*entity.Product, len(products))
	productIDs := make([]entity.ID, 0, len(products))
	for _, product := range products {
		productsByID[product.ID] = product
		productIDs = append(productIDs, product.ID)
	}

	versionsByProductID, err := b.store.LastVersionsByProductIDs(ctx, project, productIDs)
	if err != nil {
		return nil, err
	}
	versionsByID := make(map[entity.ID]*entity.Version, len(versionsByProductID))
	versionIDs := make([]entity.ID, 0, len(versionsByProductID))
	for _, version := range versionsByProductID {
		versionsByID[version.ID] = version
		versionIDs = append(versionIDs, version.ID)
	}

	repres, err := b.store.RepresentationsByVersionIDs(ctx, project, versionIDs)
	if err != nil {
		return nil, err
	}

	// Stitch the three levels back together bottom up, creating folder and
	// product slots only for entities that actually have representations.
	for _, repre := range repres {
		version, ok := versionsByID[repre.VersionID]
		if !ok {
			continue
		}
		product, ok := productsByID[version.ProductID]
		if !ok {
			continue
		}
		folder, ok := foldersByID[product.FolderID]
		if !ok {
			continue
		}

		data, ok := output[folder.ID]
		if !ok {
			data = &folderData{
				Folder:   folder,
				Products: make(map[entity.ID]*productData),
			}
			output[folder.ID] = data
		}

		slot, ok := data.Products[product.ID]
		if !ok {
			slot = &productData{Product: product, Version: version}
			data.Products[product.ID] = slot
			data.productOrder = append(data.productOrder, product.ID)
		}
		slot.Representations = append(slot.Representations, repre)
	}

	return output, nil
}
