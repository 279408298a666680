package builder

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/workbuildgo/internal/ctxlog"
	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/internal/settings"
)

// loadFolder loads containers for one folder's worth of collected entities
// against a profile pool. Returns nil when there is nothing to load.
func (b *Builder) loadFolder(
	ctx context.Context,
	data *folderData,
	pool []*settings.BuildProfile,
	orderingPool []*settings.BuildProfile,
	loadersByName map[string]registry.Loader,
) *FolderContainers {
	logger := ctxlog.FromContext(ctx)
	if data == nil || len(pool) == 0 || len(loadersByName) == 0 {
		return nil
	}

	validProfiles := filterBuildProfiles(ctx, pool, loadersByName)
	if len(validProfiles) == 0 {
		logger.Warn("There are no valid build profiles. Skipping folder.",
			"folder", data.Folder.Path)
		return nil
	}

	if len(data.Products) == 0 {
		logger.Warn("There are no products for folder.", "folder", data.Folder.Path)
		return nil
	}
	products := make([]*entity.Product, 0, len(data.Products))
	for _, id := range data.productOrder {
		products = append(products, data.Products[id].Product)
	}

	profilesByProductID := prepareProfileForProducts(products, validProfiles)
	if len(profilesByProductID) == 0 {
		logger.Warn("No products matched any build profile.", "folder", data.Folder.Path)
		return nil
	}

	// Keep only representations whose name appears in the matched profile.
	validRepresByProductID := make(map[entity.ID][]*entity.Representation)
	for productID, profile := range profilesByProductID {
		for _, repre := range data.Products[productID].Representations {
			if containsString(profile.repreNamesLow, strings.ToLower(repre.Name)) {
				validRepresByProductID[productID] = append(validRepresByProductID[productID], repre)
			}
		}
	}
	logValidRepres(logger, data, validRepresByProductID)

	containers := b.loadContainers(
		ctx, data, validRepresByProductID, profilesByProductID, orderingPool, loadersByName,
	)
	return &FolderContainers{Folder: data.Folder, Containers: containers}
}

// loadContainers runs the ordered load-attempt loop.
//
// Product order is derived from the configured profile sequence: profiles in
// order, then their declared product types in order, then matching products.
// Per product, representation names are tried in profile priority order and
// for each matching representation every profile loader in order, stopping
// at the first success. Exhausting all combinations skips the product.
func (b *Builder) loadContainers(
	ctx context.Context,
	data *folderData,
	represByProductID map[entity.ID][]*entity.Representation,
	profilesByProductID map[entity.ID]*resolvedProfile,
	orderingPool []*settings.BuildProfile,
	loadersByName map[string]registry.Loader,
) []*entity.Container {
	logger := ctxlog.FromContext(ctx)
	var containers []*entity.Container

	for _, productID := range orderProductIDs(data, orderingPool) {
		repres, ok := represByProductID[productID]
		if !ok {
			continue
		}
		product := data.Products[productID].Product
		profile := profilesByProductID[productID]

		repreByLowName := make(map[string]*entity.Representation, len(repres))
		for _, repre := range repres {
			repreByLowName[strings.ToLower(repre.Name)] = repre
		}

		lastRepreIdx := len(profile.repreNamesLow) - 1
		lastLoaderIdx := len(profile.src.Loaders) - 1

		loaded := false
		for repreIdx, repreNameLow := range profile.repreNamesLow {
			if loaded {
				break
			}
			repre, ok := repreByLowName[repreNameLow]
			if !ok {
				continue
			}

			for loaderIdx, loaderName := range profile.src.Loaders {
				if loaded {
					break
				}
				loader, ok := loadersByName[loaderName]
				if !ok {
					continue
				}

				container, err := loader.Load(ctx, registry.LoadRequest{
					Representation: repre,
					Name:           product.Name,
				})
				if err == nil {
					fillContainerMeta(container, loaderName, repre)
					containers = append(containers, container)
					loaded = true
					continue
				}

				if errors.Is(err, registry.ErrIncompatible) {
					logger.Info("Loader is not compatible with representation.",
						"loader", loaderName, "representation", repre.Name)
				} else {
					logger.Error("Unexpected error happened during loading.",
						"loader", loaderName, "representation", repre.Name, "error", err)
				}

				switch {
				case loaderIdx < lastLoaderIdx:
					logger.Info("Loading failed. Trying next loader.",
						"product", product.Name)
				case repreIdx < lastRepreIdx:
					logger.Info("Loading failed. Trying next representation.",
						"product", product.Name)
				default:
					logger.Info("Loading of product was not successful.",
						"product", product.Name)
				}
			}
		}
	}

	return containers
}

// orderProductIDs walks profiles, then their declared product types, then
// matching products, which is what decides which product loads first.
func orderProductIDs(data *folderData, orderingPool []*settings.BuildProfile) []entity.ID {
	var ordered []entity.ID
	seen := make(map[entity.ID]struct{})

	appendProduct := func(id entity.ID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	for _, profile := range orderingPool {
		for _, productType := range profile.ProductTypes {
			for _, productID := range data.productOrder {
				product := data.Products[productID].Product
				if strings.EqualFold(product.TypeName(), productType) {
					appendProduct(productID)
				}
			}
		}
	}
	// Anything not claimed by the configured ordering keeps discovery order
	// at the tail.
	for _, productID := range data.productOrder {
		appendProduct(productID)
	}
	return ordered
}

func fillContainerMeta(container *entity.Container, loaderName string, repre *entity.Representation) {
	if container == nil {
		return
	}
	if container.LoaderName == "" {
		container.LoaderName = loaderName
	}
	if container.RepresentationID == "" {
		container.RepresentationID = repre.ID
	}
}

func logValidRepres(logger *slog.Logger, data *folderData, represByProductID map[entity.ID][]*entity.Representation) {
	productIDs := make([]string, 0, len(represByProductID))
	for id := range represByProductID {
		productIDs = append(productIDs, string(id))
	}
	sort.Strings(productIDs)
	for _, id := range productIDs {
		product := data.Products[entity.ID(id)].Product
		names := make([]string, 0, len(represByProductID[entity.ID(id)]))
		for _, repre := range represByProductID[entity.ID(id)] {
			names = append(names, repre.Name)
		}
		logger.Debug("Valid representations for product.",
			"folder", data.Folder.Path, "product", product.Name,
			"representations", strings.Join(names, ", "))
	}
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
