package builder

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/workbuildgo/internal/ctxlog"
	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/internal/settings"
)

// resolvedProfile wraps a build profile with its case-normalized lookups and
// compiled name filters. Prepared once per build and reused for every
// product match.
type resolvedProfile struct {
	src             *settings.BuildProfile
	productTypesLow map[string]struct{}
	repreNamesLow   []string
	nameFilters     []*regexp.Regexp
}

// filterBuildProfiles drops invalid profiles and prepares the valid ones.
//
// A profile is invalid when it misses loaders, product types or
// representation names, or when none of its loaders is currently
// registered. Invalid profiles are logged and skipped, never fatal.
func filterBuildProfiles(ctx context.Context, pool []*settings.BuildProfile, loadersByName map[string]registry.Loader) []*resolvedProfile {
	logger := ctxlog.FromContext(ctx)

	var valid []*resolvedProfile
	for _, profile := range pool {
		if len(profile.Loaders) == 0 {
			logger.Warn("Build profile has missing loaders configuration.",
				"profile", profileDigest(profile))
			continue
		}
		anyLoader := false
		for _, loaderName := range profile.Loaders {
			if _, ok := loadersByName[loaderName]; ok {
				anyLoader = true
				break
			}
		}
		if !anyLoader {
			logger.Warn("All loaders from build profile are unavailable.",
				"profile", profileDigest(profile))
			continue
		}
		if len(profile.ProductTypes) == 0 {
			logger.Warn("Build profile is missing product types configuration.",
				"profile", profileDigest(profile))
			continue
		}
		if len(profile.RepreNames) == 0 {
			logger.Warn("Build profile is missing representation names filtering.",
				"profile", profileDigest(profile))
			continue
		}

		resolved := &resolvedProfile{
			src:             profile,
			productTypesLow: make(map[string]struct{}, len(profile.ProductTypes)),
			repreNamesLow:   make([]string, 0, len(profile.RepreNames)),
		}
		for _, productType := range profile.ProductTypes {
			resolved.productTypesLow[strings.ToLower(productType)] = struct{}{}
		}
		for _, name := range profile.RepreNames {
			resolved.repreNamesLow = append(resolved.repreNamesLow, strings.ToLower(name))
		}

		badFilter := false
		for _, pattern := range profile.ProductNameFilters {
			// Filters match from the start of the name, not the full name.
			re, err := regexp.Compile("^(?:" + pattern + ")")
			if err != nil {
				logger.Warn("Build profile has an invalid product name filter.",
					"pattern", pattern, "error", err)
				badFilter = true
				break
			}
			resolved.nameFilters = append(resolved.nameFilters, re)
		}
		if badFilter {
			continue
		}

		valid = append(valid, resolved)
	}
	return valid
}

// prepareProfileForProducts assigns a profile to every product that one
// matches.
//
// Products are grouped by product type; for each type the profiles are
// scanned in configured order and the first whose product-type set contains
// the type claims every product of that type, subject to the optional name
// filters. First match wins; later profiles are never consulted for that
// type. Products with no match are left out.
func prepareProfileForProducts(products []*entity.Product, profiles []*resolvedProfile) map[entity.ID]*resolvedProfile {
	productsByType := make(map[string][]*entity.Product)
	for _, product := range products {
		typeName := product.TypeName()
		if typeName == "" {
			continue
		}
		productsByType[typeName] = append(productsByType[typeName], product)
	}

	// Sorted type iteration keeps repeated builds byte-identical in logs.
	typeNames := make([]string, 0, len(productsByType))
	for typeName := range productsByType {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)

	out := make(map[entity.ID]*resolvedProfile)
	for _, typeName := range typeNames {
		typeLow := strings.ToLower(typeName)
		for _, profile := range profiles {
			if _, ok := profile.productTypesLow[typeLow]; !ok {
				continue
			}
			for _, product := range productsByType[typeName] {
				if len(profile.nameFilters) > 0 && !matchesAnyFilter(profile.nameFilters, product.Name) {
					continue
				}
				out[product.ID] = profile
			}
			// First matching profile claims the whole product type.
			break
		}
	}
	return out
}

func matchesAnyFilter(filters []*regexp.Regexp, name string) bool {
	for _, re := range filters {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func profileDigest(profile *settings.BuildProfile) string {
	return "loaders=[" + strings.Join(profile.Loaders, ",") +
		"] product_types=[" + strings.Join(profile.ProductTypes, ",") +
		"] repre_names=[" + strings.Join(profile.RepreNames, ",") + "]"
}
