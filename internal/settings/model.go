package settings

import (
	"fmt"
	"regexp"
	"strings"
)

// Settings is the decoded settings tree for one project.
type Settings struct {
	Hosts []*HostSettings `hcl:"host,block"`
}

// HostSettings is the per-host slice of the settings tree. The
// workfile_build block name is the legacy spelling and is accepted as an
// alias for workfile_builder.
type HostSettings struct {
	Name            string           `hcl:"name,label"`
	WorkfileBuilder *WorkfileBuilder `hcl:"workfile_builder,block"`
	WorkfileBuild   *WorkfileBuilder `hcl:"workfile_build,block"`
}

// Builder returns the workfile builder settings, preferring the current
// block name over the legacy alias.
func (h *HostSettings) Builder() *WorkfileBuilder {
	if h.WorkfileBuilder != nil {
		return h.WorkfileBuilder
	}
	return h.WorkfileBuild
}

// WorkfileBuilder holds the ordered list of task profiles for one host.
type WorkfileBuilder struct {
	Profiles []*TaskProfile `hcl:"profile,block"`
}

// TaskProfile scopes build profiles to a task context. Empty Tasks or
// TaskTypes lists match any value. The two pools apply to the current folder
// and to its linked folders respectively.
type TaskProfile struct {
	Tasks          []string        `hcl:"tasks,optional"`
	TaskTypes      []string        `hcl:"task_types,optional"`
	CurrentContext []*BuildProfile `hcl:"current_context,block"`
	LinkedAssets   []*BuildProfile `hcl:"linked_assets,block"`
}

// BuildProfile selects which products to load and how. Loaders and
// RepreNames are priority ordered; ProductNameFilters are optional regular
// expressions matched from the start of the product name.
type BuildProfile struct {
	Loaders            []string `hcl:"loaders"`
	ProductTypes       []string `hcl:"product_types"`
	RepreNames         []string `hcl:"repre_names"`
	ProductNameFilters []string `hcl:"product_name_filters,optional"`
}

// HostByName returns the settings for a host, or nil when the host has no
// configuration.
func (s *Settings) HostByName(name string) *HostSettings {
	for _, host := range s.Hosts {
		if strings.EqualFold(host.Name, name) {
			return host
		}
	}
	return nil
}

// Validate walks the settings tree once and collects structural diagnostics:
// build profiles missing a required list and name filters that do not
// compile. Diagnostics are advisory; invalid profiles are skipped again at
// build time against the live loader registry.
func (s *Settings) Validate() []string {
	var diags []string
	for _, host := range s.Hosts {
		builder := host.Builder()
		if builder == nil {
			diags = append(diags, fmt.Sprintf("host %q has no workfile_builder block", host.Name))
			continue
		}
		if host.WorkfileBuilder == nil && host.WorkfileBuild != nil {
			diags = append(diags, fmt.Sprintf("host %q uses the deprecated workfile_build block name", host.Name))
		}
		for i, profile := range builder.Profiles {
			if len(profile.CurrentContext) == 0 && len(profile.LinkedAssets) == 0 {
				diags = append(diags, fmt.Sprintf("host %q profile #%d has no build profile pools", host.Name, i))
			}
			for _, pool := range [][]*BuildProfile{profile.CurrentContext, profile.LinkedAssets} {
				for _, bp := range pool {
					diags = append(diags, bp.validate(host.Name, i)...)
				}
			}
		}
	}
	return diags
}

func (bp *BuildProfile) validate(host string, index int) []string {
	var diags []string
	if len(bp.Loaders) == 0 {
		diags = append(diags, fmt.Sprintf("host %q profile #%d: build profile has no loaders", host, index))
	}
	if len(bp.ProductTypes) == 0 {
		diags = append(diags, fmt.Sprintf("host %q profile #%d: build profile has no product types", host, index))
	}
	if len(bp.RepreNames) == 0 {
		diags = append(diags, fmt.Sprintf("host %q profile #%d: build profile has no representation names", host, index))
	}
	for _, pattern := range bp.ProductNameFilters {
		if _, err := regexp.Compile(pattern); err != nil {
			diags = append(diags, fmt.Sprintf("host %q profile #%d: invalid product name filter %q: %v", host, index, pattern, err))
		}
	}
	return diags
}
