// Package imageplane provides the image plane loader: rendered or filmed
// image products loaded as footage references into the workfile.
package imageplane

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
)

// Name is the identifier build profiles use to select this loader.
const Name = "ImagePlaneLoader"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Disabled keeps the loader registered but excluded from builds.
	Disabled bool
}

// Register registers the image plane loader with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLoader(Name, &loader{enabled: !m.Disabled})
}

type loader struct {
	enabled bool
}

var productTypes = []string{"render", "plate", "image", "review"}

var repreNames = []string{"exr", "png", "jpg", "mov"}

func (l *loader) ProductTypes() []string {
	return productTypes
}

func (l *loader) RepresentationNames() []string {
	return repreNames
}

func (l *loader) Enabled() bool {
	return l.enabled
}

// Load produces a footage container for a supported representation.
func (l *loader) Load(_ context.Context, req registry.LoadRequest) (*entity.Container, error) {
	repre := req.Representation
	if !supported(repre.Name) {
		return nil, fmt.Errorf("representation %q: %w", repre.Name, registry.ErrIncompatible)
	}
	if repre.Path == "" {
		return nil, fmt.Errorf("representation %q has no resolved path", repre.Name)
	}
	return &entity.Container{
		Name:             req.Name,
		Namespace:        req.Name + "_plate",
		LoaderName:       Name,
		RepresentationID: repre.ID,
		Data: map[string]string{
			"path":           repre.Path,
			"representation": strings.ToLower(repre.Name),
		},
	}, nil
}

func supported(repreName string) bool {
	for _, name := range repreNames {
		if strings.EqualFold(name, repreName) {
			return true
		}
	}
	return false
}
