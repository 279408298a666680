// Package sceneref provides the scene reference loader: geometry-like
// products (models, rigs, caches, cameras) loaded as path references into
// the workfile. Placing the reference into a host scene is the caller's job.
package sceneref

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
)

// Name is the identifier build profiles use to select this loader.
const Name = "SceneReferenceLoader"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Disabled keeps the loader registered but excluded from builds.
	Disabled bool
}

// Register registers the scene reference loader with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLoader(Name, &loader{enabled: !m.Disabled})
}

type loader struct {
	enabled bool
}

var productTypes = []string{"model", "rig", "pointcache", "camera"}

var repreNames = []string{"abc", "fbx", "usd", "ma"}

func (l *loader) ProductTypes() []string {
	return productTypes
}

func (l *loader) RepresentationNames() []string {
	return repreNames
}

func (l *loader) Enabled() bool {
	return l.enabled
}

// Load produces a path-reference container for a supported representation.
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
		Namespace:        req.Name + "_ref",
		LoaderName:       Name,
		RepresentationID: repre.ID,
		Data: map[string]string{
			"path":           repre.Path,
			"representation": repre.Name,
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
