package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/workbuildgo/internal/entity"
)

// Module is the interface that all loader modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// LoadRequest carries everything a loader needs for one load attempt. The
// representation is passed explicitly rather than looked up from ambient
// state.
type LoadRequest struct {
	Representation *entity.Representation
	// Name is the container name, typically the product name.
	Name string
}

// Loader is a single load plugin. Implementations declare which product
// types and representation names they can handle; Load either produces a
// container or returns an error. Returning a wrapped ErrIncompatible signals
// that the representation is outside the loader's declared support.
type Loader interface {
	ProductTypes() []string
	RepresentationNames() []string
	Enabled() bool
	Load(ctx context.Context, req LoadRequest) (*entity.Container, error)
}

// Registry holds the registered loaders for a single application instance.
type Registry struct {
	loaders map[string]Loader
	// order preserves registration order for deterministic enumeration.
	order []string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// RegisterLoader registers a loader under its identifier. Duplicate
// identifiers are a programmer error and panic immediately.
func (r *Registry) RegisterLoader(name string, loader Loader) {
	if _, exists := r.loaders[name]; exists {
		panic(fmt.Sprintf("loader with name '%s' already registered", name))
	}
	slog.Debug("Registering loader.", "name", name)
	r.loaders[name] = loader
	r.order = append(r.order, name)
}

// EnabledLoaders returns the enabled loaders keyed by identifier.
func (r *Registry) EnabledLoaders() map[string]Loader {
	out := make(map[string]Loader, len(r.loaders))
	for name, loader := range r.loaders {
		if loader.Enabled() {
			out[name] = loader
		}
	}
	return out
}

// Names returns all registered loader identifiers in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
