package app

import (
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/loaders/imageplane"
	"github.com/vk/workbuildgo/loaders/sceneref"
)

// coreModules is the default set of loader modules registered when the
// caller does not provide its own.
var coreModules = []registry.Module{
	&sceneref.Module{},
	&imageplane.Module{},
}
