package builder

import (
	"context"

	"github.com/vk/workbuildgo/internal/ctxlog"
	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/internal/settings"
	"github.com/vk/workbuildgo/internal/store"
)

// Context identifies the workfile being built: project, folder, task and
// host application. It is always passed explicitly; the builder never reads
// ambient process state.
type Context struct {
	Project    string
	FolderPath string
	TaskName   string
	Host       string
}

// FolderContainers groups the containers loaded for one folder.
type FolderContainers struct {
	Folder     *entity.Folder
	Containers []*entity.Container
}

// Builder orchestrates a workfile build over a representation store, a
// loader registry and loaded project settings.
type Builder struct {
	store    store.Store
	registry *registry.Registry
	settings *settings.Settings
}

// New creates a Builder over its three collaborators.
func New(st store.Store, reg *registry.Registry, cfg *settings.Settings) *Builder {
	return &Builder{store: st, registry: reg, settings: cfg}
}

// BuildWorkfile loads the latest versions of the current and linked folders
// into containers, driven by the host's build profiles.
//
// Every configuration gap (unknown folder, no loaders, no profiles, no
// candidate folders) degrades to returning whatever was accumulated so far,
// with a warning. Store errors are the only hard failures.
func (b *Builder) BuildWorkfile(ctx context.Context, bctx Context) ([]FolderContainers, error) {
	logger := ctxlog.FromContext(ctx)
	var loaded []FolderContainers

	currentFolder, err := b.store.FolderByPath(ctx, bctx.Project, bctx.FolderPath)
	if err != nil {
		return loaded, err
	}
	if currentFolder == nil {
		logger.Warn("Folder was not found, nothing to build.",
			"project", bctx.Project, "folder", bctx.FolderPath)
		return loaded, nil
	}

	loadersByName := b.registry.EnabledLoaders()
	if len(loadersByName) == 0 {
		logger.Warn("There are no registered loaders.")
		return loaded, nil
	}

	taskType := currentFolder.TaskType(bctx.TaskName)
	taskProfile := b.taskProfileFor(ctx, bctx, taskType)
	if taskProfile == nil {
		logger.Warn("Current task does not have any build profile.",
			"task", bctx.TaskName, "task_type", taskType)
		return loaded, nil
	}

	currentPool := taskProfile.CurrentContext
	linkedPool := taskProfile.LinkedAssets
	switch {
	case len(currentPool) == 0 && len(linkedPool) == 0:
		logger.Warn("Current task has an empty build profile.", "task", bctx.TaskName)
		return loaded, nil
	case len(currentPool) == 0:
		logger.Warn("Current task has no build profiles for its own context.",
			"task", bctx.TaskName)
	case len(linkedPool) == 0:
		logger.Warn("Current task has no build profiles for linked folders.",
			"task", bctx.TaskName)
	}

	var folders []*entity.Folder
	if len(currentPool) > 0 {
		folders = append(folders, currentFolder)
	}
	if len(linkedPool) > 0 {
		linked, err := b.store.LinkedFolders(ctx, bctx.Project, currentFolder.ID)
		if err != nil {
			return loaded, err
		}
		folders = append(folders, linked...)
	}
	if len(folders) == 0 {
		logger.Warn("Folder has no linked folders. Nothing to process.",
			"folder", currentFolder.Path)
		return loaded, nil
	}

	collected, err := b.collectLastVersionRepres(ctx, bctx.Project, folders)
	if err != nil {
		return loaded, err
	}

	// Product ordering spans both pools so a build stays stable when the
	// same product type appears in each.
	orderingPool := append(append([]*settings.BuildProfile{}, currentPool...), linkedPool...)

	if len(currentPool) > 0 {
		if data, ok := collected[currentFolder.ID]; ok {
			if result := b.loadFolder(ctx, data, currentPool, orderingPool, loadersByName); result != nil {
				loaded = append(loaded, *result)
			}
			delete(collected, currentFolder.ID)
		}
	}

	// Linked folders in the order the store returned them.
	for _, folder := range folders {
		data, ok := collected[folder.ID]
		if !ok {
			continue
		}
		if result := b.loadFolder(ctx, data, linkedPool, orderingPool, loadersByName); result != nil {
			loaded = append(loaded, *result)
		}
		delete(collected, folder.ID)
	}

	return loaded, nil
}

// taskProfileFor resolves the task profile from the host's settings tree.
// Returns nil when the host has no workfile builder configuration or no
// profile matches the task context.
func (b *Builder) taskProfileFor(ctx context.Context, bctx Context, taskType string) *settings.TaskProfile {
	logger := ctxlog.FromContext(ctx)

	host := b.settings.HostByName(bctx.Host)
	if host == nil {
		logger.Warn("Host has no settings.", "host", bctx.Host)
		return nil
	}
	builderSettings := host.Builder()
	if builderSettings == nil || len(builderSettings.Profiles) == 0 {
		logger.Warn("Host has no workfile builder profiles.", "host", bctx.Host)
		return nil
	}
	return settings.MatchTaskProfile(builderSettings.Profiles, bctx.TaskName, taskType)
}
