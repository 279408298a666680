package sceneref

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	(&Module{}).Register(reg)

	loaders := reg.EnabledLoaders()
	require.Contains(t, loaders, Name)
	require.Equal(t, productTypes, loaders[Name].ProductTypes())
	require.Equal(t, repreNames, loaders[Name].RepresentationNames())
}

func TestRegister_Disabled(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	(&Module{Disabled: true}).Register(reg)
	require.Empty(t, reg.EnabledLoaders())
	require.Equal(t, []string{Name}, reg.Names(), "disabled loaders stay registered")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	loader := &loader{enabled: true}
	container, err := loader.Load(context.Background(), registry.LoadRequest{
		Representation: &entity.Representation{
			ID:   "repre-1",
			Name: "abc",
			Path: "/publish/modelMain_v003.abc",
		},
		Name: "modelMain",
	})
	require.NoError(t, err)
	require.Equal(t, "modelMain", container.Name)
	require.Equal(t, Name, container.LoaderName)
	require.Equal(t, entity.ID("repre-1"), container.RepresentationID)
	require.Equal(t, "/publish/modelMain_v003.abc", container.Data["path"])
}

func TestLoad_IncompatibleRepresentation(t *testing.T) {
	t.Parallel()

	loader := &loader{enabled: true}
	_, err := loader.Load(context.Background(), registry.LoadRequest{
		Representation: &entity.Representation{Name: "exr", Path: "/publish/render.exr"},
		Name:           "renderMain",
	})
	require.ErrorIs(t, err, registry.ErrIncompatible)
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	loader := &loader{enabled: true}
	_, err := loader.Load(context.Background(), registry.LoadRequest{
		Representation: &entity.Representation{Name: "abc"},
		Name:           "modelMain",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, registry.ErrIncompatible)
}
