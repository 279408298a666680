package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/workbuildgo/internal/registry"
	"github.com/vk/workbuildgo/internal/settings"
	"github.com/vk/workbuildgo/internal/store"
	"github.com/vk/workbuildgo/internal/testutil"
)

func newRegistry(scripted ...*testutil.ScriptedLoader) *registry.Registry {
	reg := registry.New()
	for _, loader := range scripted {
		loader.Register(reg)
	}
	return reg
}

func hostSettings(host string, profiles ...*settings.TaskProfile) *settings.Settings {
	return &settings.Settings{Hosts: []*settings.HostSettings{{
		Name:            host,
		WorkfileBuilder: &settings.WorkfileBuilder{Profiles: profiles},
	}}}
}

func TestBuildWorkfile_UnknownFolder(t *testing.T) {
	t.Parallel()

	b := New(store.NewMemory(), newRegistry(&testutil.ScriptedLoader{LoaderName: "LoaderX"}),
		hostSettings("maya"))
	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "missing", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Empty(t, got, "unknown folder degrades to an empty result")
}

func TestBuildWorkfile_NoLoaders(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{{Name: "modelMain", ProductType: "model", Repres: []string{"abc"}}})

	b := New(mem, registry.New(), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{{
			Loaders: []string{"LoaderX"}, ProductTypes: []string{"model"}, RepreNames: []string{"abc"},
		}},
	}))
	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBuildWorkfile_NoMatchingTaskProfile(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{{Name: "modelMain", ProductType: "model", Repres: []string{"abc"}}})

	b := New(mem,
		newRegistry(&testutil.ScriptedLoader{LoaderName: "LoaderX"}),
		hostSettings("maya", &settings.TaskProfile{
			Tasks: []string{"rigging"},
			CurrentContext: []*settings.BuildProfile{{
				Loaders: []string{"LoaderX"}, ProductTypes: []string{"model"}, RepreNames: []string{"abc"},
			}},
		}))
	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBuildWorkfile_CurrentContext(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "modelMain", ProductType: "model", Repres: []string{"abc", "ma"}},
			{Name: "lookMain", ProductType: "look", Repres: []string{"ma"}},
		})

	loader := &testutil.ScriptedLoader{LoaderName: "LoaderX", Log: &testutil.CallLog{}}
	b := New(mem, newRegistry(loader), hostSettings("maya", &settings.TaskProfile{
		Tasks: []string{"modeling"},
		CurrentContext: []*settings.BuildProfile{{
			Loaders: []string{"LoaderX"}, ProductTypes: []string{"model"}, RepreNames: []string{"abc"},
		}},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "assets/char/hero", got[0].Folder.Path)
	require.Len(t, got[0].Containers, 1, "look product has no matching profile")
	require.Equal(t, "modelMain", got[0].Containers[0].Name)
	require.Equal(t, "LoaderX", got[0].Containers[0].LoaderName)
}

func TestBuildWorkfile_ProductOrderFollowsProfiles(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "A", ProductType: "model", Repres: []string{"abc"}},
			{Name: "B", ProductType: "rig", Repres: []string{"abc"}},
		})

	log := &testutil.CallLog{}
	loader := &testutil.ScriptedLoader{LoaderName: "LoaderX", Log: log}
	// rig profile first, model profile second.
	b := New(mem, newRegistry(loader), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{
			{Loaders: []string{"LoaderX"}, ProductTypes: []string{"rig"}, RepreNames: []string{"abc"}},
			{Loaders: []string{"LoaderX"}, ProductTypes: []string{"model"}, RepreNames: []string{"abc"}},
		},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Containers, 2)

	calls := log.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "B", calls[0].Name, "rig profile is configured first, so B loads first")
	require.Equal(t, "A", calls[1].Name)
}

func TestBuildWorkfile_LoaderFallback(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	// Only an "abc" representation exists even though "usd" has priority
	// position two.
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "modelMain", ProductType: "model", Repres: []string{"abc"}},
		})

	log := &testutil.CallLog{}
	loaderX := &testutil.ScriptedLoader{
		LoaderName: "LoaderX",
		Log:        log,
		Fail:       map[string]error{"abc": errors.New("broken plugin")},
	}
	loaderY := &testutil.ScriptedLoader{LoaderName: "LoaderY", Log: log}

	b := New(mem, newRegistry(loaderX, loaderY), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{{
			Loaders:      []string{"LoaderX", "LoaderY"},
			ProductTypes: []string{"model"},
			RepreNames:   []string{"abc", "usd"},
		}},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Containers, 1, "exactly one container per product")
	require.Equal(t, "LoaderY", got[0].Containers[0].LoaderName)

	calls := log.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "LoaderX", calls[0].Loader)
	require.Equal(t, "LoaderY", calls[1].Loader)
	for _, call := range calls {
		require.Equal(t, "abc", call.Representation, "no attempt may touch usd")
	}
}

func TestBuildWorkfile_IncompatibleLoaderFallsThrough(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "modelMain", ProductType: "model", Repres: []string{"abc"}},
		})

	log := &testutil.CallLog{}
	incompatible := &testutil.ScriptedLoader{
		LoaderName: "Picky",
		Log:        log,
		Fail:       map[string]error{"abc": registry.ErrIncompatible},
	}
	fallback := &testutil.ScriptedLoader{LoaderName: "Fallback", Log: log}

	b := New(mem, newRegistry(incompatible, fallback), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{{
			Loaders:      []string{"Picky", "Fallback"},
			ProductTypes: []string{"model"},
			RepreNames:   []string{"abc"},
		}},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Containers, 1)
	require.Equal(t, "Fallback", got[0].Containers[0].LoaderName)
}

func TestBuildWorkfile_AllAttemptsFailSkipsProduct(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "modelMain", ProductType: "model", Repres: []string{"abc", "usd"}},
			{Name: "rigMain", ProductType: "rig", Repres: []string{"ma"}},
		})

	failing := &testutil.ScriptedLoader{
		LoaderName: "LoaderX",
		Fail: map[string]error{
			"abc": errors.New("boom"),
			"usd": errors.New("boom"),
		},
	}
	b := New(mem, newRegistry(failing), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{
			{Loaders: []string{"LoaderX"}, ProductTypes: []string{"model"}, RepreNames: []string{"abc", "usd"}},
			{Loaders: []string{"LoaderX"}, ProductTypes: []string{"rig"}, RepreNames: []string{"ma"}},
		},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "assets/char/hero", TaskName: "modeling", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Containers, 1, "exhausted product is skipped, the healthy one loads")
	require.Equal(t, "rigMain", got[0].Containers[0].Name)
}

func TestBuildWorkfile_LinkedFoldersOnly(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	shot := testutil.AddFolderTree(mem, "demo", "shots/sq01/sh010", "animation", "Animation",
		[]testutil.ProductFixture{
			{Name: "layoutMain", ProductType: "layout", Repres: []string{"abc"}},
		})
	hero := testutil.AddFolderTree(mem, "demo", "assets/char/hero", "modeling", "Modeling",
		[]testutil.ProductFixture{
			{Name: "rigMain", ProductType: "rig", Repres: []string{"ma"}},
		})
	mem.AddLink("demo", shot.ID, hero.ID)

	loader := &testutil.ScriptedLoader{LoaderName: "LoaderX"}
	// The current-context pool targets a type the shot does not have, while
	// the linked pool matches the rig on the linked asset.
	b := New(mem, newRegistry(loader), hostSettings("maya", &settings.TaskProfile{
		CurrentContext: []*settings.BuildProfile{{
			Loaders: []string{"LoaderX"}, ProductTypes: []string{"camera"}, RepreNames: []string{"abc"},
		}},
		LinkedAssets: []*settings.BuildProfile{{
			Loaders: []string{"LoaderX"}, ProductTypes: []string{"rig"}, RepreNames: []string{"ma"},
		}},
	}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "shots/sq01/sh010", TaskName: "animation", Host: "maya",
	})
	require.NoError(t, err)
	require.Len(t, got, 1, "only the linked folder produced containers")
	require.Equal(t, "assets/char/hero", got[0].Folder.Path)
	require.Len(t, got[0].Containers, 1)
	require.Equal(t, "rigMain", got[0].Containers[0].Name)
}

func TestBuildWorkfile_LinkedPoolOnlyNoLinks(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	testutil.AddFolderTree(mem, "demo", "shots/sq01/sh010", "animation", "Animation",
		[]testutil.ProductFixture{
			{Name: "layoutMain", ProductType: "layout", Repres: []string{"abc"}},
		})

	b := New(mem, newRegistry(&testutil.ScriptedLoader{LoaderName: "LoaderX"}),
		hostSettings("maya", &settings.TaskProfile{
			LinkedAssets: []*settings.BuildProfile{{
				Loaders: []string{"LoaderX"}, ProductTypes: []string{"rig"}, RepreNames: []string{"ma"},
			}},
		}))

	got, err := b.BuildWorkfile(context.Background(), Context{
		Project: "demo", FolderPath: "shots/sq01/sh010", TaskName: "animation", Host: "maya",
	})
	require.NoError(t, err)
	require.Empty(t, got, "no links and no current-context pool means nothing to process")
}
