package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_MissingFlags(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-project", "demo"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required flags")
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.hcl")
	snapshotPath := filepath.Join(dir, "project.hcl")

	settingsHCL := `
host "maya" {
  workfile_builder {
    profile {
      tasks = ["modeling"]

      current_context {
        loaders       = ["SceneReferenceLoader"]
        product_types = ["model"]
        repre_names   = ["abc"]
      }
    }
  }
}
`
	snapshotHCL := `
project "demo" {
  folder "assets/char/hero" {
    task "modeling" {
      type = "Modeling"
    }

    product "modelMain" {
      product_type = "model"

      version "3" {
        representation "abc" {
          path = "/publish/modelMain_v003.abc"
        }
      }
    }
  }
}
`
	require.NoError(t, os.WriteFile(settingsPath, []byte(settingsHCL), 0o600))
	require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshotHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{
		"-settings", settingsPath,
		"-snapshot", snapshotPath,
		"-project", "demo",
		"-folder", "assets/char/hero",
		"-task", "modeling",
		"-host", "maya",
		"-log-level", "error",
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "assets/char/hero")
	require.Contains(t, out.String(), "modelMain")
	require.Contains(t, out.String(), "/publish/modelMain_v003.abc")
}

func TestRun_EndToEnd_NoProfileForTask(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.hcl")
	snapshotPath := filepath.Join(dir, "project.hcl")

	settingsHCL := `
host "maya" {
  workfile_builder {
    profile {
      tasks = ["rigging"]

      current_context {
        loaders       = ["SceneReferenceLoader"]
        product_types = ["model"]
        repre_names   = ["abc"]
      }
    }
  }
}
`
	snapshotHCL := `
project "demo" {
  folder "assets/char/hero" {
    product "modelMain" {
      product_type = "model"

      version "1" {
        representation "abc" {
          path = "/publish/modelMain_v001.abc"
        }
      }
    }
  }
}
`
	require.NoError(t, os.WriteFile(settingsPath, []byte(settingsHCL), 0o600))
	require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshotHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{
		"-settings", settingsPath,
		"-snapshot", snapshotPath,
		"-project", "demo",
		"-folder", "assets/char/hero",
		"-task", "modeling",
		"-host", "maya",
		"-log-level", "error",
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "No containers were loaded.")
}
