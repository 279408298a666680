package settings

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/workbuildgo/internal/ctxlog"
	"github.com/vk/workbuildgo/internal/fsutil"
)

// Load parses a settings path into a Settings tree. A directory is walked
// recursively for .hcl files and the host blocks of every file are merged in
// walk order. Structural diagnostics are logged as warnings, never fatal.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("settings path %s is not readable: %w", path, err)
	}

	filePaths := []string{path}
	if info.IsDir() {
		filePaths, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to walk settings directory %s: %w", path, err)
		}
		if len(filePaths) == 0 {
			logger.Warn("No .hcl settings files found in path", "path", path)
		}
	}

	parser := hclparse.NewParser()
	merged := &Settings{}
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", filePath, diags)
		}

		var fileSettings Settings
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &fileSettings); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode settings file %s: %w", filePath, diags)
		}
		merged.Hosts = append(merged.Hosts, fileSettings.Hosts...)
		logger.Debug("Loaded settings file", "file", filePath, "hosts", len(fileSettings.Hosts))
	}

	for _, diag := range merged.Validate() {
		logger.Warn("Settings diagnostic", "detail", diag)
	}

	logger.Info("Settings loaded.", "hosts", len(merged.Hosts))
	return merged, nil
}
