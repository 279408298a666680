// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/workbuildgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("workbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
workbuild - Build a workfile from the latest published representations.

Usage:
  workbuild [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.String("settings", "", "Path to a settings .hcl file or a directory of them.")
	snapshotFlag := flagSet.String("snapshot", "", "Path to an HCL project snapshot (in-memory store mode).")
	storeURLFlag := flagSet.String("store-url", "", "SurrealDB websocket URL of the representation store.")
	storeUserFlag := flagSet.String("store-user", "", "Representation store user.")
	storePassFlag := flagSet.String("store-pass", "", "Representation store password.")
	storeNSFlag := flagSet.String("store-ns", "pipeline", "Representation store namespace.")
	storeDBFlag := flagSet.String("store-db", "entities", "Representation store database.")
	projectFlag := flagSet.String("project", "", "Project name.")
	folderFlag := flagSet.String("folder", "", "Path of the current folder.")
	taskFlag := flagSet.String("task", "", "Name of the current task.")
	hostFlag := flagSet.String("host", "", "Host application name used to pick settings.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	var missing []string
	for _, required := range []struct{ name, value string }{
		{"settings", *settingsFlag},
		{"project", *projectFlag},
		{"folder", *folderFlag},
		{"task", *taskFlag},
		{"host", *hostFlag},
	} {
		if required.value == "" {
			missing = append(missing, "-"+required.name)
		}
	}
	if len(missing) > 0 {
		return nil, false, &ExitError{
			Code:    2,
			Message: fmt.Sprintf("missing required flags: %s", strings.Join(missing, ", ")),
		}
	}
	if *snapshotFlag == "" && *storeURLFlag == "" {
		return nil, false, &ExitError{
			Code:    2,
			Message: "one of -snapshot or -store-url is required",
		}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{
			Code:    2,
			Message: fmt.Sprintf("invalid log format %q, expected 'text' or 'json'", *logFormatFlag),
		}
	}

	return &app.Config{
		SettingsPath:   *settingsFlag,
		SnapshotPath:   *snapshotFlag,
		StoreURL:       *storeURLFlag,
		StoreUser:      *storeUserFlag,
		StorePassword:  *storePassFlag,
		StoreNamespace: *storeNSFlag,
		StoreDatabase:  *storeDBFlag,
		Project:        *projectFlag,
		FolderPath:     *folderFlag,
		Task:           *taskFlag,
		Host:           *hostFlag,
		LogFormat:      logFormat,
		LogLevel:       strings.ToLower(*logLevelFlag),
	}, false, nil
}
