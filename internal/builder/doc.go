// Package builder implements the settings-driven workfile build.
//
// A build resolves the current folder and its linked folders, fetches the
// latest product versions and their representations from the store, matches
// every product against the configured build profiles and then attempts
// loads in profile priority order until each product has produced at most
// one container.
//
// The whole build is a single synchronous call on the caller's goroutine.
// Host applications are not thread-safe for scene mutation, so nothing here
// spawns goroutines or defers work.
package builder
