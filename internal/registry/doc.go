// Package registry provides the central "glue" for the loader plugin system.
//
// The Registry stores mappings between the loader identifiers used in build
// profiles (e.g., "SceneReferenceLoader") and the Go implementations behind
// them. During application startup the registry is populated by loader
// modules and the identifiers are checked for uniqueness, preventing a class
// of silent misconfiguration where two plugins fight over one profile entry.
package registry
