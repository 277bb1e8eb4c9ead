// Package daemon runs the long-lived processing service: it enforces
// single-instance execution with a file lock, owns the workflow manager
// lifecycle, and exposes catalog administration used by the CLI.
package daemon
