// Package config loads, normalizes, and validates the TOML configuration that
// drives the pipeline: directory layout, vision API credentials, metadata
// generation settings, marketplace targets, embedding and upload behaviour,
// notification topics, and workflow timing.
//
// Defaults live in Default(); Load layers a config file over them, expands
// home-relative paths, pulls credentials from the environment when unset, and
// rejects configurations the daemon could not run with.
package config
