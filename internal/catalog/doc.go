// Package catalog persists pipeline state for every ingested image in a
// SQLite database: lifecycle status, analysis results, metadata drafts,
// per-marketplace renditions, heartbeats, and review flags.
//
// The store is the single source of truth for the workflow manager; stages
// read and mutate items through it so interrupted batches resume where they
// stopped. JSON payload columns keep the schema stable while the analysis and
// draft shapes evolve.
package catalog
