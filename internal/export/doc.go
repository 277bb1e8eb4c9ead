// Package export writes marketplace submission CSVs from curated renditions.
// Each marketplace gets its own file in the export directory with the column
// layout its bulk-upload form expects. Rows are upserted by filename so
// re-running an item never duplicates its entry.
package export
