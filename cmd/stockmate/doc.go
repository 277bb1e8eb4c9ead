// Command stockmate is the CLI for the stock-photography metadata pipeline:
// it ingests image folders, runs the staged workflow, and administers the
// catalog, exports, and daemon.
package main
