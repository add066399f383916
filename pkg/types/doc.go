// Package types defines the core types shared across dotsync.
//
// The mapping table is a list of Entry values. The Sync Applier and the
// Backup Collector each turn an Entry into a Result; a run collects its
// results into a Summary, which is what gets printed, journaled and tested.
//
// FS is the filesystem seam used by the copy machinery. Production code uses
// filesystem.NewOS; tests can wrap it to inject failures.
package types
