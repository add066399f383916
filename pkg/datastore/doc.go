// Package datastore keeps the run journal: one record per sync or backup
// run, stored in a bbolt database under the dotsync state directory.
package datastore
