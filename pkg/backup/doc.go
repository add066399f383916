// Package backup is the backup collector, the inverse of the sync applier.
// It copies every repository-backed entry from the home directory into the
// working tree layout, then optionally commits and pushes.
//
// Files are copied one by one. A failure leaves the working tree in
// whatever state the copy reached.
package backup
