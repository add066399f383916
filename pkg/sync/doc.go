// Package sync is the sync applier: it brings the dotfiles repository up to
// date and copies every mapped entry into the home directory.
//
// Entries are independent. A failing entry is reported and the run moves
// on; nothing is rolled back. Only a working tree that cannot be cloned or
// fast-forwarded stops the run.
package sync
