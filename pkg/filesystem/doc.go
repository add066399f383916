// Package filesystem provides the types.FS implementation dotsync runs on
// and the copy and comparison routines both directions of a sync share.
//
// Copy replaces the destination with the source: files are written
// atomically, directories are replaced wholesale and symlinks are recreated
// with the same target. Equal answers whether a destination already matches
// its source, which is what makes a repeated sync a no-op.
package filesystem
