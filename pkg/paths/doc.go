// Package paths provides centralized path handling for dotsync.
//
// It resolves the XDG locations dotsync keeps its own files in (the saved
// repository URL, the run journal, the log file and the default working
// tree) and maps mapping-table entries between the home directory and the
// repository layout:
//
//	~/.config/kitty/kitty.conf  <->  <worktree>/home/.config/kitty/kitty.conf
//
// The home directory can be replaced by a prefix, which is how backups of
// another machine's home and all tests work.
package paths
