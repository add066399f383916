// Package testutil provides isolated environments and fakes for testing
// dotsync components.
//
// Key components:
//   - TestEnvironment: a temporary home, working tree and XDG directories
//     with HOME and XDG_* pointed at them for the duration of a test
//   - FailingFS: a types.FS wrapper that fails chosen operations and
//     counts mutations
//   - FakeGit: an in-process stand-in for the git client
package testutil
