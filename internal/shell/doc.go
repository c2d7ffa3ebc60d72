// Package shell installs the companion shell environment after a
// successful provisioning run.
//
// This package handles:
//   - Detecting the user's shell (bash, zsh, fish)
//   - Locating shell configuration files (rc files)
//   - Rendering the docker alias and completion fragment
//   - Safely upserting a managed block into rc files
//
// # Collaborator, Not Pipeline
//
// Everything here is cosmetic. It runs only after the pipeline and the
// post-install verifier have succeeded, and its failure is reported as
// a warning: a host with a working engine but no aliases is still a
// successful provisioning run.
//
// # The Managed Block
//
// All content lives between two marker lines:
//
//	# >>> dockstrap >>>
//	...
//	# <<< dockstrap <<<
//
// Re-running replaces the block in place rather than appending, so
// repeated provisioning never piles up duplicate alias definitions. A
// file that already carries exactly the current block is left
// untouched.
//
// # Target User
//
// Provisioning normally runs under sudo. The rc file modified is the
// invoking user's (resolved via SUDO_USER), not root's.
//
// # RC File Safety
//
// All modifications are:
//   - Backed up next to the original before the first change
//   - Atomic (temp file + rename in the same directory)
//   - Refused for symlinked rc files
package shell
