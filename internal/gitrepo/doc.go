// Package gitrepo provides the git operations the merge driver needs.
//
// All git operations are performed by running the git binary through a
// command.Runner rather than using a Git library like go-git. This
// approach:
//   - Uses the exact same merge-file implementation git itself uses
//   - Sees the same configuration (system, global, repository) the user sees
//   - Lets tests swap in a fake runner with canned outputs
//
// The Repo struct provides the three-way merge, the two read-only
// repository queries, and the config writes used by the install command.
package gitrepo
