// Package provider decides, per path, which document variant backs a merge
// session: the live host document when the workspace has the path open,
// otherwise the file on disk. It also keeps the one-session-per-path
// registry and, optionally, watches staged files for external writes.
package provider
