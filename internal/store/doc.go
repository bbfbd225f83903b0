// Package store persists the episode catalog, episodes with their
// participant links, and job lifecycle state in a single SQLite database.
//
// Lookup methods return nil, nil for absent rows; callers treat "not found"
// as ordinary control flow rather than an error condition. Episode creation
// runs as one transaction so the per-series episode numbering stays gapless
// under concurrent submissions.
package store
