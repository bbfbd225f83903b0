// Package daemon ties the store, job runner, and HTTP API together into a
// single-instance background process guarded by a file lock.
package daemon
