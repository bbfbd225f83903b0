// Package api defines the transport DTOs shared by the HTTP server and the
// CLI, plus thin read-only services that adapt store records into them.
package api
