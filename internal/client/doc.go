// Package client provides the HTTP client the CLI uses to talk to a
// running storyloom daemon.
package client
