// Command storyloomd runs the storyloom daemon: the SQLite-backed episode
// store, the background job runner, and the HTTP API.
package main
