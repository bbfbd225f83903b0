// Command storyloom is the CLI for the storyloom daemon: it submits
// episodes, inspects jobs, and lists the catalog over the daemon's HTTP API.
package main
