// Package testsupport provides shared helpers for package tests: per-test
// configuration backed by temp directories and store construction with
// automatic cleanup.
package testsupport
