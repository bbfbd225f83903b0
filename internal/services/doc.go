// Package services defines the shared error taxonomy used across the
// submission pipeline, the job runner, and the API layer. Errors are tagged
// with sentinel markers so callers can classify failures with errors.Is
// without inspecting message text.
package services
