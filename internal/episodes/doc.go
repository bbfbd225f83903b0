// Package episodes implements the submission pipeline: request validation,
// catalog referential checks, transactional episode creation, and job
// scheduling.
package episodes
