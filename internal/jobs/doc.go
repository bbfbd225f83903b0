// Package jobs runs episode generation jobs in the background, advancing
// each through a fixed sequence of progress steps until completion.
package jobs
