package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// JobKindEpisodeGeneration is the single job kind the pipeline schedules today.
const JobKindEpisodeGeneration = "episode_generation"

// EpisodeStatusDraft is the status every episode carries at creation.
const EpisodeStatusDraft = "draft"

// DefaultParticipantRole is assigned to every episode character link.
const DefaultParticipantRole = "support"

var allStatuses = []Status{
	StatusQueued,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known job statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Theme classifies story intent and is selectable at submission.
type Theme struct {
	ID          int64
	Key         string
	Label       string
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Series is an ordered collection of episodes sharing a story line.
type Series struct {
	ID          int64
	Title       string
	Description string
	Language    string
	CreatedAt   time.Time
}

// Character is a reusable story participant selectable at submission.
type Character struct {
	ID          int64
	Name        string
	SpeechStyle string
	TraitsJSON  string
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Episode is one narrative unit within a series. Summary and ScriptText are
// populated by later pipeline phases and stay empty at creation.
type Episode struct {
	ID                        int64
	SeriesID                  int64
	EpisodeNumber             int
	Title                     string
	UserPrompt                string
	ThemeID                   int64
	ContinuationFromEpisodeID *int64
	Summary                   string
	ScriptText                string
	TargetDurationSec         int
	Status                    string
	CreatedAt                 time.Time
}

// Participant links one character to one episode with a role label.
type Participant struct {
	EpisodeID   int64
	CharacterID int64
	Role        string
}

// Job tracks one asynchronous processing run for an episode.
type Job struct {
	ID           int64
	EpisodeID    int64
	Type         string
	Status       Status
	ProgressPct  int
	Step         string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
