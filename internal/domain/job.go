package domain

import "strings"

// JobState enumerates the states reported by the generation service.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// SubmitRequest describes one generation job handed to the external service.
type SubmitRequest struct {
	Prompt            string
	ReferenceImage    []byte
	ReferenceImageURL string
	Width             int
	Height            int
	StyleID           string
}

// JobStatus is the subset of the generation service status payload the
// orchestrator consumes.
type JobStatus struct {
	State      JobState
	Progress   int
	ResultURLs []string
}

// Completed reports whether the job finished. A reported progress of 100 is
// treated as finished even when the state still says otherwise.
func (s JobStatus) Completed() bool {
	return normalizeState(s.State) == JobStateCompleted || s.Progress == 100
}

// Failed reports whether the service gave up on the job.
func (s JobStatus) Failed() bool {
	return normalizeState(s.State) == JobStateFailed || s.Progress < 0
}

func normalizeState(state JobState) JobState {
	return JobState(strings.ToLower(strings.TrimSpace(string(state))))
}
