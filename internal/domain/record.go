package domain

import "time"

// RecordStatus enumerates the terminal generation states written back to a record.
type RecordStatus string

const (
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusPartial   RecordStatus = "partial"
	RecordStatusFailed    RecordStatus = "failed"
)

// Record is a row owned by the external record store. The orchestrator only
// reads it, except for the generation status patch written once all of its
// variations have resolved.
type Record struct {
	ID                string
	Position          int
	Prompt            string
	ReferenceImageURL string
	StyleID           string
	GenerationStatus  string
	GeneratedURLs     []string
	UpdatedAt         time.Time
}

// RecordFilter selects eligible records: a non-empty prompt in PromptField and
// a reference image. RecordIDs and Limit narrow the selection further.
type RecordFilter struct {
	PromptField string
	RecordIDs   []string
	Limit       int
}

// RecordPatch carries the fields written back after a record resolves.
type RecordPatch struct {
	GenerationStatus RecordStatus
	GeneratedURLs    []string
}
