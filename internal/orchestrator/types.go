package orchestrator

import (
	"time"
)

// WorkItem is one generation request for one variation of one record.
type WorkItem struct {
	RecordID     string `json:"record_id"`
	Ordinal      int    `json:"ordinal"`
	Variation    int    `json:"variation"`
	Prompt       string `json:"prompt"`
	ReferenceURL string `json:"reference_url,omitempty"`
	StyleID      string `json:"style_id,omitempty"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// InFlightJob is a submitted WorkItem awaiting a terminal status.
type InFlightJob struct {
	Item         WorkItem
	JobID        string
	Polls        int
	StatusErrors int
	CreatedAt    time.Time
}

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

// Outcome messages for the error taxonomy.
const (
	MsgSubmissionFailed  = "submission failed"
	MsgGenerationFailed  = "generation failed"
	MsgTimeout           = "timeout"
	MsgStatusCheckFailed = "failed to check status"
	MsgProcessingFailed  = "failed to process completed task"
)

// Outcome is the terminal record of one WorkItem. Never mutated once built.
type Outcome struct {
	RecordID  string        `json:"record_id"`
	Variation int           `json:"variation"`
	Status    OutcomeStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	URL       string        `json:"url,omitempty"`
	JobID     string        `json:"job_id,omitempty"`
	At        time.Time     `json:"at"`
}

// Succeeded reports whether the outcome carries a durable URL.
func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// RunRequest parameterizes one run.
type RunRequest struct {
	PromptField string   `json:"prompt_field" validate:"required,max=63"`
	MatchAspect bool     `json:"match_aspect"`
	Variations  int      `json:"variations" validate:"gte=0,lte=10"`
	BoardID     string   `json:"board_id" validate:"max=128"`
	BoardName   string   `json:"board_name" validate:"max=120"`
	RecordIDs   []string `json:"record_ids" validate:"max=1000,dive,required,max=128"`
	Limit       int      `json:"limit" validate:"gte=0"`
}

// Report summarizes a finished (or cancelled) run.
type Report struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	BoardID           string    `json:"board_id,omitempty"`
	Records           int       `json:"records"`
	Items             int       `json:"items"`
	Outcomes          []Outcome `json:"outcomes"`
	SuccessCount      int       `json:"success_count"`
	ErrorCount        int       `json:"error_count"`
	PublishedCount    int       `json:"published_count"`
	PublishErrorCount int       `json:"publish_error_count"`
	PatchErrorCount   int       `json:"patch_error_count"`
	PeakInFlight      int       `json:"peak_in_flight"`
	Cancelled         bool      `json:"cancelled,omitempty"`
}

func (r *Report) addOutcome(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Succeeded() {
		r.SuccessCount++
	} else {
		r.ErrorCount++
	}
}
