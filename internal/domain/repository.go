package domain

import "context"

// RecordStore is the external record store contract.
type RecordStore interface {
	Query(ctx context.Context, filter RecordFilter) ([]Record, error)
	Patch(ctx context.Context, recordID string, patch RecordPatch) (*Record, error)
}

// GenerationService submits asynchronous image jobs and reports their status.
type GenerationService interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
}

// ObjectStore persists binary payloads and returns a durable URL.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// Position is a board coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoardService lays out items on a shared visual board.
type BoardService interface {
	UploadImage(ctx context.Context, boardID, url string, pos Position, label string, width float64) error
	CreateTextLabel(ctx context.Context, boardID, text string, pos Position, width float64) error
	CreateBoard(ctx context.Context, name string) (string, error)
	GetBoard(ctx context.Context, id string) (string, error)
}
