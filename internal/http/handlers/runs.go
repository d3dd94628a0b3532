package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
)

const maxRunRequestBytes = 1 << 20

// CreateRun executes a run and responds with its report once every item has
// resolved.
func (a *App) CreateRun(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRun(w, r)
	if !ok {
		return
	}
	report, err := a.Runner.Run(r.Context(), req, nil)
	if err != nil {
		a.runError(w, r, report, err)
		return
	}
	a.json(w, http.StatusOK, report)
}

// StreamRun executes a run and streams its events as Server-Sent Events. The
// stream ends with a complete event, or an error event when the run could not
// start.
func (a *App) StreamRun(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRun(w, r)
	if !ok {
		return
	}
	stream, err := newSSEWriter(w)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	// events are emitted from the run goroutine, which is this one
	sink := orchestrator.EventSinkFunc(func(e orchestrator.Event) {
		if err := stream.event(string(e.Type), e); err != nil {
			a.Logger.Debug().Err(err).Str("run_id", e.RunID).Msg("sse write failed")
		}
	})

	report, err := a.Runner.Run(r.Context(), req, sink)
	if report == nil {
		msg := "run failed"
		if err != nil {
			msg = err.Error()
		}
		_ = stream.event("error", map[string]string{"error": msg})
		return
	}
	status := "completed"
	if report.Cancelled {
		status = "cancelled"
	}
	_ = stream.event("complete", map[string]any{
		"run_id":  report.RunID,
		"status":  status,
		"success": report.SuccessCount,
		"errors":  report.ErrorCount,
	})
}

func (a *App) decodeRun(w http.ResponseWriter, r *http.Request) (orchestrator.RunRequest, bool) {
	var req orchestrator.RunRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRunRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return req, false
	}
	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			a.json(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: "invalid run request", Details: fields})
			return req, false
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return req, false
	}
	return req, true
}

func (a *App) runError(w http.ResponseWriter, r *http.Request, report *orchestrator.Report, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// the client is usually gone; the partial report is still logged
		a.Logger.Warn().Err(err).Msg("run interrupted")
		if report != nil {
			a.json(w, http.StatusServiceUnavailable, report)
			return
		}
		a.error(w, http.StatusServiceUnavailable, "cancelled", "run interrupted")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("run failed")
		a.error(w, http.StatusBadGateway, "run_failed", "failed to load records")
	}
}
