package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
)

// Runner executes one batch run.
type Runner interface {
	Run(ctx context.Context, req orchestrator.RunRequest, events orchestrator.EventSink) (*orchestrator.Report, error)
}

type App struct {
	Runner   Runner
	Logger   infra.Logger
	validate *validator.Validate
}

func NewApp(runner Runner, logger *infra.Logger) *App {
	return &App{Runner: runner, Logger: infra.LoggerOrNop(logger), validate: validator.New()}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: kind, Message: message})
}
