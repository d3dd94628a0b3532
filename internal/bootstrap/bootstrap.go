// Package bootstrap assembles the run pipeline shared by the API server and
// the batch command.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/adapter/repo"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/fetch"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra/credentials"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/providers/board"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/providers/genjob"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sink"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/storage"
)

// Components are the wired collaborators of one process.
type Components struct {
	Credentials  *credentials.Store
	Records      *repo.RecordRepositoryPG
	Storage      *storage.FileStore
	Publisher    *sink.Publisher
	Orchestrator *orchestrator.Orchestrator
}

// Service owns the database pool behind Components.
type Service struct {
	Components
	Pool *pgxpool.Pool
}

// Open connects to the database and wires the pipeline on top of it.
func Open(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Service, error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	sql := infra.NewSQLRunner(pool, infra.LoggerOrNop(logger))
	comps, err := Wire(ctx, cfg, sql, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Service{Components: *comps, Pool: pool}, nil
}

// Close releases the database pool.
func (s *Service) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

// Wire builds the pipeline over an existing SQL executor. API credentials come
// from the environment first and the integration token table second. Without
// a board token publishing stays off.
func Wire(ctx context.Context, cfg *infra.Config, sql infra.SQLExecutor, logger *infra.Logger) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	log := infra.LoggerOrNop(logger)

	creds := credentials.NewStore(sql)
	genKey, err := creds.Resolve(ctx, credentials.ProviderGeneration, cfg.GenerationAPIKey)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: generation credentials: %w", err)
	}
	boardToken, err := creds.Resolve(ctx, credentials.ProviderBoard, cfg.BoardAPIToken)
	if err != nil {
		log.Warn().Err(err).Msg("board credentials unavailable, publishing disabled")
		boardToken = ""
	}

	generator, err := genjob.NewClient(genjob.Options{
		APIKey:  genKey,
		BaseURL: cfg.GenerationBaseURL,
		Logger:  &log,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: generation client: %w", err)
	}

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: storage: %w", err)
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Logger = &log
	fetcher := fetch.NewClient(fetchOpts)

	records := repo.NewRecordRepository(sql, cfg.PromptFields)
	persister := sink.NewPersister(fetcher, store, &log)

	deps := orchestrator.Deps{
		Records:   records,
		Generator: generator,
		Fetcher:   fetcher,
		Persister: persister,
		Logger:    &log,
	}

	comps := &Components{Credentials: creds, Records: records, Storage: store}

	if boardToken != "" {
		layout, err := sink.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: layout: %w", err)
		}
		boards, err := board.NewClient(board.Options{Token: boardToken, BaseURL: cfg.BoardBaseURL, Logger: &log})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: board client: %w", err)
		}
		comps.Publisher = sink.NewPublisher(boards, layout, &log)
		deps.Publisher = comps.Publisher
	} else {
		log.Info().Msg("no board token configured, publishing disabled")
	}

	orch, err := orchestrator.New(orchestrator.ConfigFromSettings(cfg.Run), deps)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: orchestrator: %w", err)
	}
	comps.Orchestrator = orch
	return comps, nil
}
