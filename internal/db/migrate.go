// Package db owns the schema of the record store and the integration token
// table, applied with goose from embedded SQL files.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Commands accepted by Migrate.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

var ErrUnknownCommand = errors.New("unknown migration command")

// Migrate opens a short-lived connection to databaseURL and runs one goose
// command against the embedded migrations.
func Migrate(ctx context.Context, databaseURL, command string, logger *infra.Logger) error {
	command = strings.ToLower(strings.TrimSpace(command))
	if command == "" {
		command = CommandUp
	}
	switch command {
	case CommandUp, CommandDown, CommandStatus:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("db: database url is empty")
	}

	log := infra.LoggerOrNop(logger).With().Str("component", "migrations").Str("command", command).Logger()

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("db: open: %w", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db: ping: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("db: dialect: %w", err)
	}

	start := time.Now()
	switch command {
	case CommandUp:
		err = goose.UpContext(ctx, conn, migrationsDir)
	case CommandDown:
		err = goose.DownContext(ctx, conn, migrationsDir)
	case CommandStatus:
		err = goose.StatusContext(ctx, conn, migrationsDir)
	}
	if err != nil {
		log.Error().Err(err).Msg("migration failed")
		return fmt.Errorf("db: goose %s: %w", command, err)
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("migration finished")
	return nil
}

// gooseLogger routes goose output through zerolog. Fatalf logs at error level
// and does not exit.
type gooseLogger struct {
	log infra.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
