package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sqlinline"
)

const (
	ProviderGeneration = "generation"
	ProviderBoard      = "board"
)

// Store reads and writes provider tokens kept in the integration_tokens table.
// It backs up the environment: a token configured in the environment wins.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// Resolve returns envValue when set, otherwise the stored token.
func (s *Store) Resolve(ctx context.Context, provider, envValue string) (string, error) {
	if v := strings.TrimSpace(envValue); v != "" {
		return v, nil
	}
	if s == nil || s.sql == nil {
		return "", nil
	}
	return s.Token(ctx, provider)
}

// SetToken stores token for provider, replacing any previous value.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credentials: token is required")
	}
	switch provider {
	case ProviderGeneration, ProviderBoard:
	default:
		return fmt.Errorf("credentials: unknown provider %q", provider)
	}
	raw, err := json.Marshal(map[string]any{})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
