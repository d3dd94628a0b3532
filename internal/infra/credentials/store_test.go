package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	token   string
	err     error
	queried bool
	exec    struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queried = true
	return stubRow{token: s.token, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestToken(t *testing.T) {
	store := NewStore(&stubExecutor{token: " abc123 "})
	key, err := store.Token(context.Background(), ProviderGeneration)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
}

func TestToken_NoRows(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	key, err := store.Token(context.Background(), ProviderBoard)
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestResolvePrefersEnvironment(t *testing.T) {
	exec := &stubExecutor{token: "from-db"}
	store := NewStore(exec)
	key, err := store.Resolve(context.Background(), ProviderBoard, " from-env ")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if key != "from-env" || exec.queried {
		t.Fatalf("expected env token without a query, got %q (queried=%v)", key, exec.queried)
	}

	key, err = store.Resolve(context.Background(), ProviderBoard, "")
	if err != nil || key != "from-db" {
		t.Fatalf("expected stored token, got %q, %v", key, err)
	}
}

func TestSetToken(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetToken(context.Background(), ProviderGeneration, "secret"); err != nil {
		t.Fatalf("SetToken error: %v", err)
	}
	if len(exec.exec.args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(exec.exec.args))
	}
	if v, ok := exec.exec.args[1].(string); !ok || v != "secret" {
		t.Fatalf("expected secret argument, got %T %v", exec.exec.args[1], exec.exec.args[1])
	}
}

func TestSetTokenRejectsInvalid(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SetToken(context.Background(), ProviderBoard, " "); err == nil {
		t.Fatal("expected error for empty token")
	}
	if err := store.SetToken(context.Background(), "gemini", "x"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
