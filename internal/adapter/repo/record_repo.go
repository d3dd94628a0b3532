package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/sqlinline"
)

// RecordRepositoryPG implements domain.RecordStore on PostgreSQL.
type RecordRepositoryPG struct {
	sql          infra.SQLExecutor
	promptFields map[string]struct{}
}

// NewRecordRepository creates a record store. promptFields is the allow-list
// of columns a run may read its prompt from.
func NewRecordRepository(sql infra.SQLExecutor, promptFields []string) *RecordRepositoryPG {
	allowed := make(map[string]struct{}, len(promptFields))
	for _, field := range promptFields {
		if field = strings.TrimSpace(field); field != "" {
			allowed[field] = struct{}{}
		}
	}
	return &RecordRepositoryPG{sql: sql, promptFields: allowed}
}

// Query returns eligible records ordered by position.
func (r *RecordRepositoryPG) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	field := strings.TrimSpace(filter.PromptField)
	if _, ok := r.promptFields[field]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPromptField, filter.PromptField)
	}
	query := fmt.Sprintf(sqlinline.QListEligibleRecordsTemplate, pq.QuoteIdentifier(field))

	ids := filter.RecordIDs
	if ids == nil {
		ids = []string{}
	}
	rows, err := r.sql.Query(ctx, query, ids, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var (
			rec  domain.Record
			urls []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Position,
			&rec.Prompt,
			&rec.ReferenceImageURL,
			&rec.StyleID,
			&rec.GenerationStatus,
			&urls,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if rec.GeneratedURLs, err = decodeURLs(urls); err != nil {
			return nil, fmt.Errorf("decode generated_urls for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Patch writes the terminal generation status and URLs of a record.
func (r *RecordRepositoryPG) Patch(ctx context.Context, recordID string, patch domain.RecordPatch) (*domain.Record, error) {
	urls := patch.GeneratedURLs
	if urls == nil {
		urls = []string{}
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QPatchRecordGeneration, recordID, string(patch.GenerationStatus), raw)

	var (
		rec     domain.Record
		urlsRaw []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Position,
		&rec.ReferenceImageURL,
		&rec.StyleID,
		&rec.GenerationStatus,
		&urlsRaw,
		&rec.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("patch record %s: %w", recordID, err)
	}
	if rec.GeneratedURLs, err = decodeURLs(urlsRaw); err != nil {
		return nil, err
	}
	return &rec, nil
}

func decodeURLs(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

var _ domain.RecordStore = (*RecordRepositoryPG)(nil)
