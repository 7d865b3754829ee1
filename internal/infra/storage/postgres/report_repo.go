package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/noncegap/internal/core/domain"
	"github.com/vietddude/noncegap/internal/infra/storage"
)

// ReportRepo implements storage.ReportRepository using PostgreSQL.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new PostgreSQL report repository.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

type reportRow struct {
	ID             string `db:"id"`
	ChainID        string `db:"chain_id"`
	Address        string `db:"address"`
	ObservedAt     int64  `db:"observed_at"`
	ConfirmedNonce int64  `db:"confirmed_nonce"`
	Gaps           []byte `db:"gaps"`
	Summary        []byte `db:"summary"`
}

// Save stores one analysis record. Gaps and summary go into JSONB columns;
// the report shape is the domain's, not the schema's.
func (r *ReportRepo) Save(ctx context.Context, record *domain.Record) error {
	gaps, err := json.Marshal(record.Report.Gaps)
	if err != nil {
		return fmt.Errorf("failed to marshal gaps: %w", err)
	}
	summary, err := json.Marshal(record.Report.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO reports (
			id, chain_id, address, observed_at, confirmed_nonce, gaps, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.ChainID, record.Address,
		record.ObservedAt.Unix(), int64(record.Report.ConfirmedNonce),
		gaps, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its ID.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	var row reportRow
	query := `
		SELECT id, chain_id, address, observed_at, confirmed_nonce, gaps, summary
		FROM reports WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rowToRecord(&row)
}

// ListRecent retrieves the most recent records for an address, newest first.
func (r *ReportRepo) ListRecent(ctx context.Context, address string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []reportRow
	query := `
		SELECT id, chain_id, address, observed_at, confirmed_nonce, gaps, summary
		FROM reports
		WHERE address = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &rows, query, address, limit); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	records := make([]*domain.Record, 0, len(rows))
	for i := range rows {
		rec, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteOlderThan removes records observed before the cutoff.
func (r *ReportRepo) DeleteOlderThan(ctx context.Context, cutoffUnix int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE observed_at < $1`, cutoffUnix)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	return result.RowsAffected()
}

func rowToRecord(row *reportRow) (*domain.Record, error) {
	record := &domain.Record{
		ID:         row.ID,
		ChainID:    row.ChainID,
		Address:    row.Address,
		ObservedAt: time.Unix(row.ObservedAt, 0).UTC(),
		Report: domain.GapReport{
			Address:        row.Address,
			ConfirmedNonce: uint64(row.ConfirmedNonce),
		},
	}
	if len(row.Gaps) > 0 {
		if err := json.Unmarshal(row.Gaps, &record.Report.Gaps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal gaps: %w", err)
		}
	}
	if len(row.Summary) > 0 {
		if err := json.Unmarshal(row.Summary, &record.Report.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
	}
	return record, nil
}
