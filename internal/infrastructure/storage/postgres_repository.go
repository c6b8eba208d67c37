package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"DocForge/internal/domain"
	"DocForge/internal/ports"
)

// PostgresRepository persists aggregate reports for history listings.
// A nil database turns every operation into a no-op so the analysis
// surface works without configured storage.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReportRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveReport upserts the report snapshot keyed by text hash.
func (r *PostgresRepository) SaveReport(ctx context.Context, report domain.StoredReport) error {
	if r.db == nil {
		return nil
	}

	payload, err := json.Marshal(report.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query, args, err := r.builder.
		Insert("analysis_reports").
		Columns("text_hash", "word_count", "report").
		Values(report.TextHash, report.WordCount, payload).
		Suffix(`ON CONFLICT (text_hash) DO UPDATE
                SET word_count = EXCLUDED.word_count,
                    report = EXCLUDED.report,
                    created_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}

	return nil
}

// RecentReports lists the newest stored reports, newest first.
func (r *PostgresRepository) RecentReports(ctx context.Context, limit int) ([]domain.StoredReport, error) {
	if r.db == nil {
		return []domain.StoredReport{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := r.builder.
		Select("text_hash", "word_count", "report", "created_at").
		From("analysis_reports").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	reports := make([]domain.StoredReport, 0, limit)
	for rows.Next() {
		var stored domain.StoredReport
		var payload []byte
		if err := rows.Scan(&stored.TextHash, &stored.WordCount, &payload, &stored.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal(payload, &stored.Report); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, stored)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return reports, nil
}
