package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// buildRunStore implements driven.BuildRunStore.
type buildRunStore struct {
	store *Store
}

var _ driven.BuildRunStore = (*buildRunStore)(nil)

// RecordRun inserts the run, or updates it when the ID already exists.
// A build records itself once when it starts and again when it ends.
func (s *buildRunStore) RecordRun(ctx context.Context, run *domain.BuildRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO build_runs (id, started_at, ended_at, success, error, record_count, snapshot_path, jurisdictions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			success = excluded.success,
			error = excluded.error,
			record_count = excluded.record_count,
			snapshot_path = excluded.snapshot_path,
			jurisdictions = excluded.jurisdictions
	`, run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		formatNullableTime(run.EndedAt),
		boolToInt(run.Success),
		nullString(run.Error),
		run.RecordCount,
		nullString(run.SnapshotPath),
		strings.Join(run.Jurisdictions, ","))
	if err != nil {
		return fmt.Errorf("recording build run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *buildRunStore) ListRuns(ctx context.Context, limit int) ([]domain.BuildRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, success, error, record_count, snapshot_path, jurisdictions
		FROM build_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying build runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.BuildRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.BuildRun
		var startedAt, jurisdictions string
		var endedAt, errMsg, snapshotPath sql.NullString
		var success int
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &success, &errMsg,
			&run.RecordCount, &snapshotPath, &jurisdictions); err != nil {
			return nil, fmt.Errorf("scanning build run: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		run.EndedAt = parseNullableTime(endedAt)
		run.Success = success == 1
		run.Error = errMsg.String
		run.SnapshotPath = snapshotPath.String
		if jurisdictions != "" {
			run.Jurisdictions = strings.Split(jurisdictions, ",")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating build runs: %w", err)
	}
	return runs, nil
}
