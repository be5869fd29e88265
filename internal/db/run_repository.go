package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tOgg1/ralph/internal/models"
)

// ErrRunNotFound is returned when a run record does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles run history persistence.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create adds a finished run to the history.
func (r *RunRepository) Create(ctx context.Context, record *models.RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_history (
			id, project_path, project_file, status, iterations,
			tasks_total, tasks_completed, input_tokens, output_tokens,
			cost_usd, tool_calls, model, error_message, started_at, ended_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.ProjectPath,
		record.ProjectFile,
		string(record.Status),
		record.Iterations,
		record.TasksTotal,
		record.TasksCompleted,
		record.InputTokens,
		record.OutputTokens,
		record.CostUSD,
		record.ToolCalls,
		nullableString(record.Model),
		nullableString(record.ErrorMessage),
		record.StartedAt.Format(time.RFC3339),
		timePtrString(record.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// Get retrieves a run record by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, selectRunColumns+" WHERE id = ?", id)
	return scanRun(row)
}

// ListByProject retrieves run history for a project, newest first.
// limit <= 0 means no limit.
func (r *RunRepository) ListByProject(ctx context.Context, projectPath string, limit int) ([]*models.RunRecord, error) {
	query := selectRunColumns + " WHERE project_path = ? ORDER BY started_at DESC"
	args := []any{projectPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryRuns(ctx, query, args...)
}

// List retrieves all run history, newest first. limit <= 0 means no
// limit.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	query := selectRunColumns + " ORDER BY started_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryRuns(ctx, query, args...)
}

// Latest retrieves the most recent run for a project.
func (r *RunRepository) Latest(ctx context.Context, projectPath string) (*models.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		selectRunColumns+" WHERE project_path = ? ORDER BY started_at DESC LIMIT 1", projectPath)
	return scanRun(row)
}

// Delete removes a run record.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM run_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

const selectRunColumns = `
	SELECT id, project_path, project_file, status, iterations,
		tasks_total, tasks_completed, input_tokens, output_tokens,
		cost_usd, tool_calls, model, error_message, started_at, ended_at
	FROM run_history`

func (r *RunRepository) queryRuns(ctx context.Context, query string, args ...any) ([]*models.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.RunRecord, 0)
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.RunRecord, error) {
	var (
		record       models.RunRecord
		status       string
		model        sql.NullString
		errorMessage sql.NullString
		startedAt    string
		endedAt      sql.NullString
	)

	err := row.Scan(
		&record.ID,
		&record.ProjectPath,
		&record.ProjectFile,
		&status,
		&record.Iterations,
		&record.TasksTotal,
		&record.TasksCompleted,
		&record.InputTokens,
		&record.OutputTokens,
		&record.CostUSD,
		&record.ToolCalls,
		&model,
		&errorMessage,
		&startedAt,
		&endedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run record: %w", err)
	}

	record.Status = models.RalphStatus(status)
	record.Model = model.String
	record.ErrorMessage = errorMessage.String

	record.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if endedAt.Valid {
		ended, err := time.Parse(time.RFC3339, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		record.EndedAt = &ended
	}

	return &record, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.Format(time.RFC3339)
	return &value
}
