package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/shared"
)

// RunRepository implements [models.Repository] for clone run [models.CloneRun] persistence.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.CloneRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var finishedAt any
	if t := run.FinishedAt(); t != nil {
		finishedAt = *t
	}

	query := `
		INSERT INTO runs (id, sequence, source_account, dest_account, status, dry_run, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, run.SourceAccount(), run.DestAccount(), run.Status(), run.DryRun(), run.StartedAt(), finishedAt, run.CreatedAt(), run.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.CloneRun, error) {
	query := `
		SELECT id, sequence, source_account, dest_account, status, dry_run, started_at, finished_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing run's status and completion time
func (r *RunRepository) Update(run *models.CloneRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	var finishedAt any
	if t := run.FinishedAt(); t != nil {
		finishedAt = *t
	}

	query := `
		UPDATE runs
		SET status = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, run.Status(), finishedAt, now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves all runs matching the given criteria, excluding soft-deleted runs
func (r *RunRepository) List(criteria map[string]any) ([]*models.CloneRun, error) {
	query := `
		SELECT id, sequence, source_account, dest_account, status, dry_run, started_at, finished_at, created_at, updated_at, deleted_at
		FROM runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if source, ok := criteria["source_account"].(string); ok && source != "" {
		query += " AND source_account = ?"
		args = append(args, source)
	}

	if dryRun, ok := criteria["dry_run"].(bool); ok {
		query += " AND dry_run = ?"
		args = append(args, dryRun)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CloneRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single [sql.Row] into a [models.CloneRun]
func (r *RunRepository) scanOne(row *sql.Row) (*models.CloneRun, error) {
	var (
		id            string
		sequence      int
		sourceAccount string
		destAccount   string
		status        string
		dryRun        bool
		startedAt     time.Time
		finishedAt    sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &sourceAccount, &destAccount, &status,
		&dryRun, &startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewCloneRun(sequence, sourceAccount, destAccount)
	run.SetID(id)
	run.SetStatus(status)
	run.SetDryRun(dryRun)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// scanRow scans a row from [sql.Rows] into a [models.CloneRun]
func (r *RunRepository) scanRow(rows *sql.Rows) (*models.CloneRun, error) {
	var (
		id            string
		sequence      int
		sourceAccount string
		destAccount   string
		status        string
		dryRun        bool
		startedAt     time.Time
		finishedAt    sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &sourceAccount, &destAccount, &status,
		&dryRun, &startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewCloneRun(sequence, sourceAccount, destAccount)
	run.SetID(id)
	run.SetStatus(status)
	run.SetDryRun(dryRun)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
