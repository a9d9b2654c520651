package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/shared"
)

// OutcomeRepository implements [models.Repository] for per-item [models.RunOutcome] persistence.
type OutcomeRepository struct {
	db *sql.DB
}

// NewOutcomeRepository creates a new [OutcomeRepository] with the given database connection
func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Create inserts a new outcome into the database with generated ID and sequence
func (r *OutcomeRepository) Create(outcome *models.RunOutcome) error {
	sequence, err := NextSequence(r.db, "run_outcomes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	outcome.SetID(id)

	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var detail any
	if outcome.Detail() != "" {
		detail = outcome.Detail()
	}

	query := `
		INSERT INTO run_outcomes (id, sequence, run_id, item, kind, status, detail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, outcome.RunID(), outcome.Item(), string(outcome.Kind()), string(outcome.Status()), detail, outcome.CreatedAt(), outcome.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	return nil
}

// Get retrieves an outcome by ID, excluding soft-deleted outcomes
func (r *OutcomeRepository) Get(id string) (*models.RunOutcome, error) {
	query := `
		SELECT id, sequence, run_id, item, kind, status, detail, created_at, updated_at, deleted_at
		FROM run_outcomes
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing outcome's status and detail
func (r *OutcomeRepository) Update(outcome *models.RunOutcome) error {
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	outcome.SetUpdatedAt(now)

	var detail any
	if outcome.Detail() != "" {
		detail = outcome.Detail()
	}

	query := `
		UPDATE run_outcomes
		SET status = ?, detail = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(outcome.Status()), detail, now, outcome.ID())
	if err != nil {
		return fmt.Errorf("failed to update outcome: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outcome not found or already deleted: %s", outcome.ID())
	}

	return nil
}

// Delete soft-deletes an outcome by ID
func (r *OutcomeRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE run_outcomes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete outcome: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("outcome not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all outcomes matching the given criteria, excluding soft-deleted outcomes
func (r *OutcomeRepository) List(criteria map[string]any) ([]*models.RunOutcome, error) {
	query := `
		SELECT id, sequence, run_id, item, kind, status, detail, created_at, updated_at, deleted_at
		FROM run_outcomes
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.RunOutcome
	for rows.Next() {
		outcome, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

// scanOne scans a single [sql.Row] into a [models.RunOutcome]
func (r *OutcomeRepository) scanOne(row *sql.Row) (*models.RunOutcome, error) {
	var (
		id        string
		sequence  int
		runID     string
		item      string
		kind      string
		status    string
		detail    sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &item, &kind, &status, &detail, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outcome not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan outcome: %w", err)
	}

	outcome := models.NewRunOutcome(sequence, runID, models.Outcome{
		Item:   item,
		Kind:   models.ItemKind(kind),
		Status: models.OutcomeStatus(status),
		Detail: detail.String,
	})
	outcome.SetID(id)
	outcome.SetCreatedAt(createdAt)
	outcome.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		outcome.SetDeletedAt(&deletedAt.Time)
	}

	return outcome, nil
}

// scanRow scans a row from [sql.Rows] into a [models.RunOutcome]
func (r *OutcomeRepository) scanRow(rows *sql.Rows) (*models.RunOutcome, error) {
	var (
		id        string
		sequence  int
		runID     string
		item      string
		kind      string
		status    string
		detail    sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &runID, &item, &kind, &status, &detail, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan outcome: %w", err)
	}

	outcome := models.NewRunOutcome(sequence, runID, models.Outcome{
		Item:   item,
		Kind:   models.ItemKind(kind),
		Status: models.OutcomeStatus(status),
		Detail: detail.String,
	})
	outcome.SetID(id)
	outcome.SetCreatedAt(createdAt)
	outcome.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		outcome.SetDeletedAt(&deletedAt.Time)
	}

	return outcome, nil
}
