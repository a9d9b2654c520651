package repositories

import (
	"fmt"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/tasks"
)

// RunArchive implements tasks.RunArchiver using RunRepository and OutcomeRepository.
//
// Persists each clone run and its per-item outcomes so past runs can be
// inspected from the history command.
type RunArchive struct {
	runs     *RunRepository
	outcomes *OutcomeRepository
}

// NewRunArchive creates a new RunArchive with the given repositories
func NewRunArchive(runs *RunRepository, outcomes *OutcomeRepository) *RunArchive {
	return &RunArchive{runs: runs, outcomes: outcomes}
}

// ArchiveRun persists the run and every recorded outcome.
// Aborted runs are stored with a failed status, completed runs keep their
// per-item failures as outcome rows.
func (a *RunArchive) ArchiveRun(result *tasks.CloneRunResult) error {
	run := models.NewCloneRun(0, result.SourceAccount, result.DestAccount)
	run.SetDryRun(result.DryRun)
	run.SetStartedAt(result.StartedAt)

	status := models.RunStatusCompleted
	if result.Aborted {
		status = models.RunStatusFailed
	}
	run.Finish(status)
	if !result.FinishedAt.IsZero() {
		finished := result.FinishedAt
		run.SetFinishedAt(&finished)
	}

	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}

	for _, outcome := range result.Outcomes() {
		record := models.NewRunOutcome(0, run.ID(), outcome)
		if err := a.outcomes.Create(record); err != nil {
			return fmt.Errorf("failed to archive outcome for %s: %w", outcome.Item, err)
		}
	}

	return nil
}
