package models

import (
	"fmt"
	"time"
)

var (
	_ Model = (*CloneRun)(nil)
	_ Model = (*RunOutcome)(nil)
)

// Run status values persisted with each clone run.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// CloneRun is the persistent record of one clone invocation.
type CloneRun struct {
	id            string
	sequence      int
	sourceAccount string
	destAccount   string
	status        string
	dryRun        bool
	startedAt     time.Time
	finishedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewCloneRun creates a running CloneRun for the given account pair.
func NewCloneRun(sequence int, sourceAccount, destAccount string) *CloneRun {
	now := time.Now()
	return &CloneRun{
		sequence:      sequence,
		sourceAccount: sourceAccount,
		destAccount:   destAccount,
		status:        RunStatusRunning,
		startedAt:     now,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (r *CloneRun) ID() string { return r.id }

func (r *CloneRun) Sequence() int { return r.sequence }

func (r *CloneRun) SourceAccount() string { return r.sourceAccount }

func (r *CloneRun) DestAccount() string { return r.destAccount }

func (r *CloneRun) Status() string { return r.status }

func (r *CloneRun) DryRun() bool { return r.dryRun }

func (r *CloneRun) StartedAt() time.Time { return r.startedAt }

func (r *CloneRun) FinishedAt() *time.Time { return r.finishedAt }

func (r *CloneRun) CreatedAt() time.Time { return r.createdAt }

func (r *CloneRun) UpdatedAt() time.Time { return r.updatedAt }

func (r *CloneRun) DeletedAt() *time.Time { return r.deletedAt }

func (r *CloneRun) SetID(id string) { r.id = id }

func (r *CloneRun) SetDryRun(dryRun bool) { r.dryRun = dryRun }

func (r *CloneRun) SetStartedAt(t time.Time) { r.startedAt = t }

func (r *CloneRun) SetFinishedAt(t *time.Time) { r.finishedAt = t }

func (r *CloneRun) SetCreatedAt(t time.Time) { r.createdAt = t }

func (r *CloneRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }

func (r *CloneRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

func (r *CloneRun) SetStatus(status string) { r.status = status }

// Finish marks the run as done with the given terminal status.
func (r *CloneRun) Finish(status string) {
	now := time.Now()
	r.status = status
	r.finishedAt = &now
	r.updatedAt = now
}

// Validate checks that the run names both accounts and carries a known status.
func (r *CloneRun) Validate() error {
	if r.sourceAccount == "" {
		return fmt.Errorf("source account is required")
	}
	if r.destAccount == "" {
		return fmt.Errorf("destination account is required")
	}
	switch r.status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return fmt.Errorf("unknown run status: %s", r.status)
	}
	return nil
}

// RunOutcome is the persisted form of a single [Outcome] within a clone run.
type RunOutcome struct {
	id        string
	sequence  int
	runID     string
	item      string
	kind      ItemKind
	status    OutcomeStatus
	detail    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewRunOutcome wraps an [Outcome] for persistence under the given run.
func NewRunOutcome(sequence int, runID string, outcome Outcome) *RunOutcome {
	now := time.Now()
	return &RunOutcome{
		sequence:  sequence,
		runID:     runID,
		item:      outcome.Item,
		kind:      outcome.Kind,
		status:    outcome.Status,
		detail:    outcome.Detail,
		createdAt: now,
		updatedAt: now,
	}
}

func (o *RunOutcome) ID() string { return o.id }

func (o *RunOutcome) Sequence() int { return o.sequence }

func (o *RunOutcome) RunID() string { return o.runID }

func (o *RunOutcome) Item() string { return o.item }

func (o *RunOutcome) Kind() ItemKind { return o.kind }

func (o *RunOutcome) Status() OutcomeStatus { return o.status }

func (o *RunOutcome) Detail() string { return o.detail }

func (o *RunOutcome) CreatedAt() time.Time { return o.createdAt }

func (o *RunOutcome) UpdatedAt() time.Time { return o.updatedAt }

func (o *RunOutcome) DeletedAt() *time.Time { return o.deletedAt }

func (o *RunOutcome) SetID(id string) { o.id = id }

func (o *RunOutcome) SetCreatedAt(t time.Time) { o.createdAt = t }

func (o *RunOutcome) SetUpdatedAt(t time.Time) { o.updatedAt = t }

func (o *RunOutcome) SetDeletedAt(t *time.Time) { o.deletedAt = t }

// Outcome converts the persisted row back into its transient form.
func (o *RunOutcome) Outcome() Outcome {
	return Outcome{Item: o.item, Kind: o.kind, Status: o.status, Detail: o.detail}
}

// Validate checks the outcome belongs to a run and carries valid enum values.
func (o *RunOutcome) Validate() error {
	if o.runID == "" {
		return fmt.Errorf("run ID is required")
	}
	return o.Outcome().Validate()
}
