// package tasks implements account cloning operations between Reddit accounts.
//
// The core abstraction is CloneEngine, which orchestrates subscription and multireddit copies.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/services"
	"github.com/desertthunder/raccclo/internal/shared"
)

// CloneRunResult contains all data from a full clone operation.
type CloneRunResult struct {
	SourceAccount string           `json:"source_account"` // Authenticated source username
	DestAccount   string           `json:"dest_account"`   // Authenticated destination username
	DryRun        bool             `json:"dry_run"`        // Whether writes were skipped
	Aborted       bool             `json:"aborted"`        // Whether a fatal error cut the run short
	Subreddits    []models.Outcome `json:"subreddits"`     // Per-subreddit outcomes in apply order
	Multireddits  []models.Outcome `json:"multireddits"`   // Per-multireddit outcomes in apply order
	Summary       RunSummary       `json:"summary"`        // Aggregated counts
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
}

// CloneEngine defines operations for copying account data between Reddit accounts.
type CloneEngine interface {
	// Run performs a full source → destination clone by enumerating the source
	// account, skipping items the destination already has, and applying the rest.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*CloneRunResult, error)

	// Snapshot captures one account's subscriptions and multireddits as a
	// versioned export suitable for backup.
	Snapshot(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service) (*models.AccountExport, error)

	// WriteSnapshot exports an account snapshot to a JSON file at path,
	// generating a timestamped filename when path is empty.
	WriteSnapshot(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service, path string) (string, *models.AccountExport, error)
}

// RunArchiver persists completed runs and their outcomes.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type RunArchiver interface {
	ArchiveRun(result *CloneRunResult) error
}

// AccountEngine implements CloneEngine for Reddit account operations.
// Contains dependencies on the two account sessions and an optional archiver.
type AccountEngine struct {
	source   services.Service
	dest     services.Service
	archiver RunArchiver
	sleep    func(time.Duration)
	dryRun   bool
}

// EngineOpts configures an AccountEngine.
type EngineOpts struct {
	DryRun   bool        // Report planned actions without writing to the destination
	Archiver RunArchiver // Optional run persistence
}

// NewAccountEngine creates a new AccountEngine over the provided account sessions.
func NewAccountEngine(source, dest services.Service, opts EngineOpts) *AccountEngine {
	return &AccountEngine{
		source:   source,
		dest:     dest,
		archiver: opts.Archiver,
		sleep:    time.Sleep,
		dryRun:   opts.DryRun,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *AccountEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full source → destination account clone.
//
// Subscriptions are applied before multireddits so that every subreddit a
// multireddit references has already been attempted. Per-item failures are
// recorded and the run continues; authentication failures abort it.
func (e *AccountEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*CloneRunResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source session not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination session not initialized", shared.ErrServiceUnavailable)
	}

	result := &CloneRunResult{
		DryRun:    e.dryRun,
		StartedAt: time.Now(),
	}

	e.sendProgress(progress, authenticateUpdate(1, 2, e.source.Name()))
	if err := e.source.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("source account login failed: %w", err)
	}

	e.sendProgress(progress, authenticateUpdate(2, 2, e.dest.Name()))
	if err := e.dest.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("destination account login failed: %w", err)
	}

	srcName, err := e.source.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify source account: %w", err)
	}
	destName, err := e.dest.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify destination account: %w", err)
	}

	result.SourceAccount = srcName
	result.DestAccount = destName

	if shared.NormalizeName(srcName) == shared.NormalizeName(destName) {
		return nil, fmt.Errorf("%w: source and destination are the same account (%s)", shared.ErrInvalidInput, srcName)
	}

	wantedSubs, err := e.ListSubscriptions(ctx, e.source, progress)
	if err != nil {
		return nil, err
	}
	wantedMultis, err := e.ListMultireddits(ctx, e.source, progress)
	if err != nil {
		return nil, err
	}

	destSubs, err := e.ListSubscriptions(ctx, e.dest, progress)
	if err != nil {
		return nil, err
	}
	destMultis, err := e.ListMultireddits(ctx, e.dest, progress)
	if err != nil {
		return nil, err
	}

	existingSubs := make(map[string]bool, len(destSubs))
	for _, sub := range destSubs {
		existingSubs[shared.NormalizeName(sub.Name)] = true
	}

	// Destination collisions are matched on slug, the key the create endpoint
	// uses, so differently cased or punctuated names that collapse to the same
	// slug still count as existing.
	existingMultis := make(map[string]bool, len(destMultis))
	for _, multi := range destMultis {
		existingMultis[shared.NormalizeName(multi.Slug())] = true
	}

	subOutcomes, runErr := e.applySubreddits(ctx, progress, wantedSubs, existingSubs)
	result.Subreddits = subOutcomes

	if runErr == nil {
		result.Multireddits, runErr = e.applyMultireddits(ctx, progress, wantedMultis, existingMultis)
	}

	result.Aborted = runErr != nil
	result.Summary = BuildSummary(result.Subreddits, result.Multireddits)
	result.FinishedAt = time.Now()

	e.archive(progress, result)

	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

// ListSubscriptions fetches every subscribed subreddit for the session's
// account, following listing cursors until the feed is exhausted. Names are
// deduplicated case-insensitively, keeping the first spelling seen.
func (e *AccountEngine) ListSubscriptions(ctx context.Context, svc services.Service, progress chan<- ProgressUpdate) ([]models.Subreddit, error) {
	seen := make(map[string]bool)
	subs := []models.Subreddit{}

	after := ""
	page := 0
	for {
		page++
		e.sendProgress(progress, fetchSubscriptionsUpdate(page, svc.Name(), len(subs)))

		listing, err := svc.Subscriptions(ctx, after)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions for %s: %w", svc.Name(), err)
		}

		for _, sub := range listing.Subreddits {
			key := shared.NormalizeName(sub.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			subs = append(subs, sub)
		}

		// A repeated cursor would page forever.
		if listing.After == "" || listing.After == after {
			break
		}
		after = listing.After
	}

	return subs, nil
}

// ListMultireddits fetches every multireddit owned by the session's account.
func (e *AccountEngine) ListMultireddits(ctx context.Context, svc services.Service, progress chan<- ProgressUpdate) ([]models.Multireddit, error) {
	e.sendProgress(progress, fetchMultiredditsUpdate(svc.Name()))

	multis, err := svc.Multireddits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list multireddits for %s: %w", svc.Name(), err)
	}
	return multis, nil
}

// applySubreddits subscribes the destination account to each wanted subreddit,
// skipping those it already has. Returns outcomes in apply order; a non-nil
// error means the run was aborted after the returned outcomes.
func (e *AccountEngine) applySubreddits(ctx context.Context, progress chan<- ProgressUpdate, wanted []models.Subreddit, existing map[string]bool) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(wanted))
	total := len(wanted)

	for i, sub := range wanted {
		e.sendProgress(progress, subscribeUpdate(i+1, total, sub.Name))

		outcome := models.Outcome{Item: sub.Name, Kind: models.KindSubreddit}

		switch {
		case existing[shared.NormalizeName(sub.Name)]:
			outcome.Status = models.StatusAlreadyExists
		case e.dryRun:
			outcome.Status = models.StatusCreated
		default:
			err := e.retryRateLimited(func() error {
				return e.dest.Subscribe(ctx, sub.Name)
			})
			switch {
			case err == nil:
				outcome.Status = models.StatusCreated
			case errors.Is(err, shared.ErrAuthFailed):
				return outcomes, err
			default:
				outcome.Status = models.StatusFailed
				outcome.Detail = err.Error()
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// applyMultireddits recreates each wanted multireddit on the destination
// account. Existing multireddits are never modified, they are reported as
// already present and left alone.
func (e *AccountEngine) applyMultireddits(ctx context.Context, progress chan<- ProgressUpdate, wanted []models.Multireddit, existing map[string]bool) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(wanted))
	total := len(wanted)

	for i, multi := range wanted {
		e.sendProgress(progress, createMultiUpdate(i+1, total, multi.Name))

		outcome := models.Outcome{Item: multi.Name, Kind: models.KindMultireddit}

		switch {
		case existing[shared.NormalizeName(multi.Slug())]:
			outcome.Status = models.StatusAlreadyExists
		case e.dryRun:
			outcome.Status = models.StatusCreated
		default:
			err := e.retryRateLimited(func() error {
				return e.dest.CreateMultireddit(ctx, multi)
			})
			switch {
			case err == nil:
				outcome.Status = models.StatusCreated
			case errors.Is(err, shared.ErrAlreadyExists):
				outcome.Status = models.StatusAlreadyExists
			case errors.Is(err, shared.ErrAuthFailed):
				return outcomes, err
			default:
				outcome.Status = models.StatusFailed
				outcome.Detail = err.Error()
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// retryRateLimited runs fn, retrying once after the server's requested delay
// when the first attempt is rate limited.
func (e *AccountEngine) retryRateLimited(fn func() error) error {
	err := fn()

	var rle *shared.RateLimitError
	if !errors.As(err, &rle) {
		return err
	}

	e.sleep(rle.RetryAfter)
	return fn()
}

// archive persists the run when an archiver is configured. Persistence
// problems never abort a clone, they surface as a progress message only.
func (e *AccountEngine) archive(progress chan<- ProgressUpdate, result *CloneRunResult) {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.ArchiveRun(result); err != nil {
		e.sendProgress(progress, archiveFailedUpdate(err))
	}
}
