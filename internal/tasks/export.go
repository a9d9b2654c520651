package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/services"
	"github.com/desertthunder/raccclo/internal/shared"
)

// Snapshot captures the session account's subscriptions and multireddits as a
// versioned export document.
func (e *AccountEngine) Snapshot(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service) (*models.AccountExport, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	if err := svc.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("account login failed: %w", err)
	}

	account, err := svc.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify account: %w", err)
	}

	e.sendProgress(progress, exportAccountUpdate(account))

	subs, err := e.ListSubscriptions(ctx, svc, progress)
	if err != nil {
		return nil, err
	}
	multis, err := e.ListMultireddits(ctx, svc, progress)
	if err != nil {
		return nil, err
	}

	return &models.AccountExport{
		Version:      models.ExportVersion,
		Account:      account,
		ExportedAt:   time.Now().UTC(),
		Subreddits:   subs,
		Multireddits: multis,
	}, nil
}

// WriteSnapshot exports the account snapshot as pretty-printed JSON at path.
// An empty path defaults to {account}_export_{epoch}.json in the working
// directory. Returns the path actually written.
func (e *AccountEngine) WriteSnapshot(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service, path string) (string, *models.AccountExport, error) {
	export, err := e.Snapshot(ctx, progress, svc)
	if err != nil {
		return "", nil, err
	}

	if path == "" {
		path = fmt.Sprintf("%s_export_%d.json", export.Account, time.Now().Unix())
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write export: %w", err)
	}

	e.sendProgress(progress, exportWrittenUpdate(path, len(export.Subreddits), len(export.Multireddits)))
	return path, export, nil
}
