package ui

import (
	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/tasks"
)

// snapshotFetchedMsg carries the source account's subscriptions and
// multireddits after the initial fetch.
type snapshotFetchedMsg struct {
	export *models.AccountExport
	err    error
}

// progressUpdateMsg forwards one engine progress event to the Update loop.
type progressUpdateMsg tasks.ProgressUpdate

// cloneCompleteMsg signals that the clone goroutine finished.
type cloneCompleteMsg struct {
	result *tasks.CloneRunResult
	err    error
}
