package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/repositories"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/desertthunder/raccclo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Clone runs a full source → destination account copy.
//
// Exit status is zero whenever the run completes, even with per-item failures
// recorded in the summary. Fatal errors (auth, enumeration) propagate.
func (r *Runner) Clone(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.resolveCredentials(cmd)
	if err != nil {
		return err
	}

	source, dest, err := r.buildSessions(creds)
	if err != nil {
		return err
	}

	var archiver tasks.RunArchiver
	if !cmd.Bool("no-archive") {
		archive, db, err := r.openArchive()
		if err != nil {
			// History is a convenience, never a reason to skip the clone.
			r.logger.Warn("run archive unavailable", "error", err)
		} else {
			archiver = archive
			defer db.Close()
		}
	}

	engine := tasks.NewAccountEngine(source, dest, tasks.EngineOpts{
		DryRun:   cmd.Bool("dry-run"),
		Archiver: archiver,
	})

	r.logger.Info("starting clone", "source", source.Name(), "dest", dest.Name(), "dry_run", cmd.Bool("dry-run"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.printCloneResult(result)
	return nil
}

// printProgress renders one engine progress event for terminal display.
func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Authenticate:
		r.writePlain("🔑 %s\n", update.Message)
	case tasks.FetchSubscriptions, tasks.FetchMultireddits:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.SubscribeSubreddits, tasks.CreateMultireddits:
		if update.Step == 1 {
			r.writePlain("\n")
		}
		r.writePlain("   %s\n", update.Message)
	case tasks.Archive:
		r.writePlain("⚠ %s\n", update.Message)
	case tasks.Export:
		r.writePlain("📦 %s\n", update.Message)
	}
}

// printCloneResult renders the end-of-run summary: counts per kind plus the
// specific items that failed, enough for manual follow-up.
func (r *Runner) printCloneResult(result *tasks.CloneRunResult) {
	title := "Clone Complete!"
	if result.DryRun {
		title = "Dry Run Complete! (no writes issued)"
	}

	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Source: u/%s\n", result.SourceAccount)
	r.writePlain("Destination: u/%s\n\n", result.DestAccount)

	s := result.Summary
	r.writePlain("Subreddits: %d copied, %d already present, %d failed (of %d)\n",
		s.Subreddits.Created, s.Subreddits.AlreadyExists, s.Subreddits.Failed, s.Subreddits.Total)
	r.writePlain("Multireddits: %d copied, %d already present, %d failed (of %d)\n",
		s.Multireddits.Created, s.Multireddits.AlreadyExists, s.Multireddits.Failed, s.Multireddits.Total)

	failed := result.Failed()
	if len(failed) > 0 {
		r.writePlainln("%d items failed:", len(failed))
		for _, outcome := range failed {
			label := outcome.Item
			if outcome.Kind == models.KindSubreddit {
				label = "r/" + outcome.Item
			}
			r.writePlain("  ✗ %s: %s\n", label, outcome.Detail)
		}
	}
}

// openDatabase opens the configured SQLite database and brings its schema up
// to date. Migrations are idempotent, so every caller can run them.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// openArchive opens the run archive over the configured database.
// The caller owns the returned handle and must close it.
func (r *Runner) openArchive() (*repositories.RunArchive, *sql.DB, error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, err
	}

	archive := repositories.NewRunArchive(
		repositories.NewRunRepository(db),
		repositories.NewOutcomeRepository(db),
	)

	return archive, db, nil
}

// cloneCommand is the core operation: copy one account's subscriptions and
// multireddits to another.
func cloneCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clone",
		Usage: "Copy subscriptions and multireddits from the source account to the destination",
		Flags: append(credentialFlags(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Enumerate and report without writing to the destination",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the full run result as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-archive",
				Usage: "Skip recording the run in the local history database",
			},
		),
		Action: r.Clone,
	}
}
