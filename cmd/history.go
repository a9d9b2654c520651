package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/repositories"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints past clone runs from the local archive.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		return r.writePlain("No archived runs.\n")
	}

	for _, run := range runs {
		marker := ""
		if run.DryRun() {
			marker = " (dry run)"
		}
		r.writePlain("#%d %s  u/%s → u/%s  %s%s\n",
			run.Sequence(),
			run.StartedAt().Format(time.DateTime),
			run.SourceAccount(), run.DestAccount(),
			run.Status(), marker,
		)
		r.writePlain("    id: %s\n", run.ID())
	}

	return nil
}

// HistoryShow prints one archived run and its per-item outcomes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.StringArg("id")
	if runID == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repositories.NewRunRepository(db).Get(runID)
	if err != nil {
		return err
	}

	outcomes, err := repositories.NewOutcomeRepository(db).List(map[string]any{"run_id": runID})
	if err != nil {
		return fmt.Errorf("failed to list outcomes: %w", err)
	}

	title := fmt.Sprintf("Run #%d: u/%s → u/%s", run.Sequence(), run.SourceAccount(), run.DestAccount())
	r.writePlainHeader(title)
	r.writePlain("Status: %s\n", run.Status())
	r.writePlain("Started: %s\n", run.StartedAt().Format(time.DateTime))
	if t := run.FinishedAt(); t != nil {
		r.writePlain("Finished: %s\n", t.Format(time.DateTime))
	}
	if run.DryRun() {
		r.writePlain("Dry run: no writes were issued\n")
	}

	if len(outcomes) == 0 {
		r.writePlainln("No outcomes recorded.")
		return nil
	}

	r.writePlain("\n")
	for _, record := range outcomes {
		outcome := record.Outcome()

		label := outcome.Item
		if outcome.Kind == models.KindSubreddit {
			label = "r/" + outcome.Item
		}

		switch outcome.Status {
		case models.StatusCreated:
			r.writePlain("  ✓ %s\n", label)
		case models.StatusAlreadyExists:
			r.writePlain("  • %s (already present)\n", label)
		case models.StatusFailed:
			r.writePlain("  ✗ %s: %s\n", label, outcome.Detail)
		}
	}

	return nil
}

// historyCommand inspects the local run archive.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past clone runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List archived runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by run status (running, completed, failed)",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one run and its per-item outcomes",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
