package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/desertthunder/raccclo/internal/tasks"
	"github.com/desertthunder/raccclo/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI: browse the source account's
// subscriptions and multireddits, confirm, then watch the clone run.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
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
			r.logger.Warn("run archive unavailable", "error", err)
		} else {
			archiver = archive
			defer db.Close()
		}
	}

	engine := tasks.NewAccountEngine(source, dest, tasks.EngineOpts{Archiver: archiver})

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/raccclo-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, source, dest, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive cloning.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for account cloning",
		Flags: append(credentialFlags(),
			&cli.BoolFlag{
				Name:  "no-archive",
				Usage: "Skip recording the run in the local history database",
			},
		),
		Action: r.TUI,
	}
}
