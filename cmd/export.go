package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/raccclo/internal/formatter"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/desertthunder/raccclo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export snapshots one account's subscriptions and multireddits to disk
// without writing anything to Reddit.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.resolveCredentials(cmd)
	if err != nil {
		return err
	}

	var username, password string
	switch account := cmd.String("account"); account {
	case "src", "source":
		username, password = creds.Source()
	case "dst", "dest", "destination":
		username, password = creds.Destination()
	default:
		return fmt.Errorf("%w: --account must be 'src' or 'dst', got %q", shared.ErrInvalidFlag, account)
	}

	svc, err := r.buildSession(creds, username, password)
	if err != nil {
		return err
	}

	engine := tasks.NewAccountEngine(svc, svc, tasks.EngineOpts{})

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	out := cmd.String("out")
	format := cmd.String("format")

	var written []string
	var exportErr error

	switch format {
	case "json", "":
		var path string
		path, _, exportErr = engine.WriteSnapshot(ctx, progressCh, svc, out)
		written = append(written, path)
	case "csv":
		export, err := engine.Snapshot(ctx, progressCh, svc)
		if err != nil {
			exportErr = err
			break
		}
		result, err := formatter.WriteCSVExport(export, out)
		if err != nil {
			exportErr = err
			break
		}
		written = append(written, result.SubredditsFile, result.MultiredditsFile)
	case "markdown", "md":
		export, err := engine.Snapshot(ctx, progressCh, svc)
		if err != nil {
			exportErr = err
			break
		}
		var path string
		if path, err = formatter.WriteMarkdownExport(export, out); err != nil {
			exportErr = err
			break
		}
		written = append(written, path)
	case "text", "txt":
		export, err := engine.Snapshot(ctx, progressCh, svc)
		if err != nil {
			exportErr = err
			break
		}
		var path string
		if path, err = formatter.WriteTextExport(export, out); err != nil {
			exportErr = err
			break
		}
		written = append(written, path)
	default:
		exportErr = fmt.Errorf("%w: unknown format %q (json, csv, markdown, text)", shared.ErrInvalidFlag, format)
	}

	close(progressCh)
	<-done

	if exportErr != nil {
		return exportErr
	}

	for _, path := range written {
		r.writePlain("✓ Wrote %s\n", path)
	}
	return nil
}

// exportCommand snapshots an account to a local file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Snapshot an account's subscriptions and multireddits to a file",
		Flags: append(credentialFlags(),
			&cli.StringFlag{
				Name:  "account",
				Usage: "Which account to export (src or dst)",
				Value: "src",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file path (derived from the account name when empty)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, csv, markdown, or text",
				Value:   "json",
			},
		),
		Action: r.Export,
	}
}
