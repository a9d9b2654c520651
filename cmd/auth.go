package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// AuthCheck logs into both accounts and prints the usernames the API reports,
// confirming the credential set works before a real run.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.resolveCredentials(cmd)
	if err != nil {
		return err
	}

	source, dest, err := r.buildSessions(creds)
	if err != nil {
		return err
	}

	r.logger.Info("checking source account", "username", source.Name())
	if err := source.Authenticate(ctx); err != nil {
		return err
	}
	srcName, err := source.Me(ctx)
	if err != nil {
		return err
	}
	r.writePlain("✓ Source: u/%s\n", srcName)

	r.logger.Info("checking destination account", "username", dest.Name())
	if err := dest.Authenticate(ctx); err != nil {
		return err
	}
	dstName, err := dest.Me(ctx)
	if err != nil {
		return err
	}
	r.writePlain("✓ Destination: u/%s\n", dstName)

	return nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Authenticate both accounts and print the resolved usernames",
				Flags:  credentialFlags(),
				Action: r.AuthCheck,
			},
		},
	}
}
