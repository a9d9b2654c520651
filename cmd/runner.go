package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/raccclo/internal/services"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger replaces the runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, cloneCommand, exportCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// credentialFlags are shared by every command that logs into Reddit.
func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "credentials",
			Aliases: []string{"c"},
			Usage:   "Path to credentials JSON file",
		},
		&cli.BoolFlag{
			Name:    "terminal",
			Aliases: []string{"t"},
			Usage:   "Prompt for credentials interactively",
		},
	}
}

// resolveCredentials loads the credential set the way the command asked for:
// interactive prompts with --terminal, an explicit --credentials file, or the
// configured default path. RACCCLO_* environment variables override every
// source; validation happens after overrides, before any network call.
func (r *Runner) resolveCredentials(cmd *cli.Command) (*shared.Credentials, error) {
	var creds *shared.Credentials
	var err error

	switch {
	case cmd.Bool("terminal"):
		creds, err = shared.PromptCredentials(r.input, r.output)
		if err == nil {
			err = creds.ApplyEnv()
		}
	case cmd.String("credentials") != "":
		creds, err = shared.LoadCredentials(cmd.String("credentials"))
	default:
		creds, err = shared.LoadCredentials(r.config.Credentials.Path)
	}

	if err != nil {
		return nil, err
	}

	if err := creds.Validate(); err != nil {
		return nil, err
	}

	return creds, nil
}

// buildSession creates one Reddit session from the shared app keys and a
// single account's login. Each session gets its own limiter because Reddit
// budgets requests per account, not per process.
func (r *Runner) buildSession(creds *shared.Credentials, username, password string) (services.Service, error) {
	rpm := r.config.API.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return services.NewRedditService(services.RedditOpts{
		ClientID:    creds.ClientID,
		SecretToken: creds.SecretToken,
		Username:    username,
		Password:    password,
		UserAgent:   r.config.API.UserAgent,
		Timeout:     r.config.API.Timeout(),
		Limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	})
}

// buildSessions creates the source and destination sessions for a clone run.
func (r *Runner) buildSessions(creds *shared.Credentials) (source, dest services.Service, err error) {
	srcUser, srcPass := creds.Source()
	if source, err = r.buildSession(creds, srcUser, srcPass); err != nil {
		return nil, nil, fmt.Errorf("failed to create source session: %w", err)
	}

	dstUser, dstPass := creds.Destination()
	if dest, err = r.buildSession(creds, dstUser, dstPass); err != nil {
		return nil, nil, fmt.Errorf("failed to create destination session: %w", err)
	}

	return source, dest, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
