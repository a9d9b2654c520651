package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/shared"
	"github.com/desertthunder/raccclo/internal/tasks"
	tu "github.com/desertthunder/raccclo/internal/testing"
	"github.com/urfave/cli/v3"
)

const testCredentialsJSON = `{
	"client_id": "app_id",
	"secret_token": "app_secret",
	"src_username": "src_user",
	"src_password": "src_pass",
	"dst_username": "dst_user",
	"dst_password": "dst_pass"
}`

// runWithFlags invokes fn as a cli action so flag parsing matches real usage.
func runWithFlags(t *testing.T, flags []cli.Flag, args []string, fn cli.ActionFunc) error {
	t.Helper()
	cmd := &cli.Command{Name: "test", Flags: flags, Action: fn}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "raccclo.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "raccclo.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Input: nil})

			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "clone", "export", "history", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestResolveCredentials(t *testing.T) {
	writeCreds := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "credentials.json")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write credentials file: %v", err)
		}
		return path
	}

	t.Run("loads from --credentials flag", func(t *testing.T) {
		path := writeCreds(t, testCredentialsJSON)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runWithFlags(t, credentialFlags(), []string{"--credentials", path}, func(ctx context.Context, cmd *cli.Command) error {
			creds, err := runner.resolveCredentials(cmd)
			if err != nil {
				return err
			}
			if creds.SrcUsername != "src_user" {
				t.Errorf("expected src_user, got %s", creds.SrcUsername)
			}
			if creds.DstUsername != "dst_user" {
				t.Errorf("expected dst_user, got %s", creds.DstUsername)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("falls back to configured path", func(t *testing.T) {
		path := writeCreds(t, testCredentialsJSON)
		config := shared.DefaultConfig()
		config.Credentials.Path = path
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

		err := runWithFlags(t, credentialFlags(), nil, func(ctx context.Context, cmd *cli.Command) error {
			creds, err := runner.resolveCredentials(cmd)
			if err != nil {
				return err
			}
			if creds.ClientID != "app_id" {
				t.Errorf("expected app_id, got %s", creds.ClientID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("rejects incomplete credentials", func(t *testing.T) {
		path := writeCreds(t, `{"client_id": "app_id"}`)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runWithFlags(t, credentialFlags(), []string{"--credentials", path}, func(ctx context.Context, cmd *cli.Command) error {
			_, err := runner.resolveCredentials(cmd)
			return err
		})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		if !strings.Contains(err.Error(), "src_username") {
			t.Errorf("expected missing key to be named, got %v", err)
		}
	})

	t.Run("environment overrides fill gaps", func(t *testing.T) {
		path := writeCreds(t, `{"client_id": "app_id", "secret_token": "app_secret", "src_username": "src_user", "src_password": "src_pass", "dst_username": "dst_user"}`)
		t.Setenv("RACCCLO_DST_PASSWORD", "env_pass")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runWithFlags(t, credentialFlags(), []string{"--credentials", path}, func(ctx context.Context, cmd *cli.Command) error {
			creds, err := runner.resolveCredentials(cmd)
			if err != nil {
				return err
			}
			if creds.DstPassword != "env_pass" {
				t.Errorf("expected env override, got %s", creds.DstPassword)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing file reported", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runWithFlags(t, credentialFlags(), []string{"--credentials", "/nonexistent/creds.json"}, func(ctx context.Context, cmd *cli.Command) error {
			_, err := runner.resolveCredentials(cmd)
			return err
		})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Fatalf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestBuildSessions(t *testing.T) {
	creds := &shared.Credentials{
		ClientID:    "app_id",
		SecretToken: "app_secret",
		SrcUsername: "src_user",
		SrcPassword: "src_pass",
		DstUsername: "dst_user",
		DstPassword: "dst_pass",
	}

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	source, dest, err := runner.buildSessions(creds)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if source.Name() != "src_user" {
		t.Errorf("expected source session for src_user, got %s", source.Name())
	}
	if dest.Name() != "dst_user" {
		t.Errorf("expected destination session for dst_user, got %s", dest.Name())
	}
}

func TestPrintCloneResult(t *testing.T) {
	result := &tasks.CloneRunResult{
		SourceAccount: "alice",
		DestAccount:   "bob",
		Subreddits: []models.Outcome{
			{Item: "golang", Kind: models.KindSubreddit, Status: models.StatusCreated},
			{Item: "rust", Kind: models.KindSubreddit, Status: models.StatusAlreadyExists},
			{Item: "gonewild", Kind: models.KindSubreddit, Status: models.StatusFailed, Detail: "quarantined"},
		},
		Multireddits: []models.Outcome{
			{Item: "tech", Kind: models.KindMultireddit, Status: models.StatusCreated},
		},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	result.Summary = tasks.BuildSummary(result.Subreddits, result.Multireddits)

	t.Run("renders counts and failed items", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.printCloneResult(result)

		text := output.String()
		if !strings.Contains(text, "Clone Complete!") {
			t.Error("expected completion header")
		}
		if !strings.Contains(text, "Source: u/alice") || !strings.Contains(text, "Destination: u/bob") {
			t.Errorf("expected account labels, got %s", text)
		}
		if !strings.Contains(text, "Subreddits: 1 copied, 1 already present, 1 failed (of 3)") {
			t.Errorf("expected subreddit counts, got %s", text)
		}
		if !strings.Contains(text, "Multireddits: 1 copied, 0 already present, 0 failed (of 1)") {
			t.Errorf("expected multireddit counts, got %s", text)
		}
		if !strings.Contains(text, "r/gonewild: quarantined") {
			t.Errorf("expected failed item with detail, got %s", text)
		}
	})

	t.Run("labels dry runs", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		dry := *result
		dry.DryRun = true
		runner.printCloneResult(&dry)

		if !strings.Contains(output.String(), "Dry Run Complete!") {
			t.Error("expected dry run header")
		}
	})

	t.Run("omits failure block when nothing failed", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		clean := &tasks.CloneRunResult{
			SourceAccount: "alice",
			DestAccount:   "bob",
			Subreddits: []models.Outcome{
				{Item: "golang", Kind: models.KindSubreddit, Status: models.StatusCreated},
			},
		}
		clean.Summary = tasks.BuildSummary(clean.Subreddits, nil)
		runner.printCloneResult(clean)

		if strings.Contains(output.String(), "items failed") {
			t.Errorf("expected no failure block, got %s", output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("scaffolds config, credentials template, and database", func(t *testing.T) {
		// Setup honors the scaffolded config's relative database path.
		tmpDir := t.TempDir()
		originalDir := tu.MustGetwd(t)
		tu.MustChdir(t, tmpDir)
		defer tu.MustChdir(t, originalDir)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		cmd := setupCommand(runner)
		err := cmd.Run(context.Background(), []string{"setup", "--config", "raccclo.toml", "--credentials-file", "credentials.json"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, "raccclo.toml")
		tu.AssertFileExists(t, "credentials.json")
		tu.AssertFileExists(t, "raccclo.db")

		creds := tu.MustReadFile(t, "credentials.json")
		for _, key := range []string{"client_id", "secret_token", "src_username", "src_password", "dst_username", "dst_password"} {
			if !strings.Contains(creds, key) {
				t.Errorf("expected credentials template to contain %q", key)
			}
		}
	})

	t.Run("refuses to overwrite credentials file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "raccclo.toml")
		credsPath := filepath.Join(tmpDir, "credentials.json")

		if err := os.WriteFile(credsPath, []byte(testCredentialsJSON), 0600); err != nil {
			t.Fatalf("failed to seed credentials file: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		cmd := setupCommand(runner)
		err := cmd.Run(context.Background(), []string{"setup", "--config", configPath, "--credentials-file", credsPath})
		if err == nil {
			t.Fatal("expected error for existing credentials file")
		}
		if !errors.Is(err, os.ErrExist) {
			t.Errorf("expected os.ErrExist, got %v", err)
		}
	})
}

func TestHistoryCommands(t *testing.T) {
	t.Run("list with empty archive", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.config.Database.Path = filepath.Join(t.TempDir(), "raccclo.db")

		cmd := historyCommand(runner)
		if err := cmd.Run(context.Background(), []string{"history", "list"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "No archived runs.") {
			t.Errorf("expected empty archive message, got %s", output.String())
		}
	})

	t.Run("list and show archived run", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "raccclo.db")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.config.Database.Path = dbPath

		archive, db, err := runner.openArchive()
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}

		result := &tasks.CloneRunResult{
			SourceAccount: "alice",
			DestAccount:   "bob",
			Subreddits: []models.Outcome{
				{Item: "golang", Kind: models.KindSubreddit, Status: models.StatusCreated},
				{Item: "nosuchsub", Kind: models.KindSubreddit, Status: models.StatusFailed, Detail: "banned"},
			},
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
		}
		result.Summary = tasks.BuildSummary(result.Subreddits, nil)

		if err := archive.ArchiveRun(result); err != nil {
			t.Fatalf("failed to archive run: %v", err)
		}
		db.Close()

		cmd := historyCommand(runner)
		if err := cmd.Run(context.Background(), []string{"history", "list"}); err != nil {
			t.Fatalf("history list failed: %v", err)
		}

		listed := output.String()
		if !strings.Contains(listed, "u/alice → u/bob") {
			t.Errorf("expected run line, got %s", listed)
		}

		// The id line is "    id: <uuid>"
		var runID string
		for _, line := range strings.Split(listed, "\n") {
			if idx := strings.Index(line, "id: "); idx >= 0 {
				runID = strings.TrimSpace(line[idx+4:])
				break
			}
		}
		if runID == "" {
			t.Fatalf("failed to find run id in output: %s", listed)
		}

		output.Reset()
		if err := cmd.Run(context.Background(), []string{"history", "show", runID}); err != nil {
			t.Fatalf("history show failed: %v", err)
		}

		shown := output.String()
		if !strings.Contains(shown, "✓ r/golang") {
			t.Errorf("expected created outcome, got %s", shown)
		}
		if !strings.Contains(shown, "✗ r/nosuchsub: banned") {
			t.Errorf("expected failed outcome with detail, got %s", shown)
		}
	})

	t.Run("show without id fails", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		runner.config.Database.Path = filepath.Join(t.TempDir(), "raccclo.db")

		cmd := historyCommand(runner)
		err := cmd.Run(context.Background(), []string{"history", "show"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show with unknown id fails", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		runner.config.Database.Path = filepath.Join(t.TempDir(), "raccclo.db")

		cmd := historyCommand(runner)
		err := cmd.Run(context.Background(), []string{"history", "show", "no-such-run"})
		if !errors.Is(err, shared.ErrRunNotFound) {
			t.Fatalf("expected ErrRunNotFound, got %v", err)
		}
	})
}
