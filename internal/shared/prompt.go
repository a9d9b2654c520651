package shared

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// readPassword reads one secret from the terminal without echo. Declared as a
// variable so tests can substitute canned input.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(syscall.Stdin))
}

// PromptCredentials interactively collects the full credential set.
// Usernames and the client ID echo normally, the secret token and both
// passwords are read without echo.
func PromptCredentials(in io.Reader, out io.Writer) (*Credentials, error) {
	reader := bufio.NewReader(in)
	creds := &Credentials{}

	prompts := []struct {
		label  string
		field  *string
		secret bool
	}{
		{"Client ID", &creds.ClientID, false},
		{"Secret token", &creds.SecretToken, true},
		{"Source username", &creds.SrcUsername, false},
		{"Source password", &creds.SrcPassword, true},
		{"Destination username", &creds.DstUsername, false},
		{"Destination password", &creds.DstPassword, true},
	}

	for _, p := range prompts {
		fmt.Fprintf(out, "%s: ", p.label)

		if p.secret {
			data, err := readPassword()
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", strings.ToLower(p.label), err)
			}
			fmt.Fprintln(out)
			*p.field = strings.TrimSpace(string(data))
			continue
		}

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read %s: %w", strings.ToLower(p.label), err)
		}
		*p.field = strings.TrimSpace(line)
	}

	return creds, nil
}
