package shared

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Credentials holds the script app keys and both account logins for a clone run.
//
// The secret token and passwords are never logged. Every field can be
// overridden by its RACCCLO_* environment variable.
type Credentials struct {
	ClientID    string `json:"client_id" env:"RACCCLO_CLIENT_ID"`
	SecretToken string `json:"secret_token" env:"RACCCLO_SECRET_TOKEN"`
	SrcUsername string `json:"src_username" env:"RACCCLO_SRC_USERNAME"`
	SrcPassword string `json:"src_password" env:"RACCCLO_SRC_PASSWORD"`
	DstUsername string `json:"dst_username" env:"RACCCLO_DST_USERNAME"`
	DstPassword string `json:"dst_password" env:"RACCCLO_DST_PASSWORD"`
}

// LoadCredentials reads the credentials JSON at path and applies environment
// overrides on top of it.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidCredentials, path)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if err := creds.ApplyEnv(); err != nil {
		return nil, err
	}

	return &creds, nil
}

// CredentialsFromEnv builds Credentials entirely from RACCCLO_* environment variables.
func CredentialsFromEnv() (*Credentials, error) {
	var creds Credentials
	if err := creds.ApplyEnv(); err != nil {
		return nil, err
	}
	return &creds, nil
}

// ApplyEnv overlays RACCCLO_* environment variables onto the credentials.
// Unset variables leave existing values untouched.
func (c *Credentials) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse credential environment: %w", err)
	}
	return nil
}

// Validate checks that every credential field is present, naming the missing keys.
func (c *Credentials) Validate() error {
	fields := []struct {
		key   string
		value string
	}{
		{"client_id", c.ClientID},
		{"secret_token", c.SecretToken},
		{"src_username", c.SrcUsername},
		{"src_password", c.SrcPassword},
		{"dst_username", c.DstUsername},
		{"dst_password", c.DstPassword},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	return nil
}

// Source returns the source account login pair.
func (c *Credentials) Source() (username, password string) {
	return c.SrcUsername, c.SrcPassword
}

// Destination returns the destination account login pair.
func (c *Credentials) Destination() (username, password string) {
	return c.DstUsername, c.DstPassword
}
