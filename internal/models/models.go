// package models defines the data model for the account cloning service
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models in the cloning service.
// Implementations include CloneRun and RunOutcome.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Subreddit is a single community an account subscribes to.
type Subreddit struct {
	Name string `json:"name"`
}

// Visibility is a multireddit's visibility setting.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
	VisibilityHidden  Visibility = "hidden"
)

// ParseVisibility maps an API visibility string onto a known [Visibility],
// defaulting to private for anything unrecognized.
func ParseVisibility(s string) Visibility {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic
	case VisibilityHidden:
		return VisibilityHidden
	default:
		return VisibilityPrivate
	}
}

// Multireddit is a named collection of subreddits owned by an account.
type Multireddit struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	Visibility Visibility  `json:"visibility"`
	Subreddits []Subreddit `json:"subreddits"`
}

// Slug returns the path tail identifying this multireddit, deriving one from
// the display name when the path is absent or malformed.
func (m Multireddit) Slug() string {
	if idx := strings.LastIndex(m.Path, "/m/"); idx >= 0 {
		if slug := strings.Trim(m.Path[idx+3:], "/"); slug != "" {
			return slug
		}
	}
	return slugify(m.Name)
}

// slugify reduces a display name to the lowercase word characters Reddit
// accepts in a multireddit path.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "multireddit"
	}
	return b.String()
}

// ItemKind distinguishes the two item types a clone run touches.
type ItemKind string

const (
	KindSubreddit   ItemKind = "subreddit"
	KindMultireddit ItemKind = "multireddit"
)

// OutcomeStatus is the per-item result of an apply step.
type OutcomeStatus string

const (
	StatusCreated       OutcomeStatus = "created"
	StatusAlreadyExists OutcomeStatus = "already_exists"
	StatusFailed        OutcomeStatus = "failed"
)

// Outcome records what happened to a single item during a clone run.
type Outcome struct {
	Item   string        `json:"item"`
	Kind   ItemKind      `json:"kind"`
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// Validate checks that the outcome names an item and carries known enum values.
func (o Outcome) Validate() error {
	if o.Item == "" {
		return fmt.Errorf("outcome item is required")
	}
	switch o.Kind {
	case KindSubreddit, KindMultireddit:
	default:
		return fmt.Errorf("unknown item kind: %s", o.Kind)
	}
	switch o.Status {
	case StatusCreated, StatusAlreadyExists, StatusFailed:
	default:
		return fmt.Errorf("unknown outcome status: %s", o.Status)
	}
	return nil
}

// ExportVersion identifies the account export document layout.
const ExportVersion = 1

// AccountExport is a portable snapshot of one account's subscriptions and multireddits.
type AccountExport struct {
	Version      int           `json:"version"`
	Account      string        `json:"account"`
	ExportedAt   time.Time     `json:"exported_at"`
	Subreddits   []Subreddit   `json:"subreddits"`
	Multireddits []Multireddit `json:"multireddits"`
}
