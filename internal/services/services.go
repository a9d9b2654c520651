// package services defines interface Service for interacting with HTTP APIs
//
// Reddit, via the OAuth script-app flow
package services

import (
	"context"

	"github.com/desertthunder/raccclo/internal/models"
)

// Service defines the interface for a logged-in Reddit account session that can
// read and write subscriptions and multireddits.
type Service interface {
	// Authenticate obtains an access token for the account using the
	// password grant. Returns an error if the login is rejected.
	Authenticate(ctx context.Context) error

	// Me returns the username the API reports for this session.
	Me(ctx context.Context) (string, error)

	// Subscriptions retrieves one page of the account's subreddit
	// subscriptions, continuing after the given listing fullname.
	// An empty cursor on the returned page means the listing is exhausted.
	Subscriptions(ctx context.Context, after string) (*SubscriptionPage, error)

	// Subscribe adds the account to the named subreddit.
	// Subscribing to a subreddit the account already follows succeeds.
	Subscribe(ctx context.Context, name string) error

	// Multireddits retrieves every multireddit the account owns.
	Multireddits(ctx context.Context) ([]models.Multireddit, error)

	// CreateMultireddit creates a multireddit on the account.
	// Returns shared.ErrAlreadyExists when the slug is already taken.
	CreateMultireddit(ctx context.Context, multi models.Multireddit) error

	// Name returns the username this session was configured with.
	Name() string
}

// SubscriptionPage is one page of a paginated subscription listing.
// After carries the cursor for the next page, empty on the last one.
type SubscriptionPage struct {
	Subreddits []models.Subreddit
	After      string
}
