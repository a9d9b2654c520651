// Reddit API implementation of [Service]
//
// Reddit API response types based on https://www.reddit.com/dev/api/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	redditAuthURL  = "https://www.reddit.com"
	redditTokenURL = "/api/v1/access_token"
	redditAPIURL   = "https://oauth.reddit.com"

	// redditPageLimit is the largest page size listings accept.
	redditPageLimit = 100

	defaultUserAgent  = "raccclo/1.0.0"
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 10 * time.Second
)

// RedditUser represents the identity returned by /api/v1/me.
type RedditUser struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Created float64 `json:"created_utc"`
}

// RedditSubreddit represents the subreddit fields carried in listing children.
// Name holds the fullname (e.g. "t5_2qh1i"), DisplayName the community name.
type RedditSubreddit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Subscribers int    `json:"subscribers"`
}

// RedditListing is the envelope Reddit wraps paginated results in.
type RedditListing struct {
	Kind string            `json:"kind"`
	Data RedditListingData `json:"data"`
}

// RedditListingData carries one page of children and the pagination cursors.
type RedditListingData struct {
	After    string         `json:"after"`
	Before   string         `json:"before"`
	Children []listingChild `json:"children"`
}

type listingChild struct {
	Kind string          `json:"kind"`
	Data RedditSubreddit `json:"data"`
}

// RedditMulti represents a multireddit as returned by /api/multi/mine.
type RedditMulti struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Path        string           `json:"path"`
	Visibility  string           `json:"visibility"`
	Subreddits  []multiSubreddit `json:"subreddits"`
}

type multiSubreddit struct {
	Name string `json:"name"`
}

type multiEnvelope struct {
	Kind string      `json:"kind"`
	Data RedditMulti `json:"data"`
}

// multiModel is the JSON document POSTed when creating a multireddit.
type multiModel struct {
	DisplayName string           `json:"display_name"`
	Subreddits  []multiSubreddit `json:"subreddits"`
	Visibility  string           `json:"visibility"`
}

// RedditOpts configures a RedditService. Zero-value fields fall back to
// production defaults, which makes tests able to point the service at a local
// server.
type RedditOpts struct {
	ClientID    string
	SecretToken string
	Username    string
	Password    string
	UserAgent   string
	AuthBase    string
	APIBase     string
	Timeout     time.Duration
	Limiter     *rate.Limiter
}

// RedditService implements the Service interface for one Reddit account.
// Uses [oauth2]'s password grant for authentication and paces every API call
// through a [rate.Limiter].
type RedditService struct {
	opts       RedditOpts
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	username   string
}

// userAgentTransport stamps the configured User-Agent on every outgoing
// request, the token exchange included. Reddit throttles the default Go agent.
type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}

// NewRedditService creates a session for a single account.
func NewRedditService(opts RedditOpts) (*RedditService, error) {
	if opts.ClientID == "" || opts.SecretToken == "" {
		return nil, fmt.Errorf("%w: client_id and secret_token", shared.ErrMissingCredentials)
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("%w: username and password", shared.ErrMissingCredentials)
	}

	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.AuthBase == "" {
		opts.AuthBase = redditAuthURL
	}
	if opts.APIBase == "" {
		opts.APIBase = redditAPIURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.SecretToken,
		Endpoint: oauth2.Endpoint{
			TokenURL:  opts.AuthBase + redditTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{agent: opts.UserAgent, next: http.DefaultTransport},
	}

	return &RedditService{
		opts:       opts,
		config:     config,
		httpClient: client,
		limiter:    opts.Limiter,
	}, nil
}

// doRequest performs an authenticated, rate limited request against the API.
// Form bodies are sent URL encoded, responses decoded into result when non-nil.
func (s *RedditService) doRequest(ctx context.Context, method, endpoint string, form url.Values, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	apiURL := s.opts.APIBase + endpoint

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// checkStatus maps API status codes onto the shared error taxonomy.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &shared.RateLimitError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: status %d", shared.ErrAlreadyExists, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", shared.ErrSubredditNotFound, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
}

// retryAfter parses the Retry-After header, falling back to a conservative
// delay when the header is absent or unreadable.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryDelay
}

// Identity retrieves the authenticated account's profile.
func (s *RedditService) Identity(ctx context.Context) (*RedditUser, error) {
	var user RedditUser
	if err := s.doRequest(ctx, http.MethodGet, "/api/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SubscribedListing retrieves one page of the account's subscribed subreddits.
func (s *RedditService) SubscribedListing(ctx context.Context, after string, limit int) (*RedditListing, error) {
	if limit <= 0 || limit > redditPageLimit {
		limit = redditPageLimit
	}

	endpoint := fmt.Sprintf("/subreddits/mine/subscriber?limit=%d", limit)
	if after != "" {
		endpoint += "&after=" + url.QueryEscape(after)
	}

	var listing RedditListing
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

// Service interface implementation

// Authenticate logs the account in with the password grant. Reddit reports
// rejected logins inside a 200 response, which [oauth2] surfaces as a
// RetrieveError.
func (s *RedditService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.PasswordCredentialsToken(ctx, s.opts.Username, s.opts.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, s.opts.Username)
		}
		return fmt.Errorf("%w: token request: %v", shared.ErrServiceUnavailable, err)
	}

	s.token = token
	return nil
}

// Me returns the username reported by the API, caching it after the first call.
func (s *RedditService) Me(ctx context.Context) (string, error) {
	if s.username != "" {
		return s.username, nil
	}

	user, err := s.Identity(ctx)
	if err != nil {
		return "", err
	}
	if user.Name == "" {
		return "", fmt.Errorf("%w: identity response missing username", shared.ErrAPIRequest)
	}

	s.username = user.Name
	return s.username, nil
}

// Subscriptions retrieves one page of subscriptions as transient refs.
func (s *RedditService) Subscriptions(ctx context.Context, after string) (*SubscriptionPage, error) {
	listing, err := s.SubscribedListing(ctx, after, redditPageLimit)
	if err != nil {
		return nil, err
	}

	page := &SubscriptionPage{After: listing.Data.After}
	for _, child := range listing.Data.Children {
		if child.Data.DisplayName == "" {
			continue
		}
		page.Subreddits = append(page.Subreddits, models.Subreddit{Name: child.Data.DisplayName})
	}

	return page, nil
}

// Subscribe adds the account to the named subreddit.
func (s *RedditService) Subscribe(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: subreddit name", shared.ErrInvalidInput)
	}

	form := url.Values{
		"action":  {"sub"},
		"sr_name": {name},
	}

	if err := s.doRequest(ctx, http.MethodPost, "/api/subscribe", form, nil); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", name, err)
	}

	return nil
}

// Multireddits retrieves every multireddit owned by the account.
// The endpoint is not paginated.
func (s *RedditService) Multireddits(ctx context.Context) ([]models.Multireddit, error) {
	var envelopes []multiEnvelope
	if err := s.doRequest(ctx, http.MethodGet, "/api/multi/mine", nil, &envelopes); err != nil {
		return nil, err
	}

	multis := make([]models.Multireddit, 0, len(envelopes))
	for _, env := range envelopes {
		multi := models.Multireddit{
			Name:       env.Data.DisplayName,
			Path:       env.Data.Path,
			Visibility: models.ParseVisibility(env.Data.Visibility),
		}
		if multi.Name == "" {
			multi.Name = env.Data.Name
		}
		for _, sub := range env.Data.Subreddits {
			multi.Subreddits = append(multi.Subreddits, models.Subreddit{Name: sub.Name})
		}
		multis = append(multis, multi)
	}

	return multis, nil
}

// CreateMultireddit creates the multireddit under the session account's path.
func (s *RedditService) CreateMultireddit(ctx context.Context, multi models.Multireddit) error {
	if multi.Name == "" && multi.Path == "" {
		return fmt.Errorf("%w: multireddit name", shared.ErrInvalidInput)
	}

	username, err := s.Me(ctx)
	if err != nil {
		return err
	}

	model := multiModel{
		DisplayName: multi.Name,
		Visibility:  string(models.ParseVisibility(string(multi.Visibility))),
		Subreddits:  make([]multiSubreddit, 0, len(multi.Subreddits)),
	}
	for _, sub := range multi.Subreddits {
		model.Subreddits = append(model.Subreddits, multiSubreddit{Name: sub.Name})
	}

	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode multireddit model: %w", err)
	}

	endpoint := fmt.Sprintf("/api/multi/user/%s/m/%s", url.PathEscape(username), url.PathEscape(multi.Slug()))
	form := url.Values{"model": {string(payload)}}

	if err := s.doRequest(ctx, http.MethodPost, endpoint, form, nil); err != nil {
		return fmt.Errorf("failed to create multireddit %s: %w", multi.Name, err)
	}

	return nil
}

// Name returns the username this session was configured with.
func (s *RedditService) Name() string {
	return s.opts.Username
}
