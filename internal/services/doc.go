// Package services defines the [Service] interface for Reddit account sessions and implements it over the OAuth script-app flow.
//
// # Service Interface
//
// Both sides of a clone run, the source account and the destination account, are
// represented by the same abstraction, so read and write operations work
// uniformly regardless of which account a session belongs to.
//
// # Reddit Implementation
//
// [RedditService] authenticates with [oauth2]'s password grant, which Reddit
// allows for script-type apps operating on the developer's own accounts. Every
// request, the token exchange included, carries the configured User-Agent;
// Reddit aggressively throttles clients with a default one.
//
// Requests are paced by a shared [rate.Limiter] so a clone run stays inside the
// API quota. Listings are fetched page by page using the cursor in the Listing
// envelope.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : login rejected, or a 401/403 response
//   - [shared.ErrRateLimited] : 429 response, wrapped in a [shared.RateLimitError] carrying the server delay
//   - [shared.ErrAlreadyExists] : 409 response creating a multireddit whose slug is taken
//   - [shared.ErrServiceUnavailable] : transport failure or 5xx response
//   - [shared.ErrAPIRequest] : any other non-success response
//
// # API Mappings
//
// The service converts Reddit's JSON envelopes to transient model refs:
//   - Listing children map [RedditSubreddit] → [models.Subreddit] by display name
//   - [RedditMulti] → [models.Multireddit] with visibility normalized through models.ParseVisibility
package services
