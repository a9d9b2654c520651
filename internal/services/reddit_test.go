package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/raccclo/internal/models"
	"github.com/desertthunder/raccclo/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

func testMultireddit() models.Multireddit {
	return models.Multireddit{
		Name:       "Cool Stuff",
		Path:       "/user/old_account/m/cool_stuff",
		Visibility: "public",
		Subreddits: []models.Subreddit{{Name: "golang"}, {Name: "programming"}},
	}
}

func testOpts(serverURL string) RedditOpts {
	return RedditOpts{
		ClientID:    "test_client_id",
		SecretToken: "test_secret",
		Username:    "old_account",
		Password:    "old_pass",
		AuthBase:    serverURL,
		APIBase:     serverURL,
		Limiter:     rate.NewLimiter(rate.Inf, 0),
	}
}

// newTestService builds an authenticated service pointed at a local server.
func newTestService(t *testing.T, serverURL string) *RedditService {
	t.Helper()

	srv, err := NewRedditService(testOpts(serverURL))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.token = &oauth2.Token{AccessToken: "test_token"}
	return srv
}

func TestRedditService(t *testing.T) {
	t.Run("NewRedditService", func(t *testing.T) {
		t.Run("With Valid Opts", func(t *testing.T) {
			srv, err := NewRedditService(testOpts(""))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "old_account" {
				t.Errorf("expected service name 'old_account', got %s", srv.Name())
			}
		})

		t.Run("Missing App Credentials", func(t *testing.T) {
			opts := testOpts("")
			opts.SecretToken = ""

			_, err := NewRedditService(opts)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Account Credentials", func(t *testing.T) {
			opts := testOpts("")
			opts.Password = ""

			_, err := NewRedditService(opts)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv, err := NewRedditService(RedditOpts{
				ClientID:    "id",
				SecretToken: "secret",
				Username:    "user",
				Password:    "pass",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.opts.UserAgent != defaultUserAgent {
				t.Errorf("expected default user agent, got %s", srv.opts.UserAgent)
			}
			if srv.opts.APIBase != redditAPIURL {
				t.Errorf("expected default API base, got %s", srv.opts.APIBase)
			}
			if !strings.HasPrefix(srv.config.Endpoint.TokenURL, redditAuthURL) {
				t.Errorf("expected token URL under %s, got %s", redditAuthURL, srv.config.Endpoint.TokenURL)
			}
			if srv.limiter == nil {
				t.Error("expected a default limiter")
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Password Grant", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v1/access_token" {
					t.Errorf("expected token path, got %s", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}

				user, pass, ok := r.BasicAuth()
				if !ok || user != "test_client_id" || pass != "test_secret" {
					t.Errorf("expected app credentials via basic auth, got %s/%s", user, pass)
				}

				if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
					t.Errorf("expected user agent %s on token request, got %s", defaultUserAgent, ua)
				}

				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("grant_type") != "password" {
					t.Errorf("expected password grant, got %s", r.PostForm.Get("grant_type"))
				}
				if r.PostForm.Get("username") != "old_account" || r.PostForm.Get("password") != "old_pass" {
					t.Errorf("expected account login in form, got %s/%s", r.PostForm.Get("username"), r.PostForm.Get("password"))
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"access_token": "granted_token",
					"token_type":   "bearer",
					"expires_in":   3600,
					"scope":        "*",
				})
			}))
			defer server.Close()

			srv, err := NewRedditService(testOpts(server.URL))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if err := srv.Authenticate(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.token == nil || srv.token.AccessToken != "granted_token" {
				t.Errorf("expected granted token to be stored, got %+v", srv.token)
			}
		})

		t.Run("Rejected Login", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"error": "invalid_grant"}`))
			}))
			defer server.Close()

			srv, err := NewRedditService(testOpts(server.URL))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Bad App Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			srv, err := NewRedditService(testOpts(server.URL))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Unreachable Server", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			srv, err := NewRedditService(testOpts(server.URL))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			err = srv.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		srv, err := NewRedditService(testOpts("http://localhost:1"))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.Me(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Me", func(t *testing.T) {
		var hits int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/me" {
				t.Errorf("expected path /api/v1/me, got %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test_token" {
				t.Errorf("expected bearer token, got %s", auth)
			}

			hits++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"id": "abc", "name": "old_account"})
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		name, err := srv.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if name != "old_account" {
			t.Errorf("expected username old_account, got %s", name)
		}

		if _, err := srv.Me(context.Background()); err != nil {
			t.Fatalf("expected no error on cached call, got %v", err)
		}
		if hits != 1 {
			t.Errorf("expected identity endpoint hit once, got %d", hits)
		}
	})

	t.Run("Subscriptions", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/subreddits/mine/subscriber" {
				t.Errorf("expected subscriber listing path, got %s", r.URL.Path)
			}
			if limit := r.URL.Query().Get("limit"); limit != "100" {
				t.Errorf("expected limit 100, got %s", limit)
			}
			if after := r.URL.Query().Get("after"); after != "t5_aaa" {
				t.Errorf("expected after cursor t5_aaa, got %s", after)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"kind": "Listing",
				"data": map[string]any{
					"after": "t5_bbb",
					"children": []map[string]any{
						{"kind": "t5", "data": map[string]any{"id": "2qh1i", "name": "t5_2qh1i", "display_name": "golang"}},
						{"kind": "t5", "data": map[string]any{"id": "2fwo", "name": "t5_2fwo", "display_name": "programming"}},
						{"kind": "t5", "data": map[string]any{"id": "x", "name": "t5_x", "display_name": ""}},
					},
				},
			})
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		page, err := srv.Subscriptions(context.Background(), "t5_aaa")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if page.After != "t5_bbb" {
			t.Errorf("expected cursor t5_bbb, got %s", page.After)
		}
		if len(page.Subreddits) != 2 {
			t.Fatalf("expected 2 subreddits after dropping the nameless child, got %d", len(page.Subreddits))
		}
		if page.Subreddits[0].Name != "golang" || page.Subreddits[1].Name != "programming" {
			t.Errorf("unexpected subreddits: %+v", page.Subreddits)
		}
	})

	t.Run("Subscribe", func(t *testing.T) {
		t.Run("Posts Subscribe Form", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/subscribe" {
					t.Errorf("expected path /api/subscribe, got %s", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}

				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("action") != "sub" {
					t.Errorf("expected action sub, got %s", r.PostForm.Get("action"))
				}
				if r.PostForm.Get("sr_name") != "golang" {
					t.Errorf("expected sr_name golang, got %s", r.PostForm.Get("sr_name"))
				}

				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			if err := srv.Subscribe(context.Background(), "golang"); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Missing Subreddit", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			err := srv.Subscribe(context.Background(), "banned_sub")
			if !errors.Is(err, shared.ErrSubredditNotFound) {
				t.Errorf("expected ErrSubredditNotFound, got %v", err)
			}
		})

		t.Run("Rate Limited", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			err := srv.Subscribe(context.Background(), "golang")
			if !errors.Is(err, shared.ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}

			var rle *shared.RateLimitError
			if !errors.As(err, &rle) {
				t.Fatal("expected a RateLimitError in the chain")
			}
			if rle.RetryAfter != 3*time.Second {
				t.Errorf("expected 3s retry delay, got %v", rle.RetryAfter)
			}
		})

		t.Run("Empty Name", func(t *testing.T) {
			srv := newTestService(t, "http://localhost:1")

			err := srv.Subscribe(context.Background(), "")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Multireddits", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/multi/mine" {
				t.Errorf("expected path /api/multi/mine, got %s", r.URL.Path)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"kind": "LabeledMulti",
					"data": map[string]any{
						"name":         "cool_stuff",
						"display_name": "Cool Stuff",
						"path":         "/user/old_account/m/cool_stuff",
						"visibility":   "public",
						"subreddits":   []map[string]any{{"name": "golang"}, {"name": "programming"}},
					},
				},
				{
					"kind": "LabeledMulti",
					"data": map[string]any{
						"name":         "quiet_reads",
						"display_name": "Quiet Reads",
						"path":         "/user/old_account/m/quiet_reads",
						"visibility":   "unlisted",
						"subreddits":   []map[string]any{{"name": "books"}},
					},
				},
			})
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		multis, err := srv.Multireddits(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(multis) != 2 {
			t.Fatalf("expected 2 multireddits, got %d", len(multis))
		}

		first := multis[0]
		if first.Name != "Cool Stuff" || first.Path != "/user/old_account/m/cool_stuff" {
			t.Errorf("unexpected multi: %+v", first)
		}
		if first.Visibility != "public" {
			t.Errorf("expected public visibility, got %s", first.Visibility)
		}
		if len(first.Subreddits) != 2 || first.Subreddits[0].Name != "golang" {
			t.Errorf("unexpected multi subreddits: %+v", first.Subreddits)
		}

		if multis[1].Visibility != "private" {
			t.Errorf("unknown visibility should normalize to private, got %s", multis[1].Visibility)
		}
	})

	t.Run("CreateMultireddit", func(t *testing.T) {
		t.Run("Posts Model", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/v1/me" {
					json.NewEncoder(w).Encode(map[string]any{"id": "abc", "name": "new_account"})
					return
				}

				if r.URL.Path != "/api/multi/user/new_account/m/cool_stuff" {
					t.Errorf("unexpected multi path: %s", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}

				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}

				var model struct {
					DisplayName string `json:"display_name"`
					Subreddits  []struct {
						Name string `json:"name"`
					} `json:"subreddits"`
					Visibility string `json:"visibility"`
				}
				if err := json.Unmarshal([]byte(r.PostForm.Get("model")), &model); err != nil {
					t.Fatalf("model form value should be JSON: %v", err)
				}

				if model.DisplayName != "Cool Stuff" {
					t.Errorf("expected display name Cool Stuff, got %s", model.DisplayName)
				}
				if len(model.Subreddits) != 2 || model.Subreddits[1].Name != "programming" {
					t.Errorf("unexpected model subreddits: %+v", model.Subreddits)
				}
				if model.Visibility != "public" {
					t.Errorf("expected public visibility, got %s", model.Visibility)
				}

				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			multi := testMultireddit()
			if err := srv.CreateMultireddit(context.Background(), multi); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Slug Conflict", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/v1/me" {
					json.NewEncoder(w).Encode(map[string]any{"id": "abc", "name": "new_account"})
					return
				}
				w.WriteHeader(http.StatusConflict)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			err := srv.CreateMultireddit(context.Background(), testMultireddit())
			if !errors.Is(err, shared.ErrAlreadyExists) {
				t.Errorf("expected ErrAlreadyExists, got %v", err)
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewRedditService(testOpts(""))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
	})
}

func TestCheckStatus(t *testing.T) {
	tc := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, shared.ErrAuthFailed},
		{"forbidden", http.StatusForbidden, shared.ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, shared.ErrRateLimited},
		{"conflict", http.StatusConflict, shared.ErrAlreadyExists},
		{"not found", http.StatusNotFound, shared.ErrSubredditNotFound},
		{"server error", http.StatusBadGateway, shared.ErrServiceUnavailable},
		{"other client error", http.StatusBadRequest, shared.ErrAPIRequest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			err := checkStatus(resp)
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d should map to %v, got %v", tt.status, tt.want, err)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
		if err := checkStatus(resp); err != nil {
			t.Errorf("2xx should not error: %v", err)
		}
	})
}
