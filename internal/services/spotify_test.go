package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

// routeTripper serves canned responses keyed by URL substring.
type routeTripper struct {
	routes   map[string]*http.Response
	requests []string
}

func (rt *routeTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req.URL.String())
	for key, resp := range rt.routes {
		if strings.Contains(req.URL.String(), key) {
			return resp, nil
		}
	}
	return jsonResponse(http.StatusNotFound, `{}`, nil), nil
}

func jsonResponse(status int, body string, headers http.Header) *http.Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     headers,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// newTestService returns an authenticated service backed by the given transport.
func newTestService(t *testing.T, rt http.RoundTripper) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService("test_client_id", "test_client_secret", "")
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.httpClient = &http.Client{Transport: rt}
	return srv
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		srv, err := NewSpotifyService("test_client_id", "test_client_secret", "http://localhost:9090/callback")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		if _, err := NewSpotifyService("", "secret", ""); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if _, err := NewSpotifyService("id", "", ""); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default Redirect URI", func(t *testing.T) {
		srv, err := NewSpotifyService("id", "secret", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.config.RedirectURL != "http://localhost:8080/callback" {
			t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
		}
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService("test_client_id", "test_client_secret", "")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-read-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("OAuthenticate", func(t *testing.T) {
		srv, err := NewSpotifyService("id", "secret", "")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if err := srv.OAuthenticate(context.Background(), nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for nil token, got %v", err)
		}

		if err := srv.OAuthenticate(context.Background(), &oauth2.Token{AccessToken: "tok"}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if srv.token == nil || srv.token.AccessToken != "tok" {
			t.Error("expected token to be installed")
		}
	})
}

func TestSpotifyRequests(t *testing.T) {
	t.Run("Requires Authentication", func(t *testing.T) {
		srv, err := NewSpotifyService("id", "secret", "")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.CurrentUserPlaylists(context.Background(), 30); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("CurrentUserPlaylists", func(t *testing.T) {
		body := `{
			"items": [
				{"id": "p1", "name": "Road Trip", "owner": {"id": "u1", "display_name": "Sam"}, "tracks": {"total": 42}},
				{"id": "p2", "name": "Focus", "owner": {"id": "u1", "display_name": "Sam"}, "tracks": {"total": 7}}
			],
			"total": 64, "limit": 30, "offset": 0,
			"next": "https://api.spotify.com/v1/me/playlists?offset=30&limit=30"
		}`
		rt := &routeTripper{routes: map[string]*http.Response{"/me/playlists": jsonResponse(200, body, nil)}}
		srv := newTestService(t, rt)

		page, err := srv.CurrentUserPlaylists(context.Background(), 30)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(page.Items) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(page.Items))
		}
		if page.Total != 64 {
			t.Errorf("expected reported total 64, got %d", page.Total)
		}
		if page.Items[0].Owner != "Sam" {
			t.Errorf("expected owner display name, got %s", page.Items[0].Owner)
		}
		if page.Items[0].TrackCount != 42 {
			t.Errorf("expected declared track count 42, got %d", page.Items[0].TrackCount)
		}
		if !strings.Contains(rt.requests[0], "limit=30") {
			t.Errorf("expected bounded page size in request, got %s", rt.requests[0])
		}
	})

	t.Run("PlaylistItems With Null Track", func(t *testing.T) {
		body := `{
			"items": [
				{"added_at": "2024-01-01T00:00:00Z", "track": {
					"id": "t1", "name": "Song", "duration_ms": 180000, "explicit": true, "popularity": 55,
					"album": {"id": "al1", "name": "Album", "release_date": "1999-03"},
					"artists": [{"id": "a1", "name": "First"}, {"id": "a2", "name": "Second"}]
				}},
				{"added_at": "2024-01-02T00:00:00Z", "track": null}
			],
			"total": 2, "limit": 100, "offset": 0, "next": null
		}`
		rt := &routeTripper{routes: map[string]*http.Response{"/playlists/p1/tracks": jsonResponse(200, body, nil)}}
		srv := newTestService(t, rt)

		page, err := srv.PlaylistItems(context.Background(), "p1", 100)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(page.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(page.Items))
		}
		if page.Items[1].Track != nil {
			t.Error("expected nil track for null item")
		}
		if page.HasNext() {
			t.Error("expected no continuation for final page")
		}

		track := page.Items[0].Track
		if track == nil {
			t.Fatal("expected track to be decoded")
		}
		if track.Album.ReleaseDate != "1999-03" {
			t.Errorf("expected release date stored verbatim, got %s", track.Album.ReleaseDate)
		}

		primary, ok := track.PrimaryArtist()
		if !ok || primary.ID != "a1" {
			t.Errorf("expected first listed artist as primary, got %+v", primary)
		}
	})

	t.Run("NextTrackPage", func(t *testing.T) {
		nextURL := spotifyBaseURL + "/playlists/p1/tracks?offset=100&limit=100"
		body := `{"items": [{"added_at": "x", "track": {"id": "t9", "name": "Nine", "album": {"id": "al9"}, "artists": [{"id": "a9", "name": "N"}]}}], "total": 101, "next": null}`
		rt := &routeTripper{routes: map[string]*http.Response{"offset=100": jsonResponse(200, body, nil)}}
		srv := newTestService(t, rt)

		page, err := srv.NextTrackPage(context.Background(), &TrackPage{Next: nextURL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 1 || page.Items[0].Track.ID != "t9" {
			t.Errorf("expected continuation page to be decoded, got %+v", page)
		}

		if _, err := srv.NextTrackPage(context.Background(), &TrackPage{}); err == nil {
			t.Error("expected error for page without continuation")
		}
		if _, err := srv.NextTrackPage(context.Background(), &TrackPage{Next: "https://evil.example.com/x"}); err == nil {
			t.Error("expected error for continuation outside the API base URL")
		}
	})

	t.Run("Artist", func(t *testing.T) {
		body := `{"id": "a1", "name": "First", "genres": ["indie rock", "shoegaze"]}`
		rt := &routeTripper{routes: map[string]*http.Response{"/artists/a1": jsonResponse(200, body, nil)}}
		srv := newTestService(t, rt)

		artist, err := srv.Artist(context.Background(), "a1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(artist.Genres) != 2 || artist.Genres[0] != "indie rock" {
			t.Errorf("expected genre tags, got %v", artist.Genres)
		}

		if _, err := srv.Artist(context.Background(), ""); err == nil {
			t.Error("expected error for empty artist id")
		}
	})

	t.Run("Rate Limited Response", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Retry-After", "3")
		rt := &routeTripper{routes: map[string]*http.Response{"/artists/a1": jsonResponse(429, `{}`, headers)}}
		srv := newTestService(t, rt)

		_, err := srv.Artist(context.Background(), "a1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if !apiErr.Retryable() {
			t.Error("429 should be retryable")
		}
		if apiErr.RetryAfter != 3*time.Second {
			t.Errorf("expected Retry-After hint of 3s, got %s", apiErr.RetryAfter)
		}
	})

	t.Run("Forbidden Response", func(t *testing.T) {
		rt := &routeTripper{routes: map[string]*http.Response{"/artists/a1": jsonResponse(403, `{}`, nil)}}
		srv := newTestService(t, rt)

		_, err := srv.Artist(context.Background(), "a1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if !apiErr.Retryable() {
			t.Error("403 should be retryable")
		}
		if apiErr.RetryAfter != 0 {
			t.Errorf("expected no hint, got %s", apiErr.RetryAfter)
		}
	})

	t.Run("Server Error Is Not Retryable", func(t *testing.T) {
		rt := &routeTripper{routes: map[string]*http.Response{"/artists/a1": jsonResponse(500, `{}`, nil)}}
		srv := newTestService(t, rt)

		_, err := srv.Artist(context.Background(), "a1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Retryable() {
			t.Error("500 should not be retryable")
		}
	})

	t.Run("Unauthorized Maps To Token Expired", func(t *testing.T) {
		rt := &routeTripper{routes: map[string]*http.Response{"/me/playlists": jsonResponse(401, `{}`, nil)}}
		srv := newTestService(t, rt)

		if _, err := srv.CurrentUserPlaylists(context.Background(), 30); !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	t.Run("Seconds", func(t *testing.T) {
		if got := parseRetryAfter("7"); got != 7*time.Second {
			t.Errorf("expected 7s, got %s", got)
		}
	})

	t.Run("HTTP Date", func(t *testing.T) {
		when := time.Now().Add(30 * time.Second).UTC()
		got := parseRetryAfter(when.Format(http.TimeFormat))
		if got <= 0 || got > 30*time.Second {
			t.Errorf("expected positive duration up to 30s, got %s", got)
		}
	})

	t.Run("Absent Or Garbage", func(t *testing.T) {
		for _, value := range []string{"", "soon", "-3"} {
			if got := parseRetryAfter(value); got != 0 {
				t.Errorf("expected 0 for %q, got %s", value, got)
			}
		}
	})
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 429, RetryAfter: 2 * time.Second}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "2s") {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	plain := &APIError{StatusCode: 404}
	if want := fmt.Sprintf("spotify API error: status %d", 404); plain.Error() != want {
		t.Errorf("expected %q, got %q", want, plain.Error())
	}
}
