// Spotify API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// spotifyScopes is the compiled-in permission scope; it is not configurable.
var spotifyScopes = []string{
	"user-library-read",
	"playlist-read-private",
}

// APIError is a non-2xx response from the Spotify API, carrying the HTTP
// status and, for throttled requests, the server's Retry-After hint.
type APIError struct {
	StatusCode int
	RetryAfter time.Duration
	Body       string
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("spotify API error: status %d (retry after %s)", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
}

// Retryable reports whether the response is in the rate-limit/forbidden
// class that the retry policy handles locally.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusForbidden
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyTracksRef struct {
	Total int `json:"total"`
}

type spotifySimplePlaylist struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Owner  spotifyOwner     `json:"owner"`
	Tracks spotifyTracksRef `json:"tracks"`
}

type spotifyPagedPlaylists struct {
	Items  []spotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifyTrack struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Artists    []spotifyArtistRef `json:"artists"`
	Album      spotifyAlbum       `json:"album"`
	DurationMS int                `json:"duration_ms"`
	Explicit   bool               `json:"explicit"`
	Popularity int                `json:"popularity"`
}

// spotifyPlaylistItem is one entry of a playlist. Track is a pointer because
// local files and removed tracks come back with "track": null.
type spotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *spotifyTrack `json:"track"`
}

type spotifyPagedItems struct {
	Items  []spotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// SpotifyService implements [Service] and [OAuthService] for the Spotify Web API.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(clientID, clientSecret, redirectURI string) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}

	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// OAuthenticate installs the token and switches to an auto-refreshing client.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no access token", shared.ErrNotAuthenticated)
	}

	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// doRequest performs an authenticated GET against an absolute API URL and
// decodes the JSON response into result.
func (s *SpotifyService) doRequest(ctx context.Context, apiURL string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call OAuthenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d", shared.ErrTokenExpired, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(body),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseRetryAfter reads a Retry-After header value in seconds or HTTP-date form.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(value); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

// CurrentUserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) CurrentUserPlaylists(ctx context.Context, limit int) (*PlaylistPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("%s/me/playlists?limit=%d", spotifyBaseURL, limit)

	var page spotifyPagedPlaylists
	if err := s.doRequest(ctx, endpoint, &page); err != nil {
		return nil, err
	}

	result := &PlaylistPage{Total: page.Total}
	if page.Next != nil {
		result.Next = *page.Next
	}
	for _, sp := range page.Items {
		result.Items = append(result.Items, Playlist{
			ID:         sp.ID,
			Name:       sp.Name,
			Owner:      sp.Owner.DisplayName,
			TrackCount: sp.Tracks.Total,
		})
	}

	return result, nil
}

// PlaylistItems retrieves the first page of a playlist's items.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit int) (*TrackPage, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", spotifyBaseURL, url.PathEscape(playlistID), limit)
	return s.fetchTrackPage(ctx, endpoint)
}

// NextTrackPage follows a page's continuation URL.
func (s *SpotifyService) NextTrackPage(ctx context.Context, page *TrackPage) (*TrackPage, error) {
	if !page.HasNext() {
		return nil, fmt.Errorf("%w: page has no continuation", shared.ErrInvalidArgument)
	}
	if !strings.HasPrefix(page.Next, spotifyBaseURL) {
		return nil, fmt.Errorf("%w: unexpected continuation URL %q", shared.ErrInvalidArgument, page.Next)
	}

	return s.fetchTrackPage(ctx, page.Next)
}

func (s *SpotifyService) fetchTrackPage(ctx context.Context, apiURL string) (*TrackPage, error) {
	var page spotifyPagedItems
	if err := s.doRequest(ctx, apiURL, &page); err != nil {
		return nil, err
	}

	result := &TrackPage{Total: page.Total}
	if page.Next != nil {
		result.Next = *page.Next
	}
	for _, item := range page.Items {
		result.Items = append(result.Items, PlaylistItem{
			AddedAt: item.AddedAt,
			Track:   mapTrack(item.Track),
		})
	}

	return result, nil
}

func mapTrack(st *spotifyTrack) *Track {
	if st == nil {
		return nil
	}

	track := &Track{
		ID:         st.ID,
		Name:       st.Name,
		DurationMS: st.DurationMS,
		Popularity: st.Popularity,
		Explicit:   st.Explicit,
		Album: Album{
			ID:          st.Album.ID,
			Name:        st.Album.Name,
			ReleaseDate: st.Album.ReleaseDate,
		},
	}
	for _, ref := range st.Artists {
		track.Artists = append(track.Artists, ArtistRef{ID: ref.ID, Name: ref.Name})
	}

	return track
}

// Artist retrieves a single artist by ID, including genre tags.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*Artist, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("%s/artists/%s", spotifyBaseURL, url.PathEscape(artistID))

	var artist spotifyArtist
	if err := s.doRequest(ctx, endpoint, &artist); err != nil {
		return nil, err
	}

	return &Artist{ID: artist.ID, Name: artist.Name, Genres: artist.Genres}, nil
}
