package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the read-only provider surface the extraction pipeline
// consumes: playlist listing, paginated track listing with continuation,
// and single-artist lookup.
type Service interface {
	// CurrentUserPlaylists retrieves one page of the authenticated user's
	// playlists, bounded by limit.
	CurrentUserPlaylists(ctx context.Context, limit int) (*PlaylistPage, error)

	// PlaylistItems retrieves the first page of items in a playlist, bounded by limit.
	PlaylistItems(ctx context.Context, playlistID string, limit int) (*TrackPage, error)

	// NextTrackPage follows a page's continuation URL. Callers must only pass
	// pages whose HasNext reports true.
	NextTrackPage(ctx context.Context, page *TrackPage) (*TrackPage, error)

	// Artist retrieves a single artist by ID, including genre tags.
	Artist(ctx context.Context, artistID string) (*Artist, error)

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// OAuthService extends Service for providers authenticated with OAuth2
// authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login with the given state token.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying [oauth2.Config] for the callback exchange.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously obtained token on the service.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// PlaylistPage is one page of the user's playlist listing.
type PlaylistPage struct {
	Items []Playlist
	Total int // total playlists the provider reports, which may exceed len(Items)
	Next  string
}

// Playlist is a playlist summary as returned by the listing endpoint.
type Playlist struct {
	ID         string
	Name       string
	Owner      string
	TrackCount int // declared total at fetch time
}

// TrackPage is one page of a playlist's items with its continuation URL.
type TrackPage struct {
	Items []PlaylistItem
	Total int
	Next  string
}

// HasNext reports whether a continuation page exists.
func (p *TrackPage) HasNext() bool {
	return p != nil && p.Next != ""
}

// PlaylistItem is a playlist entry. Track is nil for items without an
// underlying track object (local files, removed tracks).
type PlaylistItem struct {
	AddedAt string
	Track   *Track
}

// Track is a full track object from the provider.
type Track struct {
	ID         string
	Name       string
	DurationMS int
	Popularity int
	Explicit   bool
	Album      Album
	Artists    []ArtistRef
}

// PrimaryArtist returns the first listed artist, the one used for
// denormalization. Secondary artists are deliberately dropped.
func (t *Track) PrimaryArtist() (ArtistRef, bool) {
	if t == nil || len(t.Artists) == 0 {
		return ArtistRef{}, false
	}
	return t.Artists[0], true
}

// Album is the album a track is filed under.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string // provider-defined granularity, stored verbatim
}

// ArtistRef is the artist summary embedded in a track object; it carries no genres.
type ArtistRef struct {
	ID   string
	Name string
}

// Artist is a full artist object from the single-artist endpoint.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}
