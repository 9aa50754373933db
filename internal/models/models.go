// package models defines the data model for the extracted Spotify library
package models

import (
	"fmt"

	"github.com/desertthunder/spotx/internal/shared"
)

// Artist is a track's primary artist, created on first sighting.
//
// Genres holds the artist's genre tags joined with commas; an empty string
// means the lookup returned no tags or was skipped after retry exhaustion.
type Artist struct {
	ID     string `json:"artist_id"`
	Name   string `json:"name"`
	Genres string `json:"genres"`
}

// Validate checks that the artist carries a primary key.
func (a Artist) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: artist missing id", shared.ErrInvalidModel)
	}
	return nil
}

// Album references the track's primary artist, which is not necessarily the
// album's own artist of record. ReleaseDate is the provider's raw string and
// may be a year, a year-month, or a full date.
type Album struct {
	ID          string `json:"album_id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	ArtistID    string `json:"artist_id"`
}

// Validate checks the album's primary key and artist reference.
func (a Album) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: album missing id", shared.ErrInvalidModel)
	}
	if a.ArtistID == "" {
		return fmt.Errorf("%w: album %s missing artist reference", shared.ErrInvalidModel, a.ID)
	}
	return nil
}

// Track is a single song referencing the album it was filed under.
type Track struct {
	ID         string `json:"track_id"`
	Name       string `json:"name"`
	AlbumID    string `json:"album_id"`
	Popularity int    `json:"popularity"`
	DurationMS int    `json:"duration_ms"`
	Explicit   bool   `json:"explicit"`
}

// Validate checks the track's primary key, album reference and popularity range.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: track missing id", shared.ErrInvalidModel)
	}
	if t.AlbumID == "" {
		return fmt.Errorf("%w: track %s missing album reference", shared.ErrInvalidModel, t.ID)
	}
	if t.Popularity < 0 || t.Popularity > 100 {
		return fmt.Errorf("%w: track %s popularity %d out of range", shared.ErrInvalidModel, t.ID, t.Popularity)
	}
	return nil
}

// Playlist records a playlist's metadata as reported at fetch time.
//
// NumTracks is the provider's declared total and may drift from the number
// of membership rows actually retrieved.
type Playlist struct {
	ID        string `json:"playlist_id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	NumTracks int    `json:"num_tracks"`
}

// Validate checks that the playlist carries a primary key.
func (p Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: playlist missing id", shared.ErrInvalidModel)
	}
	return nil
}

// PlaylistTrack is the many-to-many membership relation between playlists
// and tracks, keyed by the (playlist, track) pair.
type PlaylistTrack struct {
	PlaylistID string `json:"playlist_id"`
	TrackID    string `json:"track_id"`
}

// Validate checks both halves of the composite key.
func (pt PlaylistTrack) Validate() error {
	if pt.PlaylistID == "" || pt.TrackID == "" {
		return fmt.Errorf("%w: playlist_track missing key", shared.ErrInvalidModel)
	}
	return nil
}
