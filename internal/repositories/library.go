package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotx/internal/models"
)

// LibraryRepository persists extracted entities with insert-or-ignore
// semantics: primary keys are the provider's identifiers, first-seen values
// win, and nothing is updated or deleted after the initial insert.
//
// Writes go through a caller-owned transaction so the pipeline can commit
// once per playlist.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new LibraryRepository with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Begin opens the transaction batching one playlist's writes.
func (r *LibraryRepository) Begin() (*sql.Tx, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertArtist writes an artist row unless its key is already present.
func (r *LibraryRepository) InsertArtist(tx *sql.Tx, artist models.Artist) error {
	if err := artist.Validate(); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO artists (artist_id, name, genres) VALUES (?, ?, ?)`
	if _, err := tx.Exec(query, artist.ID, artist.Name, artist.Genres); err != nil {
		return fmt.Errorf("failed to insert artist %s: %w", artist.ID, err)
	}
	return nil
}

// InsertAlbum writes an album row unless its key is already present.
//
// The artist row it references must have been inserted first.
func (r *LibraryRepository) InsertAlbum(tx *sql.Tx, album models.Album) error {
	if err := album.Validate(); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO albums (album_id, name, release_date, artist_id) VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(query, album.ID, album.Name, album.ReleaseDate, album.ArtistID); err != nil {
		return fmt.Errorf("failed to insert album %s: %w", album.ID, err)
	}
	return nil
}

// InsertTrack writes a track row unless its key is already present.
func (r *LibraryRepository) InsertTrack(tx *sql.Tx, track models.Track) error {
	if err := track.Validate(); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO tracks (track_id, name, album_id, popularity, duration_ms, explicit) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(query, track.ID, track.Name, track.AlbumID, track.Popularity, track.DurationMS, track.Explicit); err != nil {
		return fmt.Errorf("failed to insert track %s: %w", track.ID, err)
	}
	return nil
}

// InsertPlaylist writes a playlist row unless its key is already present.
func (r *LibraryRepository) InsertPlaylist(tx *sql.Tx, playlist models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO playlists (playlist_id, name, owner, num_tracks) VALUES (?, ?, ?, ?)`
	if _, err := tx.Exec(query, playlist.ID, playlist.Name, playlist.Owner, playlist.NumTracks); err != nil {
		return fmt.Errorf("failed to insert playlist %s: %w", playlist.ID, err)
	}
	return nil
}

// InsertPlaylistTrack writes a membership row unless the (playlist, track)
// pair is already present.
func (r *LibraryRepository) InsertPlaylistTrack(tx *sql.Tx, membership models.PlaylistTrack) error {
	if err := membership.Validate(); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`
	if _, err := tx.Exec(query, membership.PlaylistID, membership.TrackID); err != nil {
		return fmt.Errorf("failed to insert playlist_track (%s, %s): %w", membership.PlaylistID, membership.TrackID, err)
	}
	return nil
}

// LibraryCounts holds per-table row totals, used for the run summary.
type LibraryCounts struct {
	Artists        int `json:"artists"`
	Albums         int `json:"albums"`
	Tracks         int `json:"tracks"`
	Playlists      int `json:"playlists"`
	PlaylistTracks int `json:"playlist_tracks"`
}

// Counts reports the number of rows in each library table.
func (r *LibraryRepository) Counts() (LibraryCounts, error) {
	var counts LibraryCounts

	for table, target := range map[string]*int{
		"artists":         &counts.Artists,
		"albums":          &counts.Albums,
		"tracks":          &counts.Tracks,
		"playlists":       &counts.Playlists,
		"playlist_tracks": &counts.PlaylistTracks,
	} {
		if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(target); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}

	return counts, nil
}

// Artist reads back a stored artist row. Intended for tests and summaries,
// not for the extraction pass, which never reads from storage.
func (r *LibraryRepository) Artist(id string) (*models.Artist, error) {
	var artist models.Artist

	query := `SELECT artist_id, name, genres FROM artists WHERE artist_id = ?`
	err := r.db.QueryRow(query, id).Scan(&artist.ID, &artist.Name, &artist.Genres)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artist not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	return &artist, nil
}
