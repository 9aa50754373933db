package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/spotx/internal/shared"
)

func TestValidate(t *testing.T) {
	t.Run("Artist", func(t *testing.T) {
		if err := (Artist{ID: "a1", Name: "Artist"}).Validate(); err != nil {
			t.Errorf("expected valid artist, got %v", err)
		}

		err := (Artist{Name: "No ID"}).Validate()
		if !errors.Is(err, shared.ErrInvalidModel) {
			t.Errorf("expected ErrInvalidModel, got %v", err)
		}
	})

	t.Run("Album", func(t *testing.T) {
		album := Album{ID: "al1", Name: "Album", ReleaseDate: "1999", ArtistID: "a1"}
		if err := album.Validate(); err != nil {
			t.Errorf("expected valid album, got %v", err)
		}

		if err := (Album{ID: "al1"}).Validate(); err == nil {
			t.Error("expected error for missing artist reference")
		}
		if err := (Album{ArtistID: "a1"}).Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("Track", func(t *testing.T) {
		track := Track{ID: "t1", Name: "Track", AlbumID: "al1", Popularity: 50, DurationMS: 180000}
		if err := track.Validate(); err != nil {
			t.Errorf("expected valid track, got %v", err)
		}

		if err := (Track{ID: "t1"}).Validate(); err == nil {
			t.Error("expected error for missing album reference")
		}

		track.Popularity = 101
		if err := track.Validate(); err == nil {
			t.Error("expected error for popularity out of range")
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		if err := (Playlist{ID: "p1", Name: "Mix", Owner: "me", NumTracks: 12}).Validate(); err != nil {
			t.Errorf("expected valid playlist, got %v", err)
		}
		if err := (Playlist{}).Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("PlaylistTrack", func(t *testing.T) {
		if err := (PlaylistTrack{PlaylistID: "p1", TrackID: "t1"}).Validate(); err != nil {
			t.Errorf("expected valid membership, got %v", err)
		}
		if err := (PlaylistTrack{PlaylistID: "p1"}).Validate(); err == nil {
			t.Error("expected error for missing track id")
		}
	})
}
