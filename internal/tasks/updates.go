package tasks

import (
	"fmt"

	"github.com/desertthunder/spotx/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListPlaylists Phase = iota
	FetchTracks
	EnrichArtists
	CommitPlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case ListPlaylists:
		return "list_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case EnrichArtists:
		return "enrich_artists"
	case CommitPlaylist:
		return "commit_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func listPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    1,
		Total:   1,
		Message: "Fetching playlists from Spotify...",
	}
}

func foundPlaylistsUpdate(count, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists (library reports %d)", count, total),
	}
}

func playlistStartUpdate(step, total int, pl services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d tracks)", step, total, pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func trackPageUpdate(step, total, page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] page %d, %d items so far", step, total, page, fetched),
	}
}

func enrichArtistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func commitUpdate(step, total int, name string, stored int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks stored)", step, total, name, stored),
	}
}

func doneUpdate(result *ExtractResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Extraction complete: %d playlists, %d tracks", result.Playlists, result.Tracks),
		Data:    result,
	}
}
