// package formatter renders extraction results for terminal and JSON output
package formatter

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
)

// FormatSummary renders a finished run as plain text.
func FormatSummary(result *tasks.ExtractResult) string {
	var buf bytes.Buffer

	buf.WriteString("Extraction complete\n\n")
	buf.WriteString(fmt.Sprintf("Playlists processed: %d", result.Playlists))
	if result.TotalReported > result.Playlists {
		buf.WriteString(fmt.Sprintf(" (library reports %d)", result.TotalReported))
	}
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("Tracks stored:       %d\n", result.Tracks))
	if result.SkippedItems > 0 {
		buf.WriteString(fmt.Sprintf("Skipped items:       %d\n", result.SkippedItems))
	}
	buf.WriteString(fmt.Sprintf("Artist lookups:      %d", result.ArtistLookups))
	if result.ArtistFailures > 0 {
		buf.WriteString(fmt.Sprintf(" (%d without genres)", result.ArtistFailures))
	}
	buf.WriteString("\n\n")

	buf.WriteString("Library totals\n")
	buf.WriteString(fmt.Sprintf("  artists:         %d\n", result.Counts.Artists))
	buf.WriteString(fmt.Sprintf("  albums:          %d\n", result.Counts.Albums))
	buf.WriteString(fmt.Sprintf("  tracks:          %d\n", result.Counts.Tracks))
	buf.WriteString(fmt.Sprintf("  playlists:       %d\n", result.Counts.Playlists))
	buf.WriteString(fmt.Sprintf("  playlist_tracks: %d\n", result.Counts.PlaylistTracks))

	return buf.String()
}

// summaryPayload is the JSON shape for --json output.
type summaryPayload struct {
	Playlists      int                       `json:"playlists"`
	TotalReported  int                       `json:"total_reported"`
	Tracks         int                       `json:"tracks"`
	SkippedItems   int                       `json:"skipped_items"`
	ArtistLookups  int                       `json:"artist_lookups"`
	ArtistFailures int                       `json:"artist_failures"`
	Library        repositoriesCountsPayload `json:"library"`
}

type repositoriesCountsPayload struct {
	Artists        int `json:"artists"`
	Albums         int `json:"albums"`
	Tracks         int `json:"tracks"`
	Playlists      int `json:"playlists"`
	PlaylistTracks int `json:"playlist_tracks"`
}

// SummaryJSON renders a finished run as indented JSON.
func SummaryJSON(result *tasks.ExtractResult) ([]byte, error) {
	payload := summaryPayload{
		Playlists:      result.Playlists,
		TotalReported:  result.TotalReported,
		Tracks:         result.Tracks,
		SkippedItems:   result.SkippedItems,
		ArtistLookups:  result.ArtistLookups,
		ArtistFailures: result.ArtistFailures,
		Library: repositoriesCountsPayload{
			Artists:        result.Counts.Artists,
			Albums:         result.Counts.Albums,
			Tracks:         result.Counts.Tracks,
			Playlists:      result.Counts.Playlists,
			PlaylistTracks: result.Counts.PlaylistTracks,
		},
	}
	return shared.MarshalJSON(payload, true)
}

// FormatPlaylists renders a playlist listing as numbered plain text.
func FormatPlaylists(page *services.PlaylistPage) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlists: %d", len(page.Items)))
	if page.Total > len(page.Items) {
		buf.WriteString(fmt.Sprintf(" of %d", page.Total))
	}
	buf.WriteString("\n\n")

	for i, pl := range page.Items {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%d tracks)\n", i+1, pl.Name, pl.Owner, pl.TrackCount))
	}

	return buf.String()
}
