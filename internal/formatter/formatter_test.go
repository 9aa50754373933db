package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/tasks"
)

func sampleResult() *tasks.ExtractResult {
	return &tasks.ExtractResult{
		Playlists:      2,
		TotalReported:  5,
		Tracks:         40,
		SkippedItems:   1,
		ArtistLookups:  40,
		ArtistFailures: 3,
		Counts: repositories.LibraryCounts{
			Artists:        12,
			Albums:         20,
			Tracks:         38,
			Playlists:      2,
			PlaylistTracks: 40,
		},
	}
}

func TestFormatSummary(t *testing.T) {
	t.Run("includes tallies and library totals", func(t *testing.T) {
		out := FormatSummary(sampleResult())

		for _, want := range []string{
			"Playlists processed: 2 (library reports 5)",
			"Tracks stored:       40",
			"Skipped items:       1",
			"(3 without genres)",
			"playlist_tracks: 40",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected summary to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("omits zero-valued caveats", func(t *testing.T) {
		result := sampleResult()
		result.SkippedItems = 0
		result.ArtistFailures = 0
		result.TotalReported = 2

		out := FormatSummary(result)
		if strings.Contains(out, "Skipped items") {
			t.Error("expected no skipped items line")
		}
		if strings.Contains(out, "without genres") {
			t.Error("expected no genre failure caveat")
		}
		if strings.Contains(out, "library reports") {
			t.Error("expected no library reports caveat")
		}
	})
}

func TestSummaryJSON(t *testing.T) {
	data, err := SummaryJSON(sampleResult())
	if err != nil {
		t.Fatalf("failed to marshal summary: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded["tracks"].(float64) != 40 {
		t.Errorf("expected tracks 40, got %v", decoded["tracks"])
	}
	library, ok := decoded["library"].(map[string]any)
	if !ok {
		t.Fatal("expected nested library object")
	}
	if library["playlist_tracks"].(float64) != 40 {
		t.Errorf("expected playlist_tracks 40, got %v", library["playlist_tracks"])
	}
}

func TestFormatPlaylists(t *testing.T) {
	page := &services.PlaylistPage{
		Items: []services.Playlist{
			{ID: "p1", Name: "Focus", Owner: "casey", TrackCount: 12},
			{ID: "p2", Name: "Gym", Owner: "casey", TrackCount: 30},
		},
		Total: 7,
	}

	out := FormatPlaylists(page)
	if !strings.Contains(out, "Playlists: 2 of 7") {
		t.Errorf("expected truncation note, got:\n%s", out)
	}
	if !strings.Contains(out, "1. Focus - casey (12 tracks)") {
		t.Errorf("expected numbered entry, got:\n%s", out)
	}
}
