// package tasks implements the playlist library extraction pipeline.
//
// The core abstraction is ExtractEngine, which walks the authenticated user's
// playlists, pages through each playlist's tracks, enriches every track's
// primary artist with genre tags, and persists the result one playlist
// transaction at a time. Progress updates are emitted via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/time/rate"
)

// Default page bounds, matching the provider's endpoint maxima for the
// listing sizes this tool requests.
const (
	DefaultPlaylistLimit = 30
	DefaultPageLimit     = 100
)

// pagePause is the minimum spacing between consecutive track page requests.
const pagePause = 500 * time.Millisecond

// ExtractOpts bounds a single extraction run.
type ExtractOpts struct {
	PlaylistLimit int // playlists requested from the single listing call
	PageLimit     int // items per track page
}

func (o ExtractOpts) withDefaults() ExtractOpts {
	if o.PlaylistLimit <= 0 {
		o.PlaylistLimit = DefaultPlaylistLimit
	}
	if o.PageLimit <= 0 {
		o.PageLimit = DefaultPageLimit
	}
	return o
}

// ExtractResult contains the tallies from a full extraction run.
type ExtractResult struct {
	Playlists      int // playlists committed
	TotalReported  int // playlists the provider reports in the library
	Tracks         int // track items written to storage
	SkippedItems   int // playlist entries without an underlying track object
	ArtistLookups  int // single-artist fetches attempted
	ArtistFailures int // lookups that ended without genre data

	Counts repositories.LibraryCounts // row totals after the run
}

// ExtractEngine walks a Spotify library into local storage.
type ExtractEngine struct {
	spotify services.Service
	library *repositories.LibraryRepository
	logger  *log.Logger
	limiter *rate.Limiter
}

// NewExtractEngine creates an ExtractEngine with the provided dependencies.
// A nil limiter disables inter-page pacing; the CLI passes one spaced at
// pagePause.
func NewExtractEngine(spotify services.Service, library *repositories.LibraryRepository, logger *log.Logger, limiter *rate.Limiter) *ExtractEngine {
	return &ExtractEngine{
		spotify: spotify,
		library: library,
		logger:  logger,
		limiter: limiter,
	}
}

// NewPageLimiter returns the rate limiter used to space track page requests.
func NewPageLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(pagePause), 1)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExtractEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *ExtractEngine) pause(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// Run performs a full extraction: one bounded playlist listing, then per
// playlist a paginated track walk with artist genre enrichment, committed
// one playlist transaction at a time.
//
// A playlist whose track paging stalls on rate limiting keeps the pages
// fetched so far; the partial playlist is committed and the walk moves on.
func (e *ExtractEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts ExtractOpts) (*ExtractResult, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library repository not initialized", shared.ErrServiceUnavailable)
	}

	opts = opts.withDefaults()
	result := &ExtractResult{}

	e.sendProgress(progress, listPlaylistsUpdate())

	listing, err := services.FetchWithRetry(ctx, e.logger, services.DefaultMaxAttempts, func(ctx context.Context) (*services.PlaylistPage, error) {
		return e.spotify.CurrentUserPlaylists(ctx, opts.PlaylistLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list playlists: %w", shared.ErrAPIRequest, err)
	}
	if listing.IsExhausted() {
		// Nothing to walk; the run ends cleanly with empty tallies.
		e.logger.Errorf("playlist listing kept rate limiting, giving up")
		e.sendProgress(progress, doneUpdate(result))
		return result, nil
	}

	page := listing.Value()
	result.TotalReported = page.Total
	total := len(page.Items)
	e.sendProgress(progress, foundPlaylistsUpdate(total, page.Total))
	e.logger.Infof("found %d playlists (library reports %d)", total, page.Total)

	for i, pl := range page.Items {
		stored, err := e.extractPlaylist(ctx, progress, result, pl, i+1, total, opts)
		if err != nil {
			return result, err
		}
		result.Playlists++
		result.Tracks += stored
		e.sendProgress(progress, commitUpdate(i+1, total, pl.Name, stored))
	}

	if counts, err := e.library.Counts(); err == nil {
		result.Counts = counts
	} else {
		e.logger.Warnf("failed to read library counts: %v", err)
	}

	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// extractPlaylist walks one playlist's pages inside a single transaction and
// commits it. Returns the number of track rows written.
func (e *ExtractEngine) extractPlaylist(ctx context.Context, progress chan<- ProgressUpdate, result *ExtractResult, pl services.Playlist, step, total int, opts ExtractOpts) (int, error) {
	e.sendProgress(progress, playlistStartUpdate(step, total, pl))
	e.logger.Infof("extracting playlist %q (%d tracks)", pl.Name, pl.TrackCount)

	tx, err := e.library.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = e.library.InsertPlaylist(tx, models.Playlist{
		ID:        pl.ID,
		Name:      pl.Name,
		Owner:     pl.Owner,
		NumTracks: pl.TrackCount,
	})
	if err != nil {
		return 0, err
	}

	stored := 0
	fetched := 0
	pageNum := 0

	fetch := func(ctx context.Context) (*services.TrackPage, error) {
		return e.spotify.PlaylistItems(ctx, pl.ID, opts.PageLimit)
	}

	for {
		page, exhausted, err := e.fetchPage(ctx, fetch)
		if err != nil {
			return 0, err
		}
		if exhausted {
			e.logger.Warnf("playlist %q: giving up on further pages, keeping %d items", pl.Name, fetched)
			break
		}

		pageNum++
		fetched += len(page.Items)
		e.sendProgress(progress, trackPageUpdate(step, total, pageNum, fetched))

		for _, item := range page.Items {
			if item.Track == nil {
				result.SkippedItems++
				continue
			}
			if _, ok := item.Track.PrimaryArtist(); !ok {
				e.logger.Warnf("track %s has no artist credits, skipping", item.Track.ID)
				result.SkippedItems++
				continue
			}
			if err := e.storeTrack(ctx, progress, result, tx, pl.ID, item.Track); err != nil {
				return 0, err
			}
			stored++
		}

		if !page.HasNext() {
			break
		}

		if err := e.pause(ctx); err != nil {
			return 0, err
		}

		current := page
		fetch = func(ctx context.Context) (*services.TrackPage, error) {
			return e.spotify.NextTrackPage(ctx, current)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit playlist %s: %w", pl.ID, err)
	}
	return stored, nil
}

// fetchPage runs one page fetch through the retry wrapper. On exhaustion it
// returns the zero page with exhausted set so the caller can keep partial
// results.
func (e *ExtractEngine) fetchPage(ctx context.Context, fn func(context.Context) (*services.TrackPage, error)) (*services.TrackPage, bool, error) {
	outcome, err := services.FetchWithRetry(ctx, e.logger, services.DefaultMaxAttempts, fn)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to fetch track page: %w", shared.ErrAPIRequest, err)
	}
	if outcome.IsExhausted() {
		return nil, true, nil
	}
	return outcome.Value(), false, nil
}

// storeTrack persists one track with its album, primary artist, and playlist
// membership, in foreign key order.
func (e *ExtractEngine) storeTrack(ctx context.Context, progress chan<- ProgressUpdate, result *ExtractResult, tx *sql.Tx, playlistID string, track *services.Track) error {
	primary, _ := track.PrimaryArtist()

	genres, err := e.artistGenres(ctx, progress, result, primary)
	if err != nil {
		return err
	}

	if err := e.library.InsertArtist(tx, models.Artist{
		ID:     primary.ID,
		Name:   primary.Name,
		Genres: genres,
	}); err != nil {
		return err
	}

	if err := e.library.InsertAlbum(tx, models.Album{
		ID:          track.Album.ID,
		Name:        track.Album.Name,
		ReleaseDate: track.Album.ReleaseDate,
		ArtistID:    primary.ID,
	}); err != nil {
		return err
	}

	if err := e.library.InsertTrack(tx, models.Track{
		ID:         track.ID,
		Name:       track.Name,
		AlbumID:    track.Album.ID,
		Popularity: track.Popularity,
		DurationMS: track.DurationMS,
		Explicit:   track.Explicit,
	}); err != nil {
		return err
	}

	return e.library.InsertPlaylistTrack(tx, models.PlaylistTrack{
		PlaylistID: playlistID,
		TrackID:    track.ID,
	})
}

// artistGenres resolves an artist's genre tags, joined with ",". Retry
// exhaustion degrades to the empty string; any other lookup error
// propagates and aborts the run.
func (e *ExtractEngine) artistGenres(ctx context.Context, progress chan<- ProgressUpdate, result *ExtractResult, ref services.ArtistRef) (string, error) {
	if ref.ID == "" {
		return "", nil
	}

	result.ArtistLookups++
	e.sendProgress(progress, enrichArtistUpdate(result.ArtistLookups, 0, ref.Name))

	outcome, err := services.FetchWithRetry(ctx, e.logger, services.DefaultMaxAttempts, func(ctx context.Context) (*services.Artist, error) {
		return e.spotify.Artist(ctx, ref.ID)
	})
	if err != nil {
		result.ArtistFailures++
		return "", fmt.Errorf("%w: failed to fetch artist %s: %w", shared.ErrAPIRequest, ref.ID, err)
	}
	if outcome.IsExhausted() {
		result.ArtistFailures++
		e.logger.Warnf("artist %s lookup kept rate limiting, storing empty genres", ref.ID)
		return "", nil
	}

	return strings.Join(outcome.Value().Genres, ","), nil
}
