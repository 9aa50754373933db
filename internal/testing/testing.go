// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spotx/internal/services"
)

// MockService is a scripted test double for [services.Service]. Track pages
// are keyed by playlist ID; continuation pages are looked up by their Next
// URL so multi-page playlists can be scripted end to end.
type MockService struct {
	Playlists  *services.PlaylistPage
	TrackPages map[string]*services.TrackPage // first page per playlist ID
	NextPages  map[string]*services.TrackPage // continuation pages keyed by Next URL
	Artists    map[string]*services.Artist

	PlaylistsErr error
	TracksErr    error
	NextErr      error
	ArtistErr    error

	ArtistCalls []string
	PageCalls   int
}

func (m *MockService) CurrentUserPlaylists(ctx context.Context, limit int) (*services.PlaylistPage, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	if m.Playlists == nil {
		return &services.PlaylistPage{}, nil
	}
	return m.Playlists, nil
}

func (m *MockService) PlaylistItems(ctx context.Context, playlistID string, limit int) (*services.TrackPage, error) {
	m.PageCalls++
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	page, ok := m.TrackPages[playlistID]
	if !ok {
		return nil, fmt.Errorf("no scripted pages for playlist %s", playlistID)
	}
	return page, nil
}

func (m *MockService) NextTrackPage(ctx context.Context, page *services.TrackPage) (*services.TrackPage, error) {
	m.PageCalls++
	if m.NextErr != nil {
		return nil, m.NextErr
	}
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	next, ok := m.NextPages[page.Next]
	if !ok {
		return nil, fmt.Errorf("no scripted continuation for %s", page.Next)
	}
	return next, nil
}

func (m *MockService) Artist(ctx context.Context, artistID string) (*services.Artist, error) {
	m.ArtistCalls = append(m.ArtistCalls, artistID)
	if m.ArtistErr != nil {
		return nil, m.ArtistErr
	}
	artist, ok := m.Artists[artistID]
	if !ok {
		return nil, fmt.Errorf("no scripted artist %s", artistID)
	}
	return artist, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
