// Package ui implements the extraction progress view using bubbletea's Elm architecture.
//
// The [Model] runs one extraction in a background goroutine and renders its
// progress: a spinner while listing playlists, a progress bar as playlists
// commit, and a final summary with the library row counts. Progress updates
// flow through a channel from the ExtractEngine, providing non-blocking
// status reporting.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotx/internal/tasks"
)

// keyMap defines the [key.Binding] mapping for the progress view.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type progressUpdateMsg tasks.ProgressUpdate

type extractDoneMsg struct {
	result *tasks.ExtractResult
	err    error
}

// Model represents the extraction TUI state.
type Model struct {
	ctx    context.Context
	engine *tasks.ExtractEngine
	opts   tasks.ExtractOpts

	spinner      spinner.Model
	bar          progress.Model
	keys         keyMap
	progressChan chan tasks.ProgressUpdate
	update       tasks.ProgressUpdate
	committed    int
	total        int
	result       *tasks.ExtractResult
	err          error
	done         bool
}

// NewModel creates a progress view bound to an extraction run.
func NewModel(ctx context.Context, engine *tasks.ExtractEngine, opts tasks.ExtractOpts) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:     ctx,
		engine:  engine,
		opts:    opts,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		keys:    newKeyMap(),
	}
}

// Result exposes the finished run's tallies after the program exits.
func (m *Model) Result() (*tasks.ExtractResult, error) {
	return m.result, m.err
}

// Init starts the extraction goroutine and the spinner.
func (m *Model) Init() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan, m.opts)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-8, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.update = tasks.ProgressUpdate(msg)
		if m.update.Phase == tasks.CommitPlaylist {
			m.committed = m.update.Step
			m.total = m.update.Total
		}
		return m, m.waitForProgress()

	case extractDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the progress display.
func (m *Model) View() string {
	if m.done {
		return m.renderSummary()
	}

	title := styles.title.Render("Extracting Spotify library")
	bar := ""
	if m.total > 0 {
		bar = fmt.Sprintf("\n%s %d/%d playlists\n", m.bar.ViewAs(float64(m.committed)/float64(m.total)), m.committed, m.total)
	}
	help := styles.help.Render("q to quit")

	return fmt.Sprintf("%s\n%s %s\n%s\n%s", title, m.spinner.View(), m.update.Message, bar, help)
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return extractDoneMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSummary() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Extraction failed: %v\n", m.err))
	}
	if m.result == nil {
		return styles.err.Render("No result available\n")
	}

	title := styles.ok.Render("✓ Extraction complete")
	info := fmt.Sprintf(
		"\nPlaylists: %d\nTracks stored: %d\nSkipped items: %d\nArtist lookups: %d (%d without genres)\n",
		m.result.Playlists,
		m.result.Tracks,
		m.result.SkippedItems,
		m.result.ArtistLookups,
		m.result.ArtistFailures,
	)
	counts := fmt.Sprintf(
		"Library: %d artists, %d albums, %d tracks, %d playlists, %d memberships\n",
		m.result.Counts.Artists,
		m.result.Counts.Albums,
		m.result.Counts.Tracks,
		m.result.Counts.Playlists,
		m.result.Counts.PlaylistTracks,
	)

	return fmt.Sprintf("%s\n%s%s", title, info, counts)
}
