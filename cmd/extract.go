package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Playlists lists the playlists one listing call would return, as a preview
// of what extract would walk.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	r.resolveConfig(cmd)

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	limit := cmd.Int("limit")
	r.logger.Infof("listing spotify playlists with limit %v", limit)

	page, err := r.spotify.CurrentUserPlaylists(ctx, limit)
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return authErr
			}
			if page, err = r.spotify.CurrentUserPlaylists(ctx, limit); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", formatter.FormatPlaylists(page))
}

// Extract runs the full library extraction into SQLite.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = config.Database.Path
	}

	r.logger.Info("opening database", "path", dbPath)
	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := r.logger
	if cmd.Bool("ui") {
		// log lines would corrupt the interactive view
		if fileLogger, err := shared.NewFileLogger("spotx.log"); err == nil {
			logger = fileLogger
		} else {
			r.logger.Warnf("failed to open log file: %v", err)
		}
	}

	library := repositories.NewLibraryRepository(db)
	engine := tasks.NewExtractEngine(r.spotify, library, logger, tasks.NewPageLimiter())
	opts := tasks.ExtractOpts{
		PlaylistLimit: cmd.Int("playlist-limit"),
		PageLimit:     cmd.Int("page-limit"),
	}

	var result *tasks.ExtractResult
	if cmd.Bool("ui") {
		result, err = r.runWithUI(ctx, engine, opts)
	} else {
		result, err = r.runPlain(ctx, engine, opts, cmd)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.SummaryJSON(result)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		return r.writePlain("%s\n", data)
	}

	return r.writePlain("\n%s", formatter.FormatSummary(result))
}

// runPlain drives the engine while echoing progress messages to the output
// writer. A token expiry surfaced by the first listing call triggers one
// reauthorization and retry.
func (r *Runner) runPlain(ctx context.Context, engine *tasks.ExtractEngine, opts tasks.ExtractOpts, cmd *cli.Command) (*tasks.ExtractResult, error) {
	run := func() (*tasks.ExtractResult, error) {
		progress := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})

		go func() {
			for update := range progress {
				r.writePlain("%s\n", update.Message)
			}
			close(done)
		}()

		result, err := engine.Run(ctx, progress, opts)
		close(progress)
		<-done
		return result, err
	}

	result, err := run()
	if err != nil {
		if reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return nil, authErr
			}
			return run()
		}
		return nil, err
	}
	return result, nil
}

// runWithUI drives the engine behind the bubbletea progress view.
func (r *Runner) runWithUI(ctx context.Context, engine *tasks.ExtractEngine, opts tasks.ExtractOpts) (*tasks.ExtractResult, error) {
	model := ui.NewModel(ctx, engine, opts)
	program := tea.NewProgram(model)

	if _, err := program.Run(); err != nil {
		return nil, fmt.Errorf("failed to run progress view: %w", err)
	}

	result, err := model.Result()
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("extraction did not complete")
	}
	return result, nil
}
