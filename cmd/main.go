package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	shared.LoadDotenv()
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	config.ApplyEnv()

	var spotifyService services.Service
	if config.Spotify.ClientID != "" && config.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(
			config.Spotify.ClientID,
			config.Spotify.ClientSecret,
			config.Spotify.RedirectURI,
		); err == nil {
			spotifyService = svc
		} else {
			logger.Warnf("failed to create Spotify service: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spotx",
		Usage:    "Extract your Spotify playlist library into SQLite",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
