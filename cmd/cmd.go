// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database path override",
			},
		},
		Action: r.SetupDatabase,
	}
}

// authCommand runs the OAuth2 login flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SpotifyAuth,
	}
}

// playlistsCommand previews the playlists an extraction would walk
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List the playlists an extraction would cover",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to list",
				Value: 30,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Playlists,
	}
}

// extractCommand runs the full library extraction
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract playlists, tracks, and artist genres into SQLite",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database path override",
			},
			&cli.IntFlag{
				Name:  "playlist-limit",
				Usage: "Playlists requested from the listing endpoint",
				Value: 30,
			},
			&cli.IntFlag{
				Name:  "page-limit",
				Usage: "Items per track page",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the run summary as JSON",
			},
			&cli.BoolFlag{
				Name:  "ui",
				Usage: "Show an interactive progress view",
			},
		},
		Action: r.Extract,
	}
}
