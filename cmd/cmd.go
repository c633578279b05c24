// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command. Root flags are visible to every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotdash",
		Usage:   "Sign in to Spotify with PKCE and browse your library from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the authorization flow and session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with the authorization code flow (PKCE)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "callback",
				Usage: "Complete a pending login with the URL the browser was redirected to",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.AuthCallback,
			},
			{
				Name:   "guest",
				Usage:  "Start a guest session with the client credentials grant",
				Action: r.AuthGuest,
			},
			{
				Name:   "logout",
				Usage:  "Clear the session and stored tokens",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.IntFlag{
						Name:  "history",
						Usage: "Also list the most recent login events",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, json, csv)",
		Value:   "text",
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of items per page",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Index of the first item",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Follow pagination until every item is fetched",
		},
		formatFlag(),
	}
}

// meCommand prints the signed in user's profile
func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "Show the signed in user's profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Me,
	}
}

// playlistsCommand lists playlists for the current or another user
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List playlists",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "List another user's public playlists",
			},
		}, pageFlags()...),
		Action: r.Playlists,
	}
}

// albumsCommand lists the user's saved albums
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "albums",
		Usage:  "List saved albums",
		Flags:  pageFlags(),
		Action: r.Albums,
	}
}

// releasesCommand lists new album releases (works with guest sessions)
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "releases",
		Usage:  "List new album releases",
		Flags:  pageFlags(),
		Action: r.Releases,
	}
}

// apiCommand handles direct authenticated Web API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated Web API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a Web API path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIGet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive session view.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive session view",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/spotdash-tui.log",
			},
		},
		Action: r.TUI,
	}
}
