package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/auth"
	"github.com/desertthunder/spotdash/internal/repositories"
	"github.com/desertthunder/spotdash/internal/services"
	"github.com/desertthunder/spotdash/internal/session"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage, the session store, the auth controller and the API client are opened lazily by [Runner.open]
// so that setup commands work before a valid configuration exists.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	navigator  auth.Navigator
	logger     *log.Logger
	output     io.Writer

	kv         repositories.KeyValueStore
	db         *sql.DB
	events     *repositories.LoginEventRepository
	session    *session.Store
	controller *auth.Controller
	spotify    *services.SpotifyClient
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Navigator  auth.Navigator
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		navigator:  opts.Navigator,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, meCommand, playlistsCommand, albumsCommand, releasesCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config (unless one was injected) and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			r.config = shared.DefaultConfig()
		}
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// open validates the configuration and wires storage, session, controller and client. It is idempotent.
func (r *Runner) open(ctx context.Context) error {
	if r.controller != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	kv, db, err := repositories.Open(ctx, r.config)
	if err != nil {
		return err
	}
	r.kv = kv
	r.db = db

	r.session = session.New(kv, session.WithLogger(shared.WithLogger(r.logger, "component", "session")))
	r.spotify = services.NewSpotifyClient(r.session,
		services.WithBaseURL(r.config.Auth.APIBaseURL),
		services.WithHTTPClient(r.httpClient),
		services.WithRateLimit(r.config.Auth.RateLimit),
		services.WithLogger(shared.WithLogger(r.logger, "component", "api")),
	)

	opts := []auth.Option{
		auth.WithIdentityLoader(r.spotify),
		auth.WithHTTPClient(r.httpClient),
		auth.WithLogger(shared.WithLogger(r.logger, "component", "auth")),
	}
	if r.navigator != nil {
		opts = append(opts, auth.WithNavigator(r.navigator))
	}
	if db != nil {
		r.events = repositories.NewLoginEventRepository(db)
		opts = append(opts, auth.WithEventRecorder(r.events))
	}

	r.controller = auth.New(ctx, auth.ConfigFrom(r.config), r.session, opts...)
	r.logger.Debug("session opened", "backend", r.config.Storage.Backend, "state", r.controller.State())
	return nil
}

// Close releases the storage backend opened by [Runner.open]. The SQLite store owns db.
func (r *Runner) Close() error {
	if r.kv == nil {
		return nil
	}
	return r.kv.Close()
}

// SetLogger replaces the logger. Call before [Runner.open] so components pick it up.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
