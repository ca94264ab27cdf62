package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzee/internal/formatter"
	"github.com/desertthunder/muzee/internal/server"
	"github.com/desertthunder/muzee/internal/services"
	"github.com/desertthunder/muzee/internal/session"
	"github.com/desertthunder/muzee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Navigator is a [services.Navigator] whose current path the CLI sets before each command.
type Navigator interface {
	services.Navigator
	SetPath(path string)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.MuzeeAPI
	navigator  Navigator
	history    *session.HistoryRepository
	palette    *formatter.Palette
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB

	// callbackAddr is the bound address of the token capture server while auth login runs.
	callbackAddr string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.MuzeeAPI
	Navigator  Navigator
	History    *session.HistoryRepository
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
//
// Without an API the runner talks to config.API.BaseURL with an in-memory session.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Navigator == nil {
		opts.Navigator = services.NewBrowserNavigator("/")
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		navigator:  opts.Navigator,
		history:    opts.History,
		palette:    formatter.DefaultPalette(),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		api:        opts.API,
	}
	if r.api == nil {
		r.api = r.newAPI(session.New(session.NewMemoryStore(), r.config.API.TokenKey))
	}
	return r
}

func (r *Runner) newAPI(sess *session.Session) *services.MuzeeAPI {
	return services.NewMuzeeAPI(r.config.API.BaseURL, services.MuzeeOptions{
		HTTPClient: r.httpClient,
		Session:    sess,
		Navigator:  r.navigator,
		Logger:     r.logger,
		Timezone:   r.config.Timezone,
	})
}

// configure loads the config file and opens the durable session store. It runs before every command.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("log-file"); path != "" {
		logger, err := shared.NewFileLogger(path)
		if err != nil {
			return ctx, err
		}
		r.logger = logger
	}
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	sess := session.New(session.NewMemoryStore(), r.config.API.TokenKey)
	if db, err := shared.OpenDatabase(r.config.Database); err != nil {
		r.logger.Warn("session store unavailable, token will not persist", "error", err)
	} else {
		r.db = db
		r.history = session.NewHistoryRepository(db)
		sess = session.New(session.NewSQLiteStore(db), r.config.API.TokenKey)
	}

	r.api = r.newAPI(sess)
	return ctx, nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, statusCommand, playlistCommand, featureCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// at records the in-app path a command represents, so a 401 knows where to come back to.
func (r *Runner) at(path string) {
	r.navigator.SetPath(path)
}

// present writes a successful payload with render (or as JSON) and turns any other outcome into an error.
func (r *Runner) present(out *services.Outcome, useJSON bool, render func(any) string) error {
	if !out.OK() {
		r.writePlain("%s", r.palette.RenderOutcome(out))
		if out.Kind == services.Unauthorized {
			if r.api.Session().Disabled() {
				r.writePlain("Login redirect started. Run 'muzee auth login' to capture the new token.\n")
			} else {
				r.writePlain("Run 'muzee auth login' to sign in again.\n")
			}
		}
		return out.Error()
	}

	if useJSON {
		return r.writeJSON(out.Payload, true)
	}
	return r.writePlain("%s", render(out.Payload))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// serveTokenCapture starts the token capture server and waits until it is listening.
func (r *Runner) serveTokenCapture(ctx context.Context, h *server.TokenHandler) (<-chan error, error) {
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(h)

	ready := make(chan string, 1)
	errs := make(chan error, 1)
	go func() { errs <- server.Serve(ctx, r.config.Server.Addr(), router, ready) }()

	select {
	case r.callbackAddr = <-ready:
		r.logger.Info("token capture server listening", "addr", r.callbackAddr)
		return errs, nil
	case err := <-errs:
		if err == nil {
			err = errors.New("server stopped before listening")
		}
		return nil, err
	}
}
