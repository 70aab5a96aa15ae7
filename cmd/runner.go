package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/models"
	"github.com/desertthunder/gmusic/internal/repositories"
	"github.com/desertthunder/gmusic/internal/resolver"
	"github.com/desertthunder/gmusic/internal/services"
	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	assets     resolver.AssetReader
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	Assets     resolver.AssetReader
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a Client, one is built from the config's credentials and [api] section.
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
	if opts.Assets == nil {
		opts.Assets = resolver.BundledAssets()
	}
	if opts.Client == nil {
		opts.Client = newClient(opts.Config, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		assets:     opts.Assets,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func newClient(config *shared.Config, logger *log.Logger) *services.Client {
	return services.NewClient(services.ClientOpts{
		BaseURL:        config.API.BaseURL,
		LoginURL:       config.API.LoginURL,
		HTTPClient:     &http.Client{Timeout: config.API.Timeout()},
		Logger:         logger,
		Credentials:    credentials(config),
		RateLimit:      config.API.RateLimit,
		MaxAuthRetries: config.API.MaxAuthRetries,
	})
}

func credentials(config *shared.Config) models.Credentials {
	return models.Credentials{Email: config.Credentials.Email, Password: config.Credentials.Password}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, resolveCommand, historyCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// openHistory opens the query log. With no database path configured it returns [shared.ErrMissingDatabase].
func (r *Runner) openHistory() (*repositories.QueryLogRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewQueryLogRepository(db), db, nil
}

// historyObservers returns the query log observer when history is enabled, plus a cleanup func.
func (r *Runner) historyObservers() ([]resolver.Observer, func()) {
	if r.config.Database.Path == "" {
		return nil, func() {}
	}

	repo, db, err := r.openHistory()
	if err != nil {
		r.logger.Warn("query history disabled", "error", err)
		return nil, func() {}
	}
	return []resolver.Observer{repo.Observer(r.logger)}, func() { db.Close() }
}

// newResolver builds a resolver that reports to sink, configured from the loaded config.
func (r *Runner) newResolver(sink resolver.ResultSink, observers ...resolver.Observer) (*resolver.Resolver, error) {
	settings := resolver.DefaultSettings
	if timeout := r.config.API.Timeout(); timeout > 0 {
		settings.Timeout = timeout
	}

	return resolver.New(resolver.Opts{
		Host: resolver.Host{
			Logger: r.logger,
			Assets: r.assets,
			Sink:   sink,
			Config: resolver.StaticConfig(credentials(r.config)),
		},
		Catalog:   r.client,
		Settings:  &settings,
		Observers: observers,
	})
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
