package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/config"
	"github.com/dyike/WealthGo/internal/api"
	"github.com/dyike/WealthGo/internal/chat"
	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/logging"
	"github.com/dyike/WealthGo/internal/storage"
)

// App is what every command runs against.
type App struct {
	Manager *config.Manager
	Config  config.Config
	Logger  *zap.Logger
	API     *api.Client
	Out     io.Writer

	closers []func() error
}

type appOptions struct {
	// logToFile keeps zap off the terminal while the TUI owns it.
	logToFile bool
}

func newApp(cmd *cobra.Command, opts appOptions) (*App, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	debug, _ := flags.GetBool("debug")
	backend, _ := flags.GetString("backend")

	managerOpts := []config.ManagerOption{config.WithInitialConfig(config.DefaultConfig())}
	if strings.TrimSpace(configPath) != "" {
		managerOpts = append(managerOpts, config.WithConfigPath(configPath))
	}
	manager, err := config.NewManager(managerOpts...)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	cfg := manager.Get()
	cfg.ApplyEnv()
	if debug {
		cfg.Debug = true
	}
	if strings.TrimSpace(backend) != "" {
		cfg.BackendURL = strings.TrimRight(strings.TrimSpace(backend), "/")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", manager.Path(), err)
	}

	app := &App{
		Manager: manager,
		Config:  cfg,
		Out:     cmd.OutOrStdout(),
	}
	if opts.logToFile {
		logger, closer, err := logging.NewFile(cfg)
		if err != nil {
			return nil, err
		}
		app.Logger = logger
		app.closers = append(app.closers, closer)
	} else {
		logger, err := logging.New(cfg, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		app.Logger = logger
		app.closers = append(app.closers, func() error { _ = logger.Sync(); return nil })
	}

	app.API = api.New(cfg.BackendURL, cfg.RequestTimeout(), api.WithLogger(app.Logger))
	display.Output = app.Out
	return app, nil
}

// NewChatStore builds the chat store, mirroring into the local transcript
// when history is enabled.
func (a *App) NewChatStore() *chat.Store {
	opts := []chat.Option{chat.WithLogger(a.Logger.Named("chat"))}

	history, err := storage.OpenHistory(&a.Config)
	switch {
	case err == nil:
		rec := storage.NewAsyncRecorder(history, a.Logger.Named("history"))
		a.closers = append(a.closers, func() error {
			rec.Close()
			return history.Close()
		})
		opts = append(opts, chat.WithRecorder(rec))
	case errors.Is(err, storage.ErrHistoryDisabled):
	default:
		a.Logger.Warn("history unavailable", zap.Error(err))
	}
	return chat.NewStore(a.API, opts...)
}

// Close runs cleanup in reverse order of registration.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.Logger != nil {
			a.Logger.Debug("cleanup failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
