package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ligustah/stacfetch/internal/config"
	"github.com/ligustah/stacfetch/internal/logging"
	"github.com/ligustah/stacfetch/pkg/plan"
	"github.com/ligustah/stacfetch/pkg/provider"
	"github.com/ligustah/stacfetch/pkg/resolve"
	"github.com/ligustah/stacfetch/pkg/selection"
	"github.com/ligustah/stacfetch/pkg/transfer"
)

// commonFlags are accepted by every command that talks to a provider.
type commonFlags struct {
	config   string
	progress bool
	verbose  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "Config file (default: $XDG_CONFIG_HOME/"+config.FileName+")")
	fs.BoolVar(&c.progress, "progress", false, "Show progress output")
	fs.BoolVar(&c.verbose, "verbose", false, "Verbose logging")
}

// loadConfig reads the config file, then the environment, then applies
// override on top.
func loadConfig(path string, override config.Config) (config.Config, error) {
	cfg := config.Default()
	if path == "" {
		if p, ok := config.DefaultPath(); ok {
			path = p
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(verbose bool, command string) *zap.Logger {
	return logging.New(verbose).With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", command),
	)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[stacfetch] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openProvider builds the provider named by a selection or plan id.
func openProvider(ctx context.Context, cfg config.Config, log *zap.Logger, id string) (*provider.Provider, error) {
	kind, err := provider.ParseKind(id)
	if err != nil {
		return nil, err
	}
	return provider.New(ctx, kind, provider.Options{
		Settings: cfg.Provider(kind),
		HTTP:     cfg.HTTPOptions(),
		Logger:   log,
	})
}

// exitCode maps an error to the process exit code and prints it.
func exitCode(ctx context.Context, err error) int {
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "[stacfetch] Interrupted, partial files are kept for resume")
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var (
		resolveErr  *resolve.Error
		transferErr *transfer.Error
	)
	switch {
	case errors.Is(err, selection.ErrInvalid), errors.Is(err, provider.ErrUnknownKind):
		return ExitInvalidSelection
	case errors.Is(err, plan.ErrExists):
		fmt.Fprintln(os.Stderr, "Use -force to overwrite")
		return ExitPersistence
	case errors.Is(err, selection.ErrPersistence), errors.Is(err, plan.ErrPersistence):
		return ExitPersistence
	case errors.As(err, &resolveErr):
		return ExitResolution
	case errors.As(err, &transferErr), errors.Is(err, transfer.ErrSizeUnknown):
		return ExitTransfer
	default:
		return ExitGeneralError
	}
}
