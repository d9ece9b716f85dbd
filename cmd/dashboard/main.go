package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/collection"
	"github.com/microfix/dashboard/internal/collection/local"
	"github.com/microfix/dashboard/internal/collection/remote"
	"github.com/microfix/dashboard/internal/config"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

const usage = `usage: dashboard [-config dir] [-log-level level] <command> [flags]

commands:
  list   [-tag T]                 show cards, newest first
  tags                            list every tag in use
  add    -title T -url U [-description D] [-image I] [-tags a,b]
  edit   <id> [-title T] [-url U] [-description D] [-image I] [-tags a,b]
  rm     <id>                     delete a card
  export [-o file]                write the collection as JSON
`

func main() {
	os.Exit(run())
}

func run() int {
	global := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	configDir := global.String("config", "", "directory holding dashboard.yaml")
	logLevel := global.String("log-level", "warn", "log level written to stderr")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := global.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.LoadClient(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		return 1
	}

	if err := logger.Init(cfg.Env, logger.Options{Level: *logLevel, OutputPaths: []string{"stderr"}}); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("logger: "+err.Error()))
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		return 1
	}

	store := collection.NewStore(backend)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing backend", zap.Error(err))
		}
	}()

	// A failed load still leaves a usable, empty store; the error is shown
	// and the command goes ahead.
	if err := store.Initialize(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("could not load links: "+err.Error()))
	}

	app := &cli{store: store, defaultImage: cfg.DefaultImage, out: os.Stdout}
	if err := app.dispatch(ctx, global.Args()); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		return 1
	}
	return 0
}

func openBackend(cfg *config.ClientConfig) (collection.Backend, error) {
	switch cfg.Backend {
	case config.ClientBackendRemote:
		logger.Debug("using remote backend", zap.String("api_url", cfg.Remote.APIURL))
		return remote.New(remote.Config{
			BaseURL:        cfg.Remote.APIURL,
			Timeout:        cfg.Remote.Timeout,
			MaxFailures:    cfg.Remote.MaxFailures,
			BreakerTimeout: cfg.Remote.BreakerTimeout,
		}), nil
	default:
		if err := os.MkdirAll(cfg.Local.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		logger.Debug("using local backend", zap.String("data_dir", cfg.Local.DataDir))
		return local.Open(cfg.Local.DataDir, cfg.Local.StorageKey)
	}
}
