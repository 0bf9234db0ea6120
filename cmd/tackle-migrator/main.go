package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rflorenc/tackle-migrator/internal/api"
	"github.com/rflorenc/tackle-migrator/internal/config"
	"github.com/rflorenc/tackle-migrator/internal/migration"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const actionServe = "serve"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if cfg.ShowVersion {
		fmt.Printf("tackle-migrator %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	logger, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	serve, err := checkActions(cfg.Actions)
	if err != nil {
		logger.Error(err.Error())
		fmt.Fprintf(os.Stderr, "Usage: tackle-migrator [flags] <%s|%s|%s|%s|%s>...\n",
			migration.ActionExportOrigin, migration.ActionImport, migration.ActionClean, migration.ActionCleanAll, actionServe)
		return 1
	}

	if err := cfg.Load(); err != nil {
		logger.Error("loading config", zap.Error(err))
		return 1
	}
	if effective, err := cfg.File.Redacted(); err == nil {
		logger.Debug("effective configuration\n" + effective)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := migration.Options{
		Targets:              cfg,
		DataDir:              cfg.DataDir,
		Timeout:              cfg.File.Timeout,
		Version:              version,
		NoAuth:               cfg.NoAuth,
		SkipDestinationCheck: cfg.SkipDestinationCheck,
		IgnoreImportErrors:   cfg.IgnoreImportErrors,
		DisableSSLWarnings:   cfg.DisableSSLWarnings,
	}

	if serve {
		if err := runServer(ctx, cfg, opts, logger, level); err != nil {
			logger.Error("server failed", zap.Error(err))
			return 1
		}
		return 0
	}

	if err := migration.NewRunner(opts, logger).Run(ctx, cfg.Actions); err != nil {
		logger.Error("migration failed", zap.Error(err))
		return 1
	}
	return 0
}

// checkActions validates the positional actions. serve must be given alone.
func checkActions(actions []string) (serve bool, err error) {
	if len(actions) == 0 {
		return false, errors.New("no action given")
	}
	for _, a := range actions {
		switch {
		case a == actionServe:
			if len(actions) > 1 {
				return false, errors.New("serve cannot be combined with other actions")
			}
			return true, nil
		case !migration.IsAction(a):
			return false, fmt.Errorf("unknown action %q", a)
		}
	}
	return false, nil
}

func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = level
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logConfig.Build()
}

func runServer(ctx context.Context, cfg *config.Config, opts migration.Options, logger *zap.Logger, level zap.AtomicLevel) error {
	server := &api.Server{
		Jobs:    models.NewJobStore(),
		Runner:  api.NewJobRunner(ctx, opts, logger, level),
		DataDir: cfg.DataDir,
		Targets: cfg,
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tackle-migrator starting", zap.String("version", version), zap.String("listen", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	server.Runner.Wait()
	return nil
}
