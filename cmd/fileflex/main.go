package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/client"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/domain/session"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/config"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
	"github.com/GriffinCanCode/FileFlex/client/internal/storage"
)

type flags struct {
	configPath string
	path       string
	mode       string
	fromNav    bool
	noColor    bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Profile file (.yaml, .toml or .ini)")
	flag.StringVar(&f.path, "path", "", "Folder to open, overrides the last visited one")
	flag.StringVar(&f.mode, "mode", "normal", "Browsing mode: normal, folder or tags")
	flag.BoolVar(&f.fromNav, "from-nav", false, "Opened from a navigation shell; back at the root signals instead of exiting")
	flag.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flag.Parse()

	if err := run(f, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fileflex: %v\n", err)
		os.Exit(1)
	}
}

func parseMode(s string) (types.BrowsingMode, error) {
	switch s {
	case "", "normal":
		return types.ModeNormal, nil
	case "folder":
		return types.ModeFolderSelect, nil
	case "tags":
		return types.ModeTagFilter, nil
	}
	if m, ok := types.ParseBrowsingMode(s); ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func run(f flags, in io.Reader, out io.Writer) error {
	mode, err := parseMode(f.mode)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithProfile(f.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	stateDir, err := cfg.StateDirectory()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(stateDir, "fileflex.log")
	}
	log, err := logging.New(logging.FileConfig(cfg.Logging.Level, cfg.Logging.Development, logFile))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck
	logger := log.Logger

	store, err := storage.Open(stateDir, logger.Named("storage"))
	if err != nil {
		return err
	}

	var metrics *monitoring.Metrics
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = monitoring.NewMetrics(reg)
		srv := monitoring.Serve(cfg.Metrics.Addr, reg, logger.Named("metrics"))
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	opts := client.OptionsFromConfig(cfg.Backend)
	opts.Logger = logger.Named("client")
	opts.Metrics = metrics
	if opts.Token == "" {
		opts.Token = savedToken(store, logger)
	}
	api, err := client.New(opts)
	if err != nil {
		return err
	}

	lines := newLineReader(in, out)
	confirmer := &terminalConfirmer{lines: lines, out: out}
	sess := session.New(api, confirmer, store, session.Options{
		Navigation: navigation.Options{
			InitialPath:    f.path,
			QueryPath:      cfg.Browser.StartPath,
			Mode:           mode,
			FromNavigation: f.fromNav,
			HistoryLimit:   cfg.Browser.HistoryLimit,
		},
		PageSize:       cfg.Browser.PageSize,
		FolderPageSize: cfg.Browser.FolderPageSize,
		UploadTimeout:  cfg.Backend.UploadTimeout,
		SaveTimeout:    cfg.Backend.SaveTimeout,
		Logger:         logger.Named("session"),
		Metrics:        metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		zap.String("backend", cfg.Backend.URL),
		zap.String("path", sess.CurrentPath()),
		zap.String("mode", string(mode)))

	r := newREPL(sess, api, store, lines, out, logger.Named("repl"))
	r.username = cfg.Backend.Username
	r.color = !f.noColor && os.Getenv("NO_COLOR") == ""
	return r.Run(ctx)
}

// savedToken returns the persisted token unless it has expired.
func savedToken(store *storage.FileStore, logger *zap.Logger) string {
	token, ok, err := store.GetString(keyToken)
	if err != nil {
		logger.Warn("ignoring unreadable saved token", zap.Error(err))
		return ""
	}
	if !ok || token == "" {
		return ""
	}
	if exp, ok := client.TokenExpiry(token); ok && time.Now().After(exp) {
		logger.Info("saved token expired", zap.Time("expiry", exp))
		return ""
	}
	return token
}
