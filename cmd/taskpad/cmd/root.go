package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/config"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/events"
	"github.com/entrepeneur4lyf/taskpad/internal/export"
	"github.com/entrepeneur4lyf/taskpad/internal/ingest"
	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
	"github.com/entrepeneur4lyf/taskpad/internal/tui"
	"github.com/spf13/cobra"
)

var (
	debug      bool
	workingDir string
	cfgFile    string
)

var logFile *os.File // For cleanup

// session is everything a command works against. It is built once per
// invocation by the root PersistentPreRunE.
type session struct {
	cfg    *config.Config
	store  kvstore.Store
	broker *events.Broker[document.Notice]
	doc    *document.Manager
	loader *ingest.Loader
}

var current *session

// setupLogging sends logs to <data>/logs/taskpad.log, or to stderr at debug
// level when --debug is set.
func setupLogging(cfg *config.Config) error {
	cleanupLogging()

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		log.SetFormatter(log.JSONFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		return nil
	}

	logDir, err := cfg.Paths().GetLogsDir()
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "taskpad.log")
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	log.SetOutput(logFile)
	return nil
}

// cleanupLogging closes the log file if it was opened
func cleanupLogging() {
	if logFile != nil {
		log.SetOutput(os.Stderr)
		logFile.Close()
		logFile = nil
	}
}

func openSession(ctx context.Context) error {
	cfg, err := config.Load(workingDir, debug, config.WithConfigFile(cfgFile))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	store, err := cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	broker := events.NewBroker[document.Notice]()
	doc := document.New(ctx, store,
		document.WithDelay(cfg.Editor.Debounce),
		document.WithBroker(broker),
	)

	current = &session{
		cfg:    cfg,
		store:  store,
		broker: broker,
		doc:    doc,
		loader: ingest.NewLoader(workingDir, ingest.Options{
			MaxFileSize:      cfg.Ingest.MaxFileSize,
			RespectGitignore: cfg.Ingest.RespectGitignore,
		}),
	}
	log.Debug("session opened", "backend", cfg.Store.Backend, "config", cfg.ConfigFile, "wd", workingDir)
	return nil
}

// closeSession writes anything still pending and releases the store. It is
// safe to call more than once.
func closeSession() {
	s := current
	current = nil
	if s != nil {
		s.doc.Flush()
		s.doc.Close()
		if err := s.store.Close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
		s.broker.Shutdown()
	}
	cleanupLogging()
}

// commit flushes pending writes and reports the first write that failed.
func (s *session) commit() error {
	s.doc.Flush()
	failed := s.broker.GetHistory(events.OfType(events.StorePersistFailed))
	if len(failed) == 0 {
		return nil
	}
	n := failed[0].Payload
	return fmt.Errorf("failed to save %s: %w", n.Key, n.Err)
}

func (s *session) exportSources() (export.Sources, error) {
	var src export.Sources
	for _, f := range []struct {
		value string
		into  *string
	}{
		{s.cfg.Export.Role, &src.Role},
		{s.cfg.Export.Rules, &src.Rules},
		{s.cfg.Export.Output, &src.Output},
	} {
		v, err := export.ResolveSource(f.value, workingDir)
		if err != nil {
			return export.Sources{}, err
		}
		*f.into = v
	}
	return src, nil
}

var rootCmd = &cobra.Command{
	Use:   "taskpad",
	Short: "Compose a task and the files it needs",
	Long: `taskpad keeps a task description and a set of attached files, saved as you type.

Usage:
  taskpad                      # Open the editor
  taskpad add 'internal/**/*.go'
  taskpad content "Fix the flaky test"
  taskpad export --copy        # Put the assembled prompt on the clipboard`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if abs, err := filepath.Abs(workingDir); err == nil {
			workingDir = abs
		}
		return openSession(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeSession()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s := current
		src, err := s.exportSources()
		if err != nil {
			log.Warn("export sections unavailable", "error", err)
		}
		opts := tui.Options{
			Theme:        s.cfg.TUI.Theme,
			PreviewStyle: s.cfg.Preview.Style,
			LineNumbers:  s.cfg.Preview.LineNumbers,
			WorkingDir:   workingDir,
			Export:       src,
			Loader:       s.loader,
			Broker:       s.broker,
		}

		if s.cfg.Ingest.Watch {
			w, err := ingest.NewWatcher(workingDir, ingest.WithWatchDelay(s.cfg.Editor.Debounce))
			if err != nil {
				log.Warn("file watching disabled", "error", err)
			} else {
				w.Start()
				defer w.Stop()
				opts.Watcher = w
			}
		}

		return tui.Run(cmd.Context(), s.doc, opts)
	},
}

func init() {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log to stderr at debug level")
	rootCmd.PersistentFlags().StringVar(&workingDir, "cwd", wd, "Directory relative paths resolve against")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default searches ~/.taskpad.json)")
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	closeSession()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
