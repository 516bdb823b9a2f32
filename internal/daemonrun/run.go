package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"wordglow/internal/config"
	"wordglow/internal/daemon"
	"wordglow/internal/logging"
	"wordglow/internal/notifications"
	"wordglow/internal/pipeline"
	"wordglow/internal/preflight"
	"wordglow/internal/queue"
	"wordglow/internal/transcribe"
	"wordglow/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the wordglow daemon and blocks until SIGINT, SIGTERM or
// cancellation of cmdCtx.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("wordglow-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldCorrelationID, uuid.NewString()))

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.LogPath(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update wordglow.log link: %v\n", err)
	}
	logging.Prune(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "wordglow-*.log", Exclude: []string{logPath}},
	)
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	notifier := notifications.NewService(cfg)
	manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
	stages, err := Stages(cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}
	manager.ConfigureStages(stages)

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("wordglow daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

// Stages builds the transcribing and captioning handlers for cfg. The CLI
// uses it to run jobs in the foreground with the same handlers the daemon
// registers.
func Stages(cfg *config.Config, store *queue.Store, logger *slog.Logger) (workflow.StageSet, error) {
	engine, err := transcribe.New(cfg)
	if err != nil {
		return workflow.StageSet{}, err
	}
	p, err := pipeline.New(cfg, engine, logger)
	if err != nil {
		return workflow.StageSet{}, err
	}
	return workflow.StageSet{
		Transcriber: transcribe.NewStage(cfg, store, engine, logger),
		Captioner:   pipeline.NewStage(p, store, logger),
	}, nil
}

func ensureCurrentLogPointer(current, target string) error {
	if current == "" || target == "" {
		return nil
	}
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("engine", cfg.Transcription.Engine),
		logging.String("model", cfg.Transcription.Model),
		logging.String("device", cfg.Transcription.Device),
		logging.Bool("ntfy_enabled", cfg.Notifications.NtfyTopic != ""),
	}
	for _, status := range preflight.CheckSystemDeps(cfg) {
		attrs = append(attrs, logging.Bool(status.Name+"_available", status.Available))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
