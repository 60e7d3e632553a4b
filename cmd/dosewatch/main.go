// Command dosewatch runs the medication reminder daemon: it keeps the dose
// schedule in SQLite, scans for due doses, sounds the alert cue, and serves
// the HTTP API the UI talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/api"
	"github.com/dosewatch/dosewatch/pkg/audio"
	"github.com/dosewatch/dosewatch/pkg/engine"
	"github.com/dosewatch/dosewatch/pkg/logger"
	"github.com/dosewatch/dosewatch/pkg/models"
	"github.com/dosewatch/dosewatch/pkg/store"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (default: <user config dir>/dosewatch/config.toml)")
		importPath    = flag.String("import", "", "import doses from an iCalendar file and exit")
		autostartMode = flag.String("autostart", "", "install or remove the login item and exit")
	)
	flag.Parse()

	if err := run(*configPath, *importPath, *autostartMode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, importPath, autostartMode string) error {
	if configPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		configPath = filepath.Join(dir, "dosewatch", "config.toml")
	}

	cfgStore := store.NewConfigStore(configPath)
	cfg, err := cfgStore.Load()
	if err != nil {
		return err
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(filepath.Dir(configPath), "dosewatch.db")
	}
	// Write the effective config back so defaults are visible on disk
	if err := cfgStore.Save(cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	if autostartMode != "" {
		enable, err := parseAutostartMode(autostartMode)
		if err != nil {
			return err
		}
		// Keep the config in step so the next daemon start doesn't undo it
		cfg.AutoStart = enable
		if err := cfgStore.Save(cfg); err != nil {
			return err
		}
		return setupAutostart(enable, log)
	}

	st, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if importPath != "" {
		return importCalendar(st, log, importPath)
	}

	if err := setupAutostart(cfg.AutoStart, log); err != nil {
		log.Warn("autostart setup failed", zap.Error(err))
	}

	return serve(cfg, st, log)
}

func serve(cfg *models.Config, st *store.SQLiteStore, log *zap.Logger) error {
	cue, err := newCue(cfg.SoundPath, log)
	if err != nil {
		return err
	}

	eng := engine.New(st, cue, log, engine.Options{
		PollInterval:          cfg.PollInterval(),
		NotificationsDisabled: !cfg.NotificationsEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineDone := make(chan error, 1)
	go func() { engineDone <- eng.Run(ctx) }()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(api.Options{Store: st, Engine: eng, Log: log}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := <-engineDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newCue builds the alert cue from the configured WAV file, or the built-in
// chime when none is set
func newCue(soundPath string, log *zap.Logger) (*audio.Player, error) {
	var wav []byte
	if soundPath != "" {
		data, err := os.ReadFile(soundPath)
		if err != nil {
			return nil, fmt.Errorf("read alert sound: %w", err)
		}
		wav = data
	}
	return audio.NewPlayer(wav, log)
}
