package main

import (
	"fmt"
	"os"

	"github.com/tatianab/text-adventure/internal/config"
	"github.com/tatianab/text-adventure/internal/engine"
	"github.com/tatianab/text-adventure/internal/gemini"
	"github.com/tatianab/text-adventure/internal/logger"
	"github.com/tatianab/text-adventure/internal/tui"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred log sync always happens.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting",
		zap.String("transport", cfg.Provider.Transport),
		zap.String("model", cfg.Provider.Model),
		zap.Duration("timeout", cfg.Provider.Timeout))

	err = tui.Run(tui.Options{
		Completer:     newCompleter(cfg.Provider),
		Logger:        log,
		APIKey:        cfg.APIKey,
		StatBudget:    cfg.Game.StatBudget,
		EnforceBudget: cfg.Game.EnforceBudget,
	})
	if err != nil {
		log.Error("tui exited", zap.Error(err))
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func newCompleter(p config.ProviderConfig) engine.Completer {
	if p.Transport == config.TransportSDK {
		return gemini.NewSDKClient(p.Model, p.Timeout)
	}
	return gemini.NewClient(p.Endpoint, p.Model, p.Timeout)
}
