package main

import (
	"fmt"
	"log/slog"

	"github.com/awesmubarak/koboanki/pkg/config"
	"github.com/awesmubarak/koboanki/pkg/dictionary"
	"github.com/awesmubarak/koboanki/pkg/lemma"
	"github.com/awesmubarak/koboanki/pkg/resolve"
)

// newScheduler wires the dictionary client and lemmatizer into a scheduler.
func newScheduler(cfg *config.Config, logger *slog.Logger) (*resolve.Scheduler, error) {
	client, err := dictionary.NewClient(logger, dictionary.Options{
		BaseURL:   cfg.Dictionary.BaseURL,
		Timeout:   cfg.Dictionary.Timeout,
		CacheSize: cfg.Dictionary.CacheSize,
		UserAgent: cfg.Dictionary.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("dictionary client: %w", err)
	}
	analyzer, err := lemma.NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("lemmatizer: %w", err)
	}

	s := resolve.NewScheduler(client, logger)
	s.MaxWorkers = cfg.Dictionary.Workers
	s.Fallbacks = cfg.Import.FallbackLanguages
	s.Lemmatizer = analyzer
	return s, nil
}
