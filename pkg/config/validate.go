package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/awesmubarak/koboanki/pkg/cards"
)

// Validate checks the loaded configuration for values the import cannot use.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Import.DeckName) == "" {
		errs = append(errs, errors.New("import.deck_name must be non-empty"))
	}
	if _, err := cards.ParseLevel(c.Import.CardLevel); err != nil {
		errs = append(errs, fmt.Errorf("import.card_level: %w", err))
	}

	if u, err := url.Parse(c.Dictionary.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("dictionary.base_url %q is not an absolute URL", c.Dictionary.BaseURL))
	}
	if c.Dictionary.Timeout <= 0 {
		errs = append(errs, errors.New("dictionary.timeout must be positive"))
	}
	if c.Dictionary.CacheSize <= 0 {
		errs = append(errs, errors.New("dictionary.cache_size must be positive"))
	}
	if c.Dictionary.Workers <= 0 {
		errs = append(errs, errors.New("dictionary.workers must be positive"))
	}

	if strings.TrimSpace(c.Collection.Path) == "" {
		errs = append(errs, errors.New("collection.path must be non-empty"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}
