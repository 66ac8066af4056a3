// Package config loads koboanki settings from YAML, .env and the environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Import     ImportConfig     `yaml:"import"`
	Device     DeviceConfig     `yaml:"device"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Collection CollectionConfig `yaml:"collection"`
	Log        LogConfig        `yaml:"log"`
}

// ImportConfig holds what the import writes and where.
type ImportConfig struct {
	DeckName          string   `yaml:"deck_name"          env:"KOBOANKI_DECK_NAME"          env-default:"Kobo Words"`
	CardLevel         string   `yaml:"card_level"         env:"KOBOANKI_CARD_LEVEL"         env-default:"full"`
	FallbackLanguages []string `yaml:"fallback_languages" env:"KOBOANKI_FALLBACK_LANGUAGES" env-separator:","`
	Tag               string   `yaml:"tag"                env:"KOBOANKI_TAG"                env-default:"kobo"`
	// Blacklist words are never imported.
	Blacklist []string `yaml:"blacklist" env:"KOBOANKI_BLACKLIST" env-separator:","`
	// BlacklistFile names a JSON or YAML list of further blacklisted words.
	BlacklistFile string `yaml:"blacklist_file" env:"KOBOANKI_BLACKLIST_FILE"`
}

// DeviceConfig locates the e-reader.
type DeviceConfig struct {
	// Roots replace the platform mount points when set.
	Roots []string `yaml:"roots" env:"KOBOANKI_DEVICE_ROOTS" env-separator:","`
	// Path points straight at KoboReader.sqlite and skips discovery.
	Path string `yaml:"path" env:"KOBOANKI_DEVICE_PATH"`
}

// DictionaryConfig holds lookup client settings.
type DictionaryConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"KOBOANKI_DICTIONARY_URL"        env-default:"https://kaikki.org/dictionary"`
	Timeout   time.Duration `yaml:"timeout"    env:"KOBOANKI_DICTIONARY_TIMEOUT"    env-default:"5s"`
	CacheSize int           `yaml:"cache_size" env:"KOBOANKI_DICTIONARY_CACHE_SIZE" env-default:"1024"`
	Workers   int           `yaml:"workers"    env:"KOBOANKI_DICTIONARY_WORKERS"    env-default:"50"`
	UserAgent string        `yaml:"user_agent" env:"KOBOANKI_USER_AGENT"            env-default:"koboanki"`
}

// CollectionConfig locates the flashcard collection.
type CollectionConfig struct {
	Path string `yaml:"path" env:"KOBOANKI_COLLECTION" env-default:"koboanki.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"KOBOANKI_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"KOBOANKI_LOG_FORMAT" env-default:"text"`
}
