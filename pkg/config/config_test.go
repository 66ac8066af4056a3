package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// isolate runs the test from an empty directory with KOBOANKI_CONFIG unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(PathEnv, "")
	return dir
}

const sampleYAML = `
import:
  deck_name: "German Words"
  card_level: basic
  fallback_languages: [de, en]
  tag: reading
device:
  roots: [/mnt/ereader]
dictionary:
  base_url: "http://localhost:8080/dict"
  timeout: 2s
  cache_size: 16
  workers: 4
collection:
  path: /tmp/cards.db
log:
  level: debug
  format: json
`

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		Import: ImportConfig{DeckName: "Kobo Words", CardLevel: "full", Tag: "kobo"},
		Dictionary: DictionaryConfig{
			BaseURL:   "https://kaikki.org/dictionary",
			Timeout:   5 * time.Second,
			CacheSize: 1024,
			Workers:   50,
			UserAgent: "koboanki",
		},
		Collection: CollectionConfig{Path: "koboanki.db"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "custom.yaml", sampleYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Import.DeckName != "German Words" || cfg.Import.CardLevel != "basic" {
		t.Fatalf("import section not read: %+v", cfg.Import)
	}
	if diff := cmp.Diff([]string{"de", "en"}, cfg.Import.FallbackLanguages); diff != "" {
		t.Fatalf("fallbacks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/mnt/ereader"}, cfg.Device.Roots); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	if cfg.Dictionary.Timeout != 2*time.Second || cfg.Dictionary.Workers != 4 {
		t.Fatalf("dictionary section not read: %+v", cfg.Dictionary)
	}
	// Unset keys keep their defaults.
	if cfg.Dictionary.UserAgent != "koboanki" {
		t.Fatalf("expected default user agent, got %q", cfg.Dictionary.UserAgent)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "koboanki.yaml", sampleYAML)
	t.Setenv(PathEnv, path)
	t.Setenv("KOBOANKI_DECK_NAME", "From Env")
	t.Setenv("KOBOANKI_DICTIONARY_WORKERS", "8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Import.DeckName != "From Env" {
		t.Fatalf("expected env deck name, got %q", cfg.Import.DeckName)
	}
	if cfg.Dictionary.Workers != 8 {
		t.Fatalf("expected env workers, got %d", cfg.Dictionary.Workers)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "KOBOANKI_CARD_LEVEL=intermediate\n")
	// godotenv sets the variable for the process; register it for cleanup.
	t.Setenv("KOBOANKI_CARD_LEVEL", "")
	os.Unsetenv("KOBOANKI_CARD_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Import.CardLevel != "intermediate" {
		t.Fatalf("expected level from .env, got %q", cfg.Import.CardLevel)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Import:     ImportConfig{DeckName: "Kobo Words", CardLevel: "full"},
			Dictionary: DictionaryConfig{BaseURL: "https://kaikki.org/dictionary", Timeout: time.Second, CacheSize: 1, Workers: 1},
			Collection: CollectionConfig{Path: "x.db"},
			Log:        LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"blank deck", func(c *Config) { c.Import.DeckName = " " }, "deck_name"},
		{"bad level", func(c *Config) { c.Import.CardLevel = "expert" }, "card_level"},
		{"relative url", func(c *Config) { c.Dictionary.BaseURL = "kaikki.org" }, "base_url"},
		{"zero workers", func(c *Config) { c.Dictionary.Workers = 0 }, "workers"},
		{"zero cache", func(c *Config) { c.Dictionary.CacheSize = 0 }, "cache_size"},
		{"zero timeout", func(c *Config) { c.Dictionary.Timeout = 0 }, "timeout"},
		{"no collection", func(c *Config) { c.Collection.Path = "" }, "collection.path"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBlacklistWords(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "blacklist.json", `["The", "a", "Straße"]`)
	yamlPath := writeFile(t, dir, "blacklist.yaml", "- of\n- and\n")
	badPath := writeFile(t, dir, "bad.json", `{"words": ["x"]}`)

	tests := []struct {
		name    string
		cfg     ImportConfig
		want    []string
		wantErr bool
	}{
		{"inline only", ImportConfig{Blacklist: []string{"the"}}, []string{"the"}, false},
		{"json file", ImportConfig{Blacklist: []string{"x"}, BlacklistFile: jsonPath}, []string{"x", "The", "a", "Straße"}, false},
		{"yaml file", ImportConfig{BlacklistFile: yamlPath}, []string{"of", "and"}, false},
		{"missing file", ImportConfig{BlacklistFile: filepath.Join(dir, "nope.json")}, nil, true},
		{"not a list", ImportConfig{BlacklistFile: badPath}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.cfg.BlacklistWords()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadBlacklistFromYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "koboanki.yaml", "import:\n  blacklist: [the, a]\n  blacklist_file: words.json\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"the", "a"}, cfg.Import.Blacklist); diff != "" {
		t.Fatalf("blacklist mismatch (-want +got):\n%s", diff)
	}
	if cfg.Import.BlacklistFile != "words.json" {
		t.Fatalf("blacklist file not read: %q", cfg.Import.BlacklistFile)
	}
}
