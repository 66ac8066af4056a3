package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/awesmubarak/koboanki/pkg/cards"
	"github.com/awesmubarak/koboanki/pkg/config"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrKoboanki is a parent error for all command errors.
var ErrKoboanki = errors.New("koboanki")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrKoboanki)

func newApp() *cli.App {
	return &cli.App{
		Name:  "koboanki",
		Usage: "Turn Kobo e-reader word lists into flashcards.",
		Description: strings.Join([]string{
			"Reads the words saved on a Kobo e-reader, looks each one up on",
			"kaikki.org and adds a card per word to a local collection.",
		}, "\n"),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read settings from `FILE`",
				EnvVars: []string{config.PathEnv},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log `LEVEL` (debug, info, warn, error)",
			},
		},
		HideHelpCommand: true,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Commands: []*cli.Command{
			importCommand,
			wordsCommand,
			lookupCommand,
		},
	}
}

// loadConfig reads the configuration and applies flag overrides shared by
// all commands.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if c.IsSet("deck") {
		cfg.Import.DeckName = c.String("deck")
	}
	if c.IsSet("level") {
		cfg.Import.CardLevel = c.String("level")
	}
	if c.IsSet("device") {
		cfg.Device.Path = c.String("device")
	}
	if c.IsSet("collection") {
		cfg.Collection.Path = c.String("collection")
	}
	if c.IsSet("workers") {
		cfg.Dictionary.Workers = c.Int("workers")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFlagParse, err)
	}
	return cfg, nil
}

func cardLevel(cfg *config.Config) cards.Level {
	// Validate has already rejected unknown levels.
	lvl, _ := cards.ParseLevel(cfg.Import.CardLevel)
	return lvl
}

var levelFlag = &cli.StringFlag{
	Name:    "level",
	Aliases: []string{"l"},
	Usage:   "card `LEVEL` (basic, intermediate, full)",
}

var deviceFlag = &cli.StringFlag{
	Name:  "device",
	Usage: "read words from `PATH` to KoboReader.sqlite instead of searching mounted volumes",
}
