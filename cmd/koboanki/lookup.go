package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"

	"github.com/awesmubarak/koboanki/pkg/cards"
	"github.com/awesmubarak/koboanki/pkg/kobo"
)

// ErrNoDefinition is returned when lookup finds nothing for the word.
var ErrNoDefinition = fmt.Errorf("%w: no definition", ErrKoboanki)

var lookupCommand = &cli.Command{
	Name:      "lookup",
	Usage:     "Look up one word and print the card it would produce",
	ArgsUsage: "WORD",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lang",
			Usage: "dictionary language `CODE`",
			Value: kobo.DefaultLanguage,
		},
		levelFlag,
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("%w: lookup takes exactly one WORD", ErrFlagParse)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger := newLogger(c.App.ErrWriter, cfg.Log)

		word := kobo.Normalize(c.Args().First())
		if word == "" {
			return fmt.Errorf("%w: empty word", ErrFlagParse)
		}
		lang := strings.ToLower(strings.TrimSpace(c.String("lang")))

		sched, err := newScheduler(cfg, logger)
		if err != nil {
			return err
		}
		res := sched.Resolve(c.Context, []kobo.WordEntry{{Word: word, Language: lang}})
		level := cardLevel(cfg)

		rec, ok := res.Defined[word]
		if !ok {
			printFields(c.App.Writer, cards.EmptyFields(word, lang, level), level)
			if len(res.Failed) == 0 {
				return errors.Join(ErrNoDefinition, c.Context.Err())
			}
			f := res.Failed[0]
			if f.Err != nil {
				return fmt.Errorf("%w: %s (%s): %w", ErrNoDefinition, word, f.Reason, f.Err)
			}
			return fmt.Errorf("%w: %s (%s)", ErrNoDefinition, word, f.Reason)
		}
		printFields(c.App.Writer, cards.Build(rec, level), level)
		return nil
	},
}

// printFields renders each non-flag field as plain text in note type order.
func printFields(w io.Writer, f cards.Fields, level cards.Level) {
	for _, name := range level.FieldNames() {
		if strings.HasPrefix(name, "Has") {
			continue
		}
		text := strings.TrimSpace(html2text.HTML2Text(f[name]))
		if text == "" {
			continue
		}
		if strings.Contains(text, "\n") {
			fmt.Fprintf(w, "%s:\n%s\n\n", name, indent(text))
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", name, text)
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}
