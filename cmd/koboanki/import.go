package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/awesmubarak/koboanki/pkg/collection"
	"github.com/awesmubarak/koboanki/pkg/importer"
	"github.com/awesmubarak/koboanki/pkg/report"
)

var importCommand = &cli.Command{
	Name:  "import",
	Usage: "Add cards for new device words to the collection",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "deck",
			Aliases: []string{"d"},
			Usage:   "add cards to deck `NAME`",
		},
		levelFlag,
		deviceFlag,
		&cli.StringFlag{
			Name:  "collection",
			Usage: "collection database `FILE`",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "run at most `N` lookups at once",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "also write the summary as an XLSX workbook to `FILE`",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger := newLogger(c.App.ErrWriter, cfg.Log)
		slog.SetDefault(logger)

		sched, err := newScheduler(cfg, logger)
		if err != nil {
			return err
		}
		coll, err := collection.Open(c.Context, cfg.Collection.Path, collection.WithLogger(logger))
		if err != nil {
			return err
		}
		defer coll.Close()

		blacklist, err := cfg.Import.BlacklistWords()
		if err != nil {
			return err
		}
		var tags []string
		if cfg.Import.Tag != "" {
			tags = []string{cfg.Import.Tag}
		}
		p := importer.New(sched, coll, importer.Options{
			DeckName:   cfg.Import.DeckName,
			Level:      cardLevel(cfg),
			DevicePath: cfg.Device.Path,
			Roots:      cfg.Device.Roots,
			Tags:       tags,
			Blacklist:  blacklist,
			Logger:     logger,
		})

		sum, runErr := p.Run(c.Context)
		if sum != nil {
			printSummary(c.App.Writer, sum)
			if path := c.String("report"); path != "" {
				if err := report.WriteXLSX(path, sum); err != nil {
					logger.Error("write report", slog.String("path", path), slog.String("error", err.Error()))
				} else {
					fmt.Fprintf(c.App.Writer, "Report written to %s\n", path)
				}
			}
		}
		return runErr
	},
}

// printSummary writes the per-word table followed by the summary message.
func printSummary(w io.Writer, sum *importer.Summary) {
	if len(sum.Added)+len(sum.Skipped)+len(sum.Ignored)+len(sum.Failed) > 0 {
		tbl := table.New("Word", "Status").WithWriter(w)
		for _, word := range sum.Added {
			tbl.AddRow(word, "added")
		}
		for _, word := range sum.Skipped {
			tbl.AddRow(word, "skipped")
		}
		for _, word := range sum.Ignored {
			tbl.AddRow(word, "ignored")
		}
		for _, f := range sum.Failed {
			tbl.AddRow(f.Word, fmt.Sprintf("failed [%s]: %s", f.Language, strings.ReplaceAll(f.Reason, "_", " ")))
		}
		tbl.Print()
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, sum.String())
}
