package main

import (
	"fmt"
	"strings"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/awesmubarak/koboanki/pkg/importer"
	"github.com/awesmubarak/koboanki/pkg/kobo"
)

var wordsCommand = &cli.Command{
	Name:  "words",
	Usage: "List the words saved on the e-reader",
	Flags: []cli.Flag{deviceFlag},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		path := cfg.Device.Path
		if path == "" {
			roots := cfg.Device.Roots
			if roots == nil {
				roots = kobo.DefaultRoots()
			}
			var ok bool
			if path, ok = kobo.Locate(roots); !ok {
				return fmt.Errorf("%w (searched %s)", importer.ErrDeviceNotFound, strings.Join(roots, ", "))
			}
		}

		entries, err := kobo.ReadWords(c.Context, path)
		if err != nil {
			return err
		}
		tbl := table.New("Word", "Language").WithWriter(c.App.Writer)
		for _, e := range entries {
			tbl.AddRow(e.Word, e.Language)
		}
		tbl.Print()
		fmt.Fprintf(c.App.Writer, "\n%d words in %s\n", len(entries), path)
		return nil
	},
}
