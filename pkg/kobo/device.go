// Package kobo reads the word list a Kobo e-reader keeps in its on-device
// SQLite database.
package kobo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// MarkerPath is the location of the device database relative to a volume root.
var MarkerPath = filepath.Join(".kobo", "KoboReader.sqlite")

// DefaultLanguage is used when a word carries no dictionary suffix.
const DefaultLanguage = "en"

// ErrStorageUnavailable is returned when the device database cannot be
// opened or does not contain a word list.
var ErrStorageUnavailable = errors.New("kobo: word list storage unavailable")

// WordEntry is a single saved word and the language of the dictionary it
// was looked up in.
type WordEntry struct {
	Word     string
	Language string
}

type wordRow struct {
	Text       sql.NullString `db:"Text"`
	DictSuffix sql.NullString `db:"DictSuffix"`
}

// Locate scans each root for mounted volumes carrying the device marker
// file and returns the first match. A root may itself be a volume. A
// missing or unreadable root is skipped.
func Locate(roots []string) (string, bool) {
	for _, root := range roots {
		if isRegular(filepath.Join(root, MarkerPath)) {
			return filepath.Join(root, MarkerPath), true
		}
		volumes, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, v := range volumes {
			candidate := filepath.Join(root, v.Name(), MarkerPath)
			if isRegular(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds a SQLite URI that opens path without write access so
// the device database is never modified.
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file:" + uriEscaper.Replace(filepath.ToSlash(path)) + "?mode=ro"
}

// LanguageFromSuffix converts a WordList DictSuffix value into a language
// code. One leading "-" is stripped; an absent suffix means English.
func LanguageFromSuffix(suffix string) string {
	lang := strings.TrimPrefix(strings.TrimSpace(suffix), "-")
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// ReadWords returns every word in the device word list in row order.
// Duplicates are kept. Rows whose text normalizes to nothing are dropped.
func ReadWords(ctx context.Context, path string) ([]WordEntry, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrStorageUnavailable, path)
	}

	conn, err := sqlx.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, path, err)
	}
	defer conn.Close()

	var rows []wordRow
	if err := conn.SelectContext(ctx, &rows, `SELECT Text, DictSuffix FROM WordList ORDER BY rowid`); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: read WordList: %w", ErrStorageUnavailable, err)
	}

	out := make([]WordEntry, 0, len(rows))
	for _, r := range rows {
		if !r.Text.Valid {
			continue
		}
		word := Normalize(r.Text.String)
		if word == "" {
			continue
		}
		out = append(out, WordEntry{Word: word, Language: LanguageFromSuffix(r.DictSuffix.String)})
	}
	return out, nil
}
