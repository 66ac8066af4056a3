package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/awesmubarak/koboanki/pkg/config"
)

const appleJSONL = `{"word":"apple","lang":"English","pos":"noun","senses":[{"glosses":["A round fruit of the apple tree."]}],"sounds":[{"ipa":"/ˈæp.əl/"}]}`

// kaikki serves apple and 404s everything else.
func kaikki(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/English/meaning/a/ap/apple.jsonl" {
			w.Write([]byte(appleJSONL + "\n"))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeDevice(t *testing.T, dir string, words map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "KoboReader.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open device db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE WordList (Text TEXT, VolumeId TEXT, DictSuffix TEXT, DateCreated TEXT)`); err != nil {
		t.Fatalf("create WordList: %v", err)
	}
	for w, suffix := range words {
		if _, err := db.Exec(`INSERT INTO WordList (Text, DictSuffix) VALUES (?, ?)`, w, suffix); err != nil {
			t.Fatalf("insert %s: %v", w, err)
		}
	}
	return path
}

// setup isolates config loading and points the dictionary at srv.
func setup(t *testing.T, srv *httptest.Server) string {
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
	t.Setenv(config.PathEnv, "")
	t.Setenv("KOBOANKI_DICTIONARY_URL", srv.URL)
	t.Setenv("KOBOANKI_COLLECTION", filepath.Join(dir, "cards.db"))
	t.Setenv("KOBOANKI_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.RunContext(context.Background(), append([]string{"koboanki"}, args...))
	return stdout.String(), err
}

func TestWordsCommand(t *testing.T) {
	dir := setup(t, kaikki(t))
	device := writeDevice(t, dir, map[string]string{"Apple": "-en", "Straße": "-de"})

	out, err := run(t, "words", "--device", device)
	if err != nil {
		t.Fatalf("words: %v", err)
	}
	for _, want := range []string{"apple", "straße", "de", "2 words in"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestImportCommand(t *testing.T) {
	dir := setup(t, kaikki(t))
	device := writeDevice(t, dir, map[string]string{"apple": "-en", "xyzzy": ""})
	reportPath := filepath.Join(dir, "run.xlsx")

	out, err := run(t, "import", "--device", device, "--level", "basic", "--report", reportPath)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	for _, want := range []string{"Found 2 words", "Added 1: apple", "Failed 1: xyzzy [en] (not_found)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("report not written: %v", err)
	}

	out, err = run(t, "import", "--device", device, "--level", "basic")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out, "Skipped 1 (already in collection): apple") {
		t.Fatalf("expected apple skipped on second run:\n%s", out)
	}
}

func TestImportCommandBlacklist(t *testing.T) {
	dir := setup(t, kaikki(t))
	device := writeDevice(t, dir, map[string]string{"apple": "-en", "The": "-en", "of": "-en"})
	writeFileAt(t, filepath.Join(dir, "blacklist.json"), `["OF"]`)
	t.Setenv("KOBOANKI_BLACKLIST", "the")
	t.Setenv("KOBOANKI_BLACKLIST_FILE", filepath.Join(dir, "blacklist.json"))

	out, err := run(t, "import", "--device", device)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	for _, want := range []string{"Added 1: apple", "Ignored 2 (blacklisted)", "Failed 0: none"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func writeFileAt(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestImportCommandDeviceMissing(t *testing.T) {
	dir := setup(t, kaikki(t))
	t.Setenv("KOBOANKI_DEVICE_ROOTS", dir)
	if _, err := run(t, "import"); err == nil || !strings.Contains(err.Error(), "e-reader not found") {
		t.Fatalf("expected device not found, got %v", err)
	}
}

func TestLookupCommand(t *testing.T) {
	setup(t, kaikki(t))

	out, err := run(t, "lookup", "--level", "intermediate", "Apple")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	for _, want := range []string{"Word: apple", "A round fruit of the apple tree.", "/ˈæp.əl/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := run(t, "lookup", "xyzzy"); !errors.Is(err, ErrNoDefinition) {
		t.Fatalf("expected ErrNoDefinition, got %v", err)
	}
}

func TestFlagErrors(t *testing.T) {
	setup(t, kaikki(t))
	tests := []struct {
		name string
		args []string
	}{
		{"lookup without word", []string{"lookup"}},
		{"unknown level", []string{"lookup", "--level", "expert", "apple"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := run(t, tc.args...); !errors.Is(err, ErrFlagParse) {
				t.Fatalf("expected ErrFlagParse, got %v", err)
			}
		})
	}
}
