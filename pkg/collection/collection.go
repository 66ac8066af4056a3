// Package collection is a SQLite flashcard collection implementing the
// importer's host contract.
package collection

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/awesmubarak/koboanki/pkg/importer"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDuplicate is returned by AddNote for a key the deck already holds.
var ErrDuplicate = importer.ErrDuplicate

// fieldSep joins note fields in storage.
const fieldSep = "\x1f"

type noteKey struct {
	deck importer.DeckID
	key  string
}

// Collection is a flashcard collection stored in one SQLite file. Notes
// added are queued on a BatchWriter and committed by Save.
type Collection struct {
	db  *sql.DB
	log *slog.Logger

	batchSize     int
	flushInterval time.Duration

	mu         sync.Mutex
	bw         *BatchWriter
	pending    map[noteKey]bool
	fieldOrder map[importer.NoteTypeID][]string
}

// Option configures Open.
type Option func(*Collection)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBatchSize sets how many notes are committed per transaction.
func WithBatchSize(n int) Option {
	return func(c *Collection) { c.batchSize = n }
}

// WithFlushInterval commits queued notes on an interval as well as on Save.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Collection) { c.flushInterval = d }
}

// Open opens or creates the collection at path and applies pending
// migrations. ":memory:" gives a private in-memory collection.
func Open(ctx context.Context, path string, opts ...Option) (*Collection, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("collection: open %s: %w", path, err)
	}
	// One connection serializes writers and keeps :memory: databases intact.
	db.SetMaxOpenConns(1)

	c := &Collection{
		db:         db,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		batchSize:  50,
		pending:    map[noteKey]bool{},
		fieldOrder: map[importer.NoteTypeID][]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "collection")

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	c.bw = c.newBatchWriter()
	return c, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("collection: migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("collection: goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("collection: goose up: %w", err)
	}
	return nil
}

func (c *Collection) newBatchWriter() *BatchWriter {
	bw := NewBatchWriter(c.db, c.batchSize, c.flushInterval)
	bw.OnError = func(err error) {
		c.log.Error("batch commit failed", slog.String("error", err.Error()))
	}
	return bw
}

// Close commits queued notes and closes the database.
func (c *Collection) Close() error {
	c.mu.Lock()
	err := c.bw.Close()
	c.mu.Unlock()
	if err == ErrBatchWriterClosed {
		err = nil
	}
	return errors.Join(err, c.db.Close())
}
