package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/awesmubarak/koboanki/pkg/importer"
)

var _ importer.Host = (*Collection)(nil)

// StoredNote is a note as persisted in the collection.
type StoredNote struct {
	ID       importer.NoteID
	GUID     string
	Deck     importer.DeckID
	NoteType importer.NoteTypeID
	Key      string
	Fields   map[string]string
	Tags     []string
}

// isUniqueConstraintErr reports whether err is a unique or constraint violation.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// EnsureDeck returns the id of the named deck, creating it when missing.
func (c *Collection) EnsureDeck(ctx context.Context, name string) (importer.DeckID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("collection: deck name must be non-empty")
	}

	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		var id int64
		err := c.db.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, name).Scan(&id)
		if err == nil {
			return importer.DeckID(id), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("collection: find deck: %w", err)
		}

		res, err := c.db.ExecContext(ctx, `INSERT INTO decks (name) VALUES (?)`, name)
		if err != nil {
			// Another writer created it first; read it back.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, fmt.Errorf("collection: create deck: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
		c.log.InfoContext(ctx, "created deck", "deck", name)
		return importer.DeckID(id), nil
	}
	return 0, fmt.Errorf("collection: could not create or get deck %q after %d retries", name, maxRetries)
}

// EnsureNoteType returns the id of the note type named nt.Name. An existing
// type gets its templates refreshed; its field list must match.
func (c *Collection) EnsureNoteType(ctx context.Context, nt importer.NoteType) (importer.NoteTypeID, error) {
	if strings.TrimSpace(nt.Name) == "" {
		return 0, fmt.Errorf("collection: note type name must be non-empty")
	}
	if len(nt.Fields) == 0 {
		return 0, fmt.Errorf("collection: note type %q has no fields", nt.Name)
	}
	fields := strings.Join(nt.Fields, fieldSep)

	var id int64
	var existing string
	err := c.db.QueryRowContext(ctx, `SELECT id, fields FROM note_types WHERE name = ?`, nt.Name).Scan(&id, &existing)
	switch {
	case err == nil:
		if existing != fields {
			return 0, fmt.Errorf("collection: note type %q exists with fields %q", nt.Name, strings.Split(existing, fieldSep))
		}
		if _, err := c.db.ExecContext(ctx,
			`UPDATE note_types SET front = ?, back = ?, css = ? WHERE id = ?`,
			nt.Front, nt.Back, nt.CSS, id,
		); err != nil {
			return 0, fmt.Errorf("collection: update note type: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		err := c.db.QueryRowContext(ctx,
			`INSERT INTO note_types (name, fields, front, back, css) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET front = excluded.front
			 RETURNING id`,
			nt.Name, fields, nt.Front, nt.Back, nt.CSS,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("collection: create note type: %w", err)
		}
		c.log.InfoContext(ctx, "created note type", "note_type", nt.Name, "fields", len(nt.Fields))
	default:
		return 0, fmt.Errorf("collection: find note type: %w", err)
	}

	c.mu.Lock()
	c.fieldOrder[importer.NoteTypeID(id)] = append([]string{}, nt.Fields...)
	c.mu.Unlock()
	return importer.NoteTypeID(id), nil
}

// FindNotes returns the ids of committed notes matching q.
func (c *Collection) FindNotes(ctx context.Context, q importer.NoteQuery) ([]importer.NoteID, error) {
	sb := squirrel.Select("id").From("notes").Where(squirrel.Eq{"sort_key": q.Key}).OrderBy("id")
	if q.Deck != 0 {
		sb = sb.Where(squirrel.Eq{"deck_id": int64(q.Deck)})
	}
	if q.NoteType != 0 {
		sb = sb.Where(squirrel.Eq{"note_type_id": int64(q.NoteType)})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("collection: build query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: find notes: %w", err)
	}
	defer rows.Close()
	var out []importer.NoteID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, importer.NoteID(id))
	}
	return out, rows.Err()
}

// AddNote queues n for insertion into deck. It returns ErrDuplicate when the
// deck already has, or has queued, a note with the same key. The note is
// written by the next Save.
func (c *Collection) AddNote(ctx context.Context, n importer.Note, deck importer.DeckID) error {
	key := strings.TrimSpace(n.Key)
	if key == "" {
		return fmt.Errorf("collection: note key must be non-empty")
	}
	if deck <= 0 {
		return fmt.Errorf("collection: deck id must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.fieldOrder[n.NoteType]
	if !ok {
		return fmt.Errorf("collection: unknown note type %d", n.NoteType)
	}
	nk := noteKey{deck: deck, key: key}
	if c.pending[nk] {
		return ErrDuplicate
	}
	var exists int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE deck_id = ? AND sort_key = ?`, int64(deck), key).Scan(&exists)
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("collection: check duplicate: %w", err)
	}

	values := make([]string, len(order))
	for i, name := range order {
		values[i] = n.Fields[name]
	}
	guid := uuid.NewString()
	fields := strings.Join(values, fieldSep)
	tags := strings.Join(n.Tags, " ")

	if err := c.bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notes (guid, deck_id, note_type_id, sort_key, fields, tags) VALUES (?, ?, ?, ?, ?, ?)`,
			guid, int64(deck), int64(n.NoteType), key, fields, tags,
		)
		if err != nil {
			return fmt.Errorf("insert note %q: %w", key, err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("collection: queue note: %w", err)
	}
	c.pending[nk] = true
	return nil
}

// Save commits every queued note. A failed batch rolls back only its own
// notes; the first failure is returned.
func (c *Collection) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	queued := len(c.pending)
	err := c.bw.Close()
	c.bw = c.newBatchWriter()
	c.pending = map[noteKey]bool{}
	if err != nil {
		return fmt.Errorf("collection: save: %w", err)
	}
	c.log.InfoContext(ctx, "saved notes", "count", queued)
	return nil
}

// ListNotes returns the committed notes of the named deck in insertion order.
func (c *Collection) ListNotes(ctx context.Context, deckName string) ([]StoredNote, error) {
	query, args, err := squirrel.
		Select("n.id", "n.guid", "n.deck_id", "n.note_type_id", "n.sort_key", "n.fields", "n.tags", "t.fields").
		From("notes n").
		Join("decks d ON d.id = n.deck_id").
		Join("note_types t ON t.id = n.note_type_id").
		Where(squirrel.Eq{"d.name": deckName}).
		OrderBy("n.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("collection: build query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collection: list notes: %w", err)
	}
	defer rows.Close()

	var out []StoredNote
	for rows.Next() {
		var (
			n                    StoredNote
			id, deck, noteType   int64
			values, tags, fields string
		)
		if err := rows.Scan(&id, &n.GUID, &deck, &noteType, &n.Key, &values, &tags, &fields); err != nil {
			return nil, err
		}
		n.ID, n.Deck, n.NoteType = importer.NoteID(id), importer.DeckID(deck), importer.NoteTypeID(noteType)
		names := strings.Split(fields, fieldSep)
		vals := strings.Split(values, fieldSep)
		n.Fields = make(map[string]string, len(names))
		for i, name := range names {
			if i < len(vals) {
				n.Fields[name] = vals[i]
			}
		}
		if tags != "" {
			n.Tags = strings.Fields(tags)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
