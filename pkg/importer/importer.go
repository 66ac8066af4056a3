// Package importer runs the device-to-collection import: read the device
// word list, skip words already in the collection, look up the rest,
// render cards and hand them to the host.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/awesmubarak/koboanki/pkg/cards"
	"github.com/awesmubarak/koboanki/pkg/kobo"
	"github.com/awesmubarak/koboanki/pkg/resolve"
)

var (
	// ErrDeviceNotFound is returned when no mounted volume carries the
	// device database.
	ErrDeviceNotFound = errors.New("importer: e-reader not found")
	// ErrHostWrite wraps host failures that abort the run.
	ErrHostWrite = errors.New("importer: host write failed")
)

// DefaultDeckName is used when Options.DeckName is empty.
const DefaultDeckName = "Kobo Words"

// Resolver turns word entries into dictionary records.
type Resolver interface {
	Resolve(ctx context.Context, entries []kobo.WordEntry) resolve.Result
}

// Options configures a Pipeline.
type Options struct {
	DeckName string
	Level    cards.Level
	// DevicePath skips device discovery when set.
	DevicePath string
	// Roots are scanned for the device when DevicePath is empty. Nil
	// selects kobo.DefaultRoots.
	Roots []string
	Tags  []string
	// Blacklist holds words that are never imported. Entries are
	// normalized like device words before matching.
	Blacklist []string
	Logger    *slog.Logger
}

// Pipeline is a single import run wired to its collaborators.
type Pipeline struct {
	resolver  Resolver
	host      Host
	opts      Options
	blacklist map[string]bool
	log       *slog.Logger
}

// New returns a Pipeline that resolves words with resolver and writes
// notes to host.
func New(resolver Resolver, host Host, opts Options) *Pipeline {
	if opts.DeckName == "" {
		opts.DeckName = DefaultDeckName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	blacklist := make(map[string]bool, len(opts.Blacklist))
	for _, w := range opts.Blacklist {
		if w = kobo.Normalize(w); w != "" {
			blacklist[w] = true
		}
	}
	return &Pipeline{
		resolver:  resolver,
		host:      host,
		opts:      opts,
		blacklist: blacklist,
		log:       logger.With("component", "importer"),
	}
}

// Run executes the import. Stage failures (device, storage, deck or note
// type setup, final save) end the run with an error. Per-word failures are
// collected in the Summary. When ctx is cancelled during lookups the words
// resolved so far are still added and the Summary is marked aborted; a
// cancel while checking known words returns the partial Summary before any
// lookup starts.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	path, err := p.devicePath()
	if err != nil {
		return nil, err
	}
	p.log.InfoContext(ctx, "reading device word list", slog.String("path", path))

	entries, err := kobo.ReadWords(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	entries = distinct(entries)
	sum := &Summary{Candidates: len(entries)}

	deck, err := p.host.EnsureDeck(ctx, p.opts.DeckName)
	if err != nil {
		return nil, fmt.Errorf("%w: ensure deck %q: %w", ErrHostWrite, p.opts.DeckName, err)
	}
	tmpl, err := p.opts.Level.Template()
	if err != nil {
		return nil, err
	}
	noteType, err := p.host.EnsureNoteType(ctx, NoteType{
		Name:   tmpl.Name,
		Fields: p.opts.Level.FieldNames(),
		Front:  tmpl.Front,
		Back:   tmpl.Back,
		CSS:    tmpl.CSS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ensure note type %q: %w", ErrHostWrite, tmpl.Name, err)
	}

	fresh, err := p.filterKnown(ctx, deck, entries, sum)
	if err != nil {
		return nil, err
	}
	if sum.Aborted {
		p.log.WarnContext(ctx, "import aborted while checking known words",
			slog.Int("unchecked", len(sum.Failed)),
		)
		return sum, nil
	}
	p.log.InfoContext(ctx, "filtered known words",
		slog.Int("candidates", len(entries)),
		slog.Int("ignored", len(sum.Ignored)),
		slog.Int("known", len(sum.Skipped)),
		slog.Int("to_lookup", len(fresh)),
	)

	res := p.resolver.Resolve(ctx, fresh)
	sum.Aborted = res.Aborted

	// Resolved words are written even after an abort.
	writeCtx := context.WithoutCancel(ctx)
	failed := make(map[string]resolve.Failure, len(res.Failed))
	for _, f := range res.Failed {
		failed[f.Word] = f
	}
	for _, e := range fresh {
		rec, ok := res.Defined[e.Word]
		if !ok {
			f := failed[e.Word]
			sum.Failed = append(sum.Failed, FailedWord{Word: e.Word, Language: e.Language, Reason: string(f.Reason)})
			continue
		}
		note := Note{
			NoteType: noteType,
			Key:      e.Word,
			Fields:   cards.Build(rec, p.opts.Level),
			Tags:     p.opts.Tags,
		}
		switch err := p.host.AddNote(writeCtx, note, deck); {
		case err == nil:
			sum.Added = append(sum.Added, e.Word)
		case errors.Is(err, ErrDuplicate):
			sum.Skipped = append(sum.Skipped, e.Word)
		default:
			p.log.WarnContext(ctx, "add note failed", slog.String("word", e.Word), slog.String("error", err.Error()))
			sum.Failed = append(sum.Failed, FailedWord{Word: e.Word, Language: e.Language, Reason: ReasonHostWrite})
		}
	}

	if err := p.host.Save(writeCtx); err != nil {
		return sum, fmt.Errorf("%w: save: %w", ErrHostWrite, err)
	}
	p.log.InfoContext(ctx, "import finished",
		slog.Int("added", len(sum.Added)),
		slog.Int("skipped", len(sum.Skipped)),
		slog.Int("failed", len(sum.Failed)),
		slog.Bool("aborted", sum.Aborted),
	)
	return sum, nil
}

func (p *Pipeline) devicePath() (string, error) {
	if p.opts.DevicePath != "" {
		return p.opts.DevicePath, nil
	}
	roots := p.opts.Roots
	if roots == nil {
		roots = kobo.DefaultRoots()
	}
	path, ok := kobo.Locate(roots)
	if !ok {
		return "", fmt.Errorf("%w (searched %s)", ErrDeviceNotFound, strings.Join(roots, ", "))
	}
	return path, nil
}

// filterKnown moves blacklisted words into sum.Ignored and words the deck
// already holds into sum.Skipped, and returns the rest. When ctx ends first,
// every word not yet looked up is failed as aborted and sum.Aborted is set.
func (p *Pipeline) filterKnown(ctx context.Context, deck DeckID, entries []kobo.WordEntry, sum *Summary) ([]kobo.WordEntry, error) {
	fresh := make([]kobo.WordEntry, 0, len(entries))
	for i, e := range entries {
		if p.blacklist[e.Word] {
			sum.Ignored = append(sum.Ignored, e.Word)
			continue
		}
		if ctx.Err() != nil {
			p.abortFrom(sum, fresh, entries[i:])
			return nil, nil
		}
		ids, err := p.host.FindNotes(ctx, NoteQuery{Deck: deck, Key: e.Word})
		if err != nil {
			if ctx.Err() != nil {
				p.abortFrom(sum, fresh, entries[i:])
				return nil, nil
			}
			return nil, fmt.Errorf("%w: find notes: %w", ErrHostWrite, err)
		}
		if len(ids) > 0 {
			sum.Skipped = append(sum.Skipped, e.Word)
			continue
		}
		fresh = append(fresh, e)
	}
	return fresh, nil
}

// abortFrom reports the words accepted so far and the unchecked rest as
// aborted. Blacklisted words among the rest are still ignored.
func (p *Pipeline) abortFrom(sum *Summary, fresh, rest []kobo.WordEntry) {
	sum.Aborted = true
	for _, e := range fresh {
		sum.Failed = append(sum.Failed, FailedWord{Word: e.Word, Language: e.Language, Reason: ReasonAborted})
	}
	for _, e := range rest {
		if p.blacklist[e.Word] {
			sum.Ignored = append(sum.Ignored, e.Word)
			continue
		}
		sum.Failed = append(sum.Failed, FailedWord{Word: e.Word, Language: e.Language, Reason: ReasonAborted})
	}
}

// distinct keeps the first entry for each word.
func distinct(entries []kobo.WordEntry) []kobo.WordEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]kobo.WordEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		out = append(out, e)
	}
	return out
}
