// Package resolve fans dictionary lookups for a word list out over a
// bounded worker pool and partitions the outcome into defined and failed
// words.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/awesmubarak/koboanki/pkg/dictionary"
	"github.com/awesmubarak/koboanki/pkg/kobo"
)

// DefaultMaxWorkers caps the pool when MaxWorkers is unset.
const DefaultMaxWorkers = 50

// Reason classifies why a word could not be defined.
type Reason string

const (
	ReasonNotFound    Reason = "not_found"
	ReasonNetwork     Reason = "network"
	ReasonUnsupported Reason = "unsupported_language"
	ReasonAborted     Reason = "aborted"
	ReasonInternal    Reason = "internal"
)

// Lookuper is the dictionary capability the scheduler needs. Lookup
// returns nil, nil when a word has no entry.
type Lookuper interface {
	Lookup(ctx context.Context, word, lang string) (*dictionary.WordData, error)
}

// Lemmatizer yields dictionary-form candidates for an inflected word.
type Lemmatizer interface {
	BaseForms(word string) []string
}

// Failure records a word that could not be defined.
type Failure struct {
	Word     string
	Language string
	Reason   Reason
	Err      error
}

// Result is the outcome of Resolve. Defined is keyed by normalized word.
// Failed keeps the order the words first appeared in.
type Result struct {
	Defined map[string]*dictionary.WordData
	Failed  []Failure
	// Aborted is set when the run stopped before every word was tried.
	Aborted bool
}

// Scheduler resolves word lists concurrently.
type Scheduler struct {
	Dict       Lookuper
	MaxWorkers int
	// Fallbacks are languages tried after a word's own language.
	Fallbacks []string
	// Lemmatizer, when set, adds base-form candidates for Japanese words.
	Lemmatizer Lemmatizer
	Logger     *slog.Logger

	// PoolFactory allows tests to inject custom pool implementations.
	PoolFactory func(workers, queue int) Pool
}

// NewScheduler returns a Scheduler with the default worker cap.
func NewScheduler(dict Lookuper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		Dict:       dict,
		MaxWorkers: DefaultMaxWorkers,
		Logger:     logger,
	}
}

type outcome struct {
	index   int
	record  *dictionary.WordData
	failure *Failure
}

// Resolve looks up every distinct word in entries and blocks until all
// lookups finish. The first occurrence of a word decides its language.
// Cancelling ctx stops dispatch; words not yet resolved are reported with
// ReasonAborted and the lookups already collected are kept.
func (s *Scheduler) Resolve(ctx context.Context, entries []kobo.WordEntry) Result {
	log := s.logger()
	distinct := dedupe(entries)
	res := Result{Defined: make(map[string]*dictionary.WordData, len(distinct))}
	if len(distinct) == 0 {
		return res
	}

	maxWorkers := s.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	workers := min(maxWorkers, len(distinct))

	var pool Pool
	if s.PoolFactory != nil {
		pool = s.PoolFactory(workers, len(distinct))
	} else {
		pool = NewWorkerPool(workers, len(distinct))
	}

	// Buffered to the job count so workers never block on send.
	results := make(chan outcome, len(distinct))
	pool.Start(ctx)

	var dispatchErr error
	for i, e := range distinct {
		i, e := i, e
		err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
			results <- s.resolveOne(ctx, i, e)
			return nil
		})
		if err != nil {
			dispatchErr = err
			log.WarnContext(ctx, "dispatch stopped", slog.Int("dispatched", i), slog.Int("total", len(distinct)), slog.String("error", err.Error()))
			break
		}
	}
	pool.Close()
	close(results)

	outcomes := make([]*outcome, len(distinct))
	for o := range results {
		o := o
		outcomes[o.index] = &o
	}

	for i, e := range distinct {
		o := outcomes[i]
		switch {
		case o == nil:
			err := dispatchErr
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			if err == nil {
				err = errors.New("lookup did not run")
			}
			res.Failed = append(res.Failed, Failure{Word: e.Word, Language: e.Language, Reason: ReasonAborted, Err: err})
			res.Aborted = true
		case o.failure != nil:
			if o.failure.Reason == ReasonAborted {
				res.Aborted = true
			}
			res.Failed = append(res.Failed, *o.failure)
		default:
			res.Defined[e.Word] = o.record
		}
	}
	if ctx.Err() != nil {
		res.Aborted = true
	}

	log.InfoContext(ctx, "resolve finished",
		slog.Int("words", len(distinct)),
		slog.Int("workers", workers),
		slog.Int("defined", len(res.Defined)),
		slog.Int("failed", len(res.Failed)),
		slog.Bool("aborted", res.Aborted),
	)
	return res
}

// resolveOne tries each candidate language in order and returns the first
// usable record. A panic is confined to this word.
func (s *Scheduler) resolveOne(ctx context.Context, index int, e kobo.WordEntry) (out outcome) {
	out.index = index
	defer func() {
		if r := recover(); r != nil {
			s.logger().ErrorContext(ctx, "lookup panicked", slog.String("word", e.Word), slog.Any("panic", r))
			out.record = nil
			out.failure = &Failure{Word: e.Word, Language: e.Language, Reason: ReasonInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	var (
		netErr      error
		notFound    bool
		unsupported error
	)
	for _, lang := range s.candidates(e.Language) {
		for _, w := range s.forms(e.Word, lang) {
			if err := ctx.Err(); err != nil {
				out.failure = &Failure{Word: e.Word, Language: e.Language, Reason: ReasonAborted, Err: err}
				return out
			}
			rec, err := s.Dict.Lookup(ctx, w, lang)
			switch {
			case err == nil && rec != nil:
				out.record = rec
				return out
			case err == nil:
				notFound = true
				continue
			case errors.Is(err, dictionary.ErrUnsupportedLanguage):
				unsupported = err
			case ctx.Err() != nil:
				out.failure = &Failure{Word: e.Word, Language: e.Language, Reason: ReasonAborted, Err: err}
				return out
			default:
				netErr = err
				s.logger().WarnContext(ctx, "lookup failed",
					slog.String("word", w),
					slog.String("lang", lang),
					slog.String("error", err.Error()),
				)
				continue
			}
			// Unsupported languages reject every form alike.
			break
		}
	}

	f := &Failure{Word: e.Word, Language: e.Language}
	switch {
	case netErr != nil:
		f.Reason, f.Err = ReasonNetwork, netErr
	case notFound:
		f.Reason = ReasonNotFound
	case unsupported != nil:
		f.Reason, f.Err = ReasonUnsupported, unsupported
	default:
		f.Reason = ReasonNotFound
	}
	out.failure = f
	return out
}

// candidates lists the languages to try for lang: lang itself, its base
// subtag for regional variants, then the configured fallbacks.
func (s *Scheduler) candidates(lang string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(l string) {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, l)
	}
	add(lang)
	add(BaseLanguage(lang))
	for _, f := range s.Fallbacks {
		add(f)
	}
	return out
}

// forms lists the spellings to look up for word in lang.
func (s *Scheduler) forms(word, lang string) []string {
	out := []string{word}
	if s.Lemmatizer != nil && BaseLanguage(lang) == "ja" {
		out = append(out, s.Lemmatizer.BaseForms(word)...)
	}
	return out
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)).With("component", "resolve")
	}
	return s.Logger.With("component", "resolve")
}

// BaseLanguage returns the primary subtag of a language code, lowercased:
// "en-US" and "pt_BR" become "en" and "pt".
func BaseLanguage(lang string) string {
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(strings.TrimSpace(lang))
}

// dedupe keeps the first entry for each word.
func dedupe(entries []kobo.WordEntry) []kobo.WordEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]kobo.WordEntry, 0, len(entries))
	for _, e := range entries {
		if e.Word == "" || seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		out = append(out, e)
	}
	return out
}
