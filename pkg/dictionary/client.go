// Package dictionary looks words up in the Kaikki machine-readable
// Wiktionary extract.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL   = "https://kaikki.org/dictionary"
	DefaultTimeout   = 5 * time.Second
	DefaultCacheSize = 1024

	// maxBodySize caps a response body. Kaikki shards are per word so real
	// responses stay far below this.
	maxBodySize = 64 << 20
)

var (
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("dictionary: network error")
	// ErrUnsupportedLanguage is returned for language codes with no Kaikki
	// mapping.
	ErrUnsupportedLanguage = errors.New("dictionary: unsupported language")
)

// NetworkError reports a transient failure reaching the dictionary:
// a transport error or an unexpected HTTP status.
type NetworkError struct {
	Word     string
	Language string
	Status   int // 0 when no response was received
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("dictionary: lookup %q (%s): unexpected status %d", e.Word, e.Language, e.Status)
	}
	return fmt.Sprintf("dictionary: lookup %q (%s): %v", e.Word, e.Language, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	CacheSize  int
	UserAgent  string
	HTTPClient *http.Client
}

type cacheKey struct {
	word string
	lang string
}

// Client fetches and parses Kaikki entries. Found and not-found results
// are memoized in a bounded LRU; concurrent lookups of the same key share
// one request. A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger

	cache *lru.Cache[cacheKey, *WordData]
	group singleflight.Group
}

// NewClient builds a Client. A nil logger discards output.
func NewClient(logger *slog.Logger, opts Options) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "koboanki"
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	cache, err := lru.New[cacheKey, *WordData](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("dictionary: create cache: %w", err)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		httpClient: hc,
		log:        logger.With("component", "dictionary"),
		cache:      cache,
	}, nil
}

// Lookup returns the entry for word in lang. It returns nil, nil when the
// dictionary has no usable entry. Network failures are returned as
// *NetworkError and are not cached.
func (c *Client) Lookup(ctx context.Context, word, lang string) (*WordData, error) {
	name, ok := LanguageName(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, nil
	}

	key := cacheKey{word: word, lang: strings.ToLower(lang)}
	if rec, ok := c.cache.Get(key); ok {
		c.log.DebugContext(ctx, "cache hit", slog.String("word", word), slog.String("lang", key.lang))
		return rec, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Word: word, Language: key.lang, Err: err}
	}
	ch := c.group.DoChan(key.word+"\x00"+key.lang, func() (any, error) {
		if rec, ok := c.cache.Get(key); ok {
			return rec, nil
		}
		// Every waiter on this key shares the request, so no single
		// caller's cancellation may end it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		rec, err := c.fetch(fetchCtx, word, key.lang, name)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, rec)
		return rec, nil
	})
	select {
	case <-ctx.Done():
		return nil, &NetworkError{Word: word, Language: key.lang, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*WordData), nil
	}
}

// CacheLen returns the number of memoized lookups.
func (c *Client) CacheLen() int { return c.cache.Len() }

// EntryURL returns the Kaikki URL for a lowercase word and language name.
func (c *Client) EntryURL(word, languageName string) string {
	runes := []rune(word)
	first := string(runes[:1])
	firstTwo := string(runes[:min(2, len(runes))])
	return fmt.Sprintf("%s/%s/meaning/%s/%s/%s.jsonl",
		c.baseURL,
		url.PathEscape(languageName),
		url.PathEscape(first),
		url.PathEscape(firstTwo),
		url.PathEscape(word),
	)
}

func (c *Client) fetch(ctx context.Context, word, lang, languageName string) (*WordData, error) {
	reqURL := c.EntryURL(word, languageName)
	c.log.DebugContext(ctx, "kaikki request", slog.String("word", word), slog.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Word: word, Language: lang, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/jsonl, application/json;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Word: word, Language: lang, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.log.DebugContext(ctx, "kaikki not found", slog.String("word", word), slog.String("lang", lang))
		return nil, nil
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &NetworkError{Word: word, Language: lang, Status: resp.StatusCode}
	}

	rec, err := parseJSONL(io.LimitReader(resp.Body, maxBodySize), word, lang)
	if err != nil {
		return nil, &NetworkError{Word: word, Language: lang, Err: err}
	}

	senses := 0
	if rec != nil {
		senses = len(rec.Senses)
	}
	c.log.DebugContext(ctx, "kaikki response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("senses", senses),
	)
	return rec, nil
}
