// internal/i18n/store.go
//
// Locale catalog store backed by SQL.
//
// Context
// -------
// Translations live in a `translation` table keyed by locale, message
// context, source text, and disambiguation, with singular and plural
// forms.  Catalogs are loaded lazily per locale — singleflight collapses
// concurrent first hits — and kept in a small LRU so rarely-seen locales
// do not pin memory.
//
// Translate never fails: a missing catalog, row, or database simply falls
// back to the source text, with `%n` substituted when a count is given.
//
// Notes
// -----
// • Pass n = -1 for messages without a count; any n ≥ 0 substitutes `%n`
//   and selects the plural form when n != 1.
// • Oxford commas, two spaces after periods.
package i18n

import (
	"strconv"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/relay/internal/cache"
)

const catalogQuery = `SELECT context, source, disambiguation, translation, translation_plural FROM translation WHERE locale = ?`

// entry is one translated message.
type entry struct {
	Context        string `db:"context"`
	Source         string `db:"source"`
	Disambiguation string `db:"disambiguation"`
	Translation    string `db:"translation"`
	Plural         string `db:"translation_plural"`
}

type catalog map[string]entry

// Store loads and caches locale catalogs.  Safe for concurrent use.
type Store struct {
	db            *sqlx.DB
	defaultLocale string

	sf       singleflight.Group
	catMu    sync.Mutex
	catalogs *cache.LRU
}

// New returns a store reading from db.  db may be nil; the store then
// serves source-text fallbacks only.
func New(db *sqlx.DB, defaultLocale string) *Store {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Store{
		db:            db,
		defaultLocale: defaultLocale,
		catalogs:      cache.New(64),
	}
}

// DefaultLocale returns the configured fallback locale tag.
func (s *Store) DefaultLocale() string { return s.defaultLocale }

// Translate localizes source for locale.  context scopes the message
// (usually a controller name), disambiguation separates homographs, and
// n ≥ 0 selects singular/plural and substitutes `%n`.
func (s *Store) Translate(locale, context, source, disambiguation string, n int) string {
	if locale == "" {
		locale = s.defaultLocale
	}

	out := source
	if cat := s.catalog(locale); cat != nil {
		if e, ok := cat[key(context, source, disambiguation)]; ok {
			if n >= 0 && n != 1 && e.Plural != "" {
				out = e.Plural
			} else if e.Translation != "" {
				out = e.Translation
			}
		}
	}

	if n >= 0 {
		out = strings.ReplaceAll(out, "%n", strconv.Itoa(n))
	}
	return out
}

// catalog returns the locale's message map, loading it at most once per
// eviction cycle.  nil when the store has no database or the load failed.
func (s *Store) catalog(locale string) catalog {
	if s.db == nil {
		return nil
	}

	s.catMu.Lock()
	if v, ok := s.catalogs.Get(locale); ok {
		s.catMu.Unlock()
		return v.(catalog)
	}
	s.catMu.Unlock()

	v, err, _ := s.sf.Do(locale, func() (any, error) {
		var rows []entry
		if err := s.db.Select(&rows, catalogQuery, locale); err != nil {
			return nil, err
		}
		cat := make(catalog, len(rows))
		for _, e := range rows {
			cat[key(e.Context, e.Source, e.Disambiguation)] = e
		}
		return cat, nil
	})
	if err != nil {
		zap.L().Warn("translation catalog load failed",
			zap.String("locale", locale), zap.Error(err))
		return nil
	}

	cat := v.(catalog)
	s.catMu.Lock()
	s.catalogs.Add(locale, cat)
	s.catMu.Unlock()
	return cat
}

// key joins the lookup tuple with a separator no message should contain.
func key(context, source, disambiguation string) string {
	return context + "\x1f" + source + "\x1f" + disambiguation
}
