// internal/i18n/store_test.go
//
// Unit-tests for the translation store using sqlmock so no live database
// is required.
//
// Run: go test ./internal/i18n -v

package i18n

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), "en"), mock
}

func catalogRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"context", "source", "disambiguation", "translation", "translation_plural",
	})
}

func TestTranslateLooksUpCatalog(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT context, source").
		WithArgs("pt").
		WillReturnRows(catalogRows().
			AddRow("Demo", "Hello", "", "Olá", ""))

	if got := s.Translate("pt", "Demo", "Hello", "", -1); got != "Olá" {
		t.Fatalf("Translate = %q, want Olá", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslatePluralAndCountSubstitution(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT context, source").
		WithArgs("pt").
		WillReturnRows(catalogRows().
			AddRow("Demo", "%n item", "", "%n item", "%n itens"))

	if got := s.Translate("pt", "Demo", "%n item", "", 3); got != "3 itens" {
		t.Fatalf("plural = %q, want 3 itens", got)
	}
	// Cached catalog, no second query.
	if got := s.Translate("pt", "Demo", "%n item", "", 1); got != "1 item" {
		t.Fatalf("singular = %q, want 1 item", got)
	}
	if got := s.Translate("pt", "Demo", "%n item", "", 0); got != "0 itens" {
		t.Fatalf("zero = %q, want 0 itens", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("catalog must be cached after first load: %v", err)
	}
}

func TestTranslateDisambiguationSeparatesHomographs(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT context, source").
		WithArgs("de").
		WillReturnRows(catalogRows().
			AddRow("Demo", "Open", "verb", "Öffnen", "").
			AddRow("Demo", "Open", "adjective", "Geöffnet", ""))

	if got := s.Translate("de", "Demo", "Open", "verb", -1); got != "Öffnen" {
		t.Fatalf("verb = %q", got)
	}
	if got := s.Translate("de", "Demo", "Open", "adjective", -1); got != "Geöffnet" {
		t.Fatalf("adjective = %q", got)
	}
}

func TestTranslateFallsBackToSource(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT context, source").
		WithArgs("fr").
		WillReturnRows(catalogRows()) // empty catalog

	if got := s.Translate("fr", "Demo", "Hello", "", -1); got != "Hello" {
		t.Fatalf("fallback = %q, want Hello", got)
	}
	// %n still substitutes on fallback text.
	if got := s.Translate("fr", "Demo", "%n results", "", 7); got != "7 results" {
		t.Fatalf("fallback count = %q, want 7 results", got)
	}
}

func TestTranslateEmptyLocaleUsesDefault(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT context, source").
		WithArgs("en").
		WillReturnRows(catalogRows().
			AddRow("Demo", "Hello", "", "Hello there", ""))

	if got := s.Translate("", "Demo", "Hello", "", -1); got != "Hello there" {
		t.Fatalf("default locale = %q", got)
	}
}

func TestTranslateWithoutDatabase(t *testing.T) {
	s := New(nil, "")
	if s.DefaultLocale() != "en" {
		t.Fatalf("default locale = %q, want en", s.DefaultLocale())
	}
	if got := s.Translate("pt", "Demo", "Hello", "", -1); got != "Hello" {
		t.Fatalf("nil-db fallback = %q, want Hello", got)
	}
}
