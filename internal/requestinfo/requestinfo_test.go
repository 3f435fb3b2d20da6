// internal/requestinfo/requestinfo_test.go

package requestinfo

import (
	"net/http/httptest"
	"testing"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func TestFromRequestParsesUA(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/x", nil)
	r.Header.Set("User-Agent", chromeUA)
	r.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	info := FromRequest(r)

	if info.UA.Browser != "Chrome" {
		t.Fatalf("browser = %q, want Chrome", info.UA.Browser)
	}
	if info.UA.Device != "Computer" {
		t.Fatalf("device = %q, want Computer", info.UA.Device)
	}
	if info.UA.IsBot {
		t.Fatalf("desktop Chrome flagged as bot")
	}
	if info.UA.PrimaryLang != "pt-BR" {
		t.Fatalf("primary lang = %q, want pt-BR", info.UA.PrimaryLang)
	}
	if info.URL.Path != "/x" {
		t.Fatalf("url = %v", info.URL)
	}
	if info.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestGeoWithoutDatabaseKeepsIPOnly(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/", nil)
	r.RemoteAddr = "203.0.113.7:1234"

	info := FromRequest(r)

	if got := info.Geo.IP.String(); got != "203.0.113.7" {
		t.Fatalf("ip = %q", got)
	}
	if info.Geo.CountryISO != "" || info.Geo.City != "" {
		t.Fatalf("geo fields must stay empty without a database: %+v", info.Geo)
	}
}

func TestPrimaryLang(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"en", "en"},
		{"en-US,en;q=0.5", "en-US"},
		{"fr;q=0.9", "fr"},
		{" de-DE , en ", "de-DE"},
	}
	for _, tc := range cases {
		if got := primaryLang(tc.in); got != tc.want {
			t.Fatalf("primaryLang(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
