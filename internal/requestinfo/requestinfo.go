// internal/requestinfo/requestinfo.go
//
// Per-request metadata: user-agent fingerprint, IP and geolocation, URL,
// and timestamp.  These structs are inert — no database handles or large
// buffers — so they are safe to log or JSON-encode, and they ride on the
// execution context for components and views to read.
//
// Dependencies
// • github.com/avct/uasurfer          (UA parsing)
// • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
package requestinfo

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

//
// struct definitions
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw         string // entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", …
	Version     string // "124.0.6367"
	OS          string // "MacOSX", "Windows", "Android", …
	Device      string // "Computer", "Phone", "Tablet", "TV", …
	Platform    string // "Mac", "Windows", "Linux", …
	IsBot       bool
	PrimaryLang string // first tag from Accept-Language ("en", "es", …)
}

// Geo holds IP-based geolocation hints.  Best-effort; empty without a
// MaxMind database or on a miss.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", …
	City       string // "Chicago", "Paris", …
}

// RequestInfo is attached to the execution context and is therefore
// visible to every component of the request.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // pointer copy, read-only
	Timestamp time.Time
}

//
// package-level state
//

// geoReader is a singleton MaxMind handle.  Safe for concurrent reads,
// which is all we ever perform.  nil when geolocation is not configured.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database at startup.  Call from main()
// when geo.city_db is configured; without it Geo stays empty.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

//
// collection
//

// FromRequest assembles RequestInfo for one inbound request.
func FromRequest(r *http.Request) *RequestInfo {
	return &RequestInfo{
		UA:        parseUA(r),
		Geo:       lookupGeo(r),
		URL:       r.URL,
		Timestamp: time.Now(),
	}
}

// parseUA runs uasurfer over the User-Agent header and flattens the enum
// names into plain strings ("BrowserChrome" → "Chrome").
func parseUA(r *http.Request) UA {
	raw := r.UserAgent()
	ua := uasurfer.Parse(raw)

	ver := ua.Browser.Version
	version := ""
	if ver.Major > 0 || ver.Minor > 0 || ver.Patch > 0 {
		version = fmt.Sprintf("%d.%d.%d", ver.Major, ver.Minor, ver.Patch)
	}

	return UA{
		Raw:         raw,
		Browser:     strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		Version:     version,
		OS:          strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		Device:      strings.TrimPrefix(ua.DeviceType.String(), "Device"),
		Platform:    strings.TrimPrefix(ua.OS.Platform.String(), "Platform"),
		IsBot:       ua.IsBot(),
		PrimaryLang: primaryLang(r.Header.Get("Accept-Language")),
	}
}

// lookupGeo resolves the client IP against the MaxMind database when one
// was opened at startup.
func lookupGeo(r *http.Request) Geo {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	g := Geo{IP: ip}

	if geoReader == nil || ip == nil {
		return g
	}

	rec, err := geoReader.City(ip)
	if err != nil {
		zap.L().Debug("geo lookup failed", zap.String("ip", host), zap.Error(err))
		return g
	}
	g.CountryISO = rec.Country.IsoCode
	g.City = rec.City.Names["en"]
	return g
}

// primaryLang extracts the first language tag from an Accept-Language
// header ("pt-BR,pt;q=0.9,en;q=0.8" → "pt-BR").
func primaryLang(header string) string {
	if header == "" {
		return ""
	}
	first := header
	if i := strings.IndexByte(first, ','); i != -1 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i != -1 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}
