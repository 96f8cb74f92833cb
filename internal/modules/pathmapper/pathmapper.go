// Package pathmapper derives the output location for a scraped URL:
// <registrable domain>/<sanitized path and query>.md, safe on POSIX and
// Windows filesystems. Derive is a pure function; collision tracking across
// a run is the caller's concern and handled by Resolve.
package pathmapper

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL marks input that cannot be mapped to host + path. Callers
// treat it as a per-URL failure and keep processing.
var ErrInvalidURL = errors.New("invalid URL")

const (
	// maxFilenameBytes keeps a single segment well under the 255-byte
	// limit shared by ext4, APFS and NTFS.
	maxFilenameBytes = 200

	fallbackName = "index"
	extension    = ".md"
)

// illegalChars are bytes that are unsafe in a filename on at least one
// common filesystem. Control characters are rejected separately.
const illegalChars = `\/:*?"<>|`

// Mapped is the derived output location relative to the output root.
type Mapped struct {
	Domain   string
	Filename string
}

// RelPath joins domain and filename into the relative output path.
func (m Mapped) RelPath() string {
	return path.Join(m.Domain, m.Filename)
}

// Derive maps a URL to its output location. It is deterministic and free of
// side effects: the same URL always yields the same path, byte for byte.
// URLs without a scheme are assumed to be https. The returned filename never
// contains path separators or ".." segments since every separator byte is
// replaced during sanitization.
func Derive(rawURL string) (Mapped, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return Mapped{}, errors.Wrap(ErrInvalidURL, "empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Mapped{}, errors.Wrapf(ErrInvalidURL, "cannot parse %q: %v", rawURL, err)
	}
	if u.Hostname() == "" {
		return Mapped{}, errors.Wrapf(ErrInvalidURL, "no host in %q", rawURL)
	}

	name := truncate(sanitize(u), raw)

	return Mapped{
		Domain:   domainOf(u),
		Filename: name + extension,
	}, nil
}

// domainOf returns the registrable domain (eTLD+1) of the lower-cased
// hostname, which groups www.example.com and example.com under one
// directory. Hosts outside the public suffix list (localhost, IP literals)
// keep their hostname. The port is dropped either way.
func domainOf(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) != nil {
		// IPv6 colons are not directory-safe on Windows.
		return strings.ReplaceAll(host, ":", "_")
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

// sanitize builds the filename base from the escaped path plus the raw
// query. Keeping the query encoded into the name makes the mapping
// injective for distinct (host, path, query) triples; keeping the path in
// escaped form keeps URLs that differ only in percent-encoding apart.
func sanitize(u *url.URL) string {
	candidate := u.EscapedPath()
	if u.RawQuery != "" {
		candidate += "?" + u.RawQuery
	}

	candidate = strings.Trim(candidate, "/")
	candidate = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(illegalChars, r) {
			return '_'
		}
		return r
	}, candidate)
	candidate = strings.ToLower(candidate)

	if candidate == "" {
		return fallbackName
	}
	return candidate
}

// truncate caps name so that name + extension fits in maxFilenameBytes.
// A truncated name gets the URL hash appended, so two long URLs sharing a
// prefix cannot collide after losing their distinguishing tail.
func truncate(name, rawURL string) string {
	if len(name)+len(extension) <= maxFilenameBytes {
		return name
	}
	suffix := "_" + Hash(rawURL)
	return cutValidUTF8(name, maxFilenameBytes-len(extension)-len(suffix)) + suffix
}

// cutValidUTF8 shortens s to at most n bytes without splitting a rune.
func cutValidUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Hash is the stable 8-hex-digit disambiguator for a URL.
func Hash(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:4])
}

// Resolve records m in seen, which maps relative output paths to the raw
// URL that first claimed them, and disambiguates when a different URL
// already owns the path: the new URL's hash is appended to the filename, so
// the outcome depends only on the URL itself and nothing is silently
// overwritten. The caller owns seen, keeping Derive pure. The boolean
// reports whether a collision occurred.
func Resolve(m Mapped, rawURL string, seen map[string]string) (Mapped, bool) {
	rel := m.RelPath()
	owner, taken := seen[rel]
	if !taken {
		seen[rel] = rawURL
		return m, false
	}
	if owner == rawURL {
		return m, false
	}

	base := strings.TrimSuffix(m.Filename, extension)
	suffix := "_" + Hash(rawURL)
	if len(base)+len(suffix)+len(extension) > maxFilenameBytes {
		base = cutValidUTF8(base, maxFilenameBytes-len(extension)-len(suffix))
	}

	m.Filename = base + suffix + extension
	seen[m.RelPath()] = rawURL
	return m, true
}
