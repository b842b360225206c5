// Package keys builds Redis keys for cached view payloads.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const prefix = "gx:v1"

// View returns the cache key for one rendered view of a table. fingerprint
// identifies the view config the payload was built with.
func View(kind, table, fingerprint string) string {
	return fmt.Sprintf("%s%s:f=%s", TablePrefix(table), sanitize(kind), sanitize(fingerprint))
}

// TablePrefix is shared by every key of table. Sanitized names carry a hash of
// the raw name so tables that sanitize identically stay apart.
func TablePrefix(table string) string {
	raw := strings.TrimSpace(table)
	return fmt.Sprintf("%s:%s-%08x:", prefix, sanitize(raw), uint32(xxhash.Sum64String(raw)))
}

// Fingerprint hashes parts into a fixed-width hex string.
func Fingerprint(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

func sanitize(s string) string {
	const maxLen = 96
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case unicode.IsSpace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
		if b.Len() >= maxLen {
			break
		}
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
