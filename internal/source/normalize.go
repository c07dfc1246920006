package source

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxColumnName = 63

// NormalizeColumnName converts an arbitrary header into a lowercase
// identifier: diacritics are folded ("Příjem" -> "prijem"), separators become
// a single underscore, anything else outside [a-z0-9_] is dropped and the
// result is cut to 63 bytes.
func NormalizeColumnName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune("-./\\:;,()[]", r) {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			lastUnderscore = r == '_'
		}
	}

	out := strings.Trim(b.String(), "_")
	if len(out) > maxColumnName {
		out = strings.TrimRight(out[:maxColumnName], "_")
	}
	return out
}

// uniqueNames fills empty names with column_<n>, optionally normalizes, and
// suffixes repeats with _2, _3 and so on.
func uniqueNames(headers []string, normalize bool) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if normalize {
			name = NormalizeColumnName(name)
		}
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		base := name
		for n := seen[base]; n > 0; n++ {
			name = base + "_" + strconv.Itoa(n+1)
			if _, taken := seen[name]; !taken {
				break
			}
		}
		seen[base]++
		if name != base {
			seen[name]++
		}
		out[i] = name
	}
	return out
}
