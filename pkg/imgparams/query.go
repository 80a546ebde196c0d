package imgparams

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Pair is a single query parameter.
type Pair struct {
	Key   string
	Value string
}

// query is an ordered list of query parameters.
type query []Pair

// MergeQuery layers pairs onto the query string of rawURL.
//
// Existing keys keep their position and take the new value; new keys are
// appended in argument order. A repeated key in rawURL collapses into one
// only when pairs overwrite it; other repeated keys are kept as they are.
// A fragment is preserved. With no pairs, rawURL is returned unchanged.
//
// rawURL is never validated: anything before the first '?' is kept as-is.
func MergeQuery(rawURL string, pairs ...Pair) string {
	if len(pairs) == 0 {
		return rawURL
	}

	base, fragment, hasFragment := strings.Cut(rawURL, "#")
	path, rawQuery, _ := strings.Cut(base, "?")

	q := parseQuery(rawQuery)
	for _, p := range pairs {
		q = q.set(p.Key, p.Value)
	}

	var b strings.Builder
	b.WriteString(path)
	if len(q) > 0 {
		b.WriteByte('?')
		b.WriteString(q.encode())
	}
	if hasFragment {
		b.WriteByte('#')
		b.WriteString(fragment)
	}
	return b.String()
}

func parseQuery(raw string) query {
	var q query
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		q = append(q, Pair{Key: unescape(k), Value: unescape(v)})
	}
	return q
}

// set overwrites the first occurrence of key and drops later duplicates,
// or appends the pair when key is absent.
func (q query) set(key, value string) query {
	found := false
	out := q[:0]
	for _, p := range q {
		if p.Key != key {
			out = append(out, p)
			continue
		}
		if !found {
			out = append(out, Pair{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, Pair{Key: key, Value: value})
	}
	return out
}

func (q query) encode() string {
	parts := make([]string, len(q))
	for i, p := range q {
		parts[i] = escape(p.Key) + "=" + escape(p.Value)
	}
	return strings.Join(parts, "&")
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

const upperhex = "0123456789ABCDEF"

// escape percent-encodes s the way browser query builders do: space becomes
// %20 and only A-Z a-z 0-9 - _ . ! ~ * ' ( ) are left as-is.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// formatFloat renders f in its shortest round-trip form (0.5, 1, 0.25).
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
