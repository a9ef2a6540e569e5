// Package keys derives cache keys for FDSNWS responses.
//
// Layout: fdsnws:<service>:<network>:f=<xxhash64 of the normalized query>.
// The network segment is the single plain network code of the query, or
// AnyNetwork when the query names none, several, or a wildcard pattern.
package keys

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const (
	Namespace  = "fdsnws"
	AnyNetwork = "_"
)

func Key(service, rawQuery string) string {
	norm := NormalizeQuery(rawQuery)
	return fmt.Sprintf("%s%s:f=%016x", Prefix(service, NetworkOf(rawQuery)), xxhash.Sum64String(norm))
}

// Prefix returns the key prefix shared by every response of one network.
func Prefix(service, network string) string {
	if network == "" {
		network = AnyNetwork
	}
	return fmt.Sprintf("%s:%s:%s:", Namespace, sanitize(strings.TrimSpace(service)), network)
}

// NetworkOf extracts the bucket network from an encoded query. Both the
// long ("network") and short ("net") parameter names are honored.
func NetworkOf(rawQuery string) string {
	vals, err := url.ParseQuery(rawQuery)
	if err != nil {
		return AnyNetwork
	}
	v := vals.Get("network")
	if v == "" {
		v = vals.Get("net")
	}
	return NormalizeNetwork(v)
}

// NormalizeNetwork upper-cases a plain network code. Lists and wildcard
// patterns map to AnyNetwork.
func NormalizeNetwork(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return AnyNetwork
	}
	for _, r := range code {
		if !isAlphaNum(r) {
			return AnyNetwork
		}
	}
	return code
}

// NormalizeQuery orders parameters by key so that equivalent queries hash
// alike. Values keep their order since comma lists are significant.
func NormalizeQuery(rawQuery string) string {
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })
	slices.SortStableFunc(parts, func(a, b string) int {
		ka, _, _ := strings.Cut(a, "=")
		kb, _, _ := strings.Cut(b, "=")
		return strings.Compare(ka, kb)
	})
	return strings.Join(parts, "&")
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := r
		switch {
		case unicode.IsSpace(r):
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
