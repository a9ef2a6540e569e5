package fdsnws

import "strings"

// Query is anything that can be encoded as a URL query string. Params,
// RawQuery and url.Values all satisfy it.
type Query interface {
	Encode() string
}

// RawQuery is a query string that is already encoded.
type RawQuery string

func (q RawQuery) Encode() string { return string(q) }

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Unlike url.Values it keeps
// insertion order when encoded.
type Params []Param

// Set replaces the value of key, or appends it if absent.
func (p *Params) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Map returns the parameters as a plain map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, kv := range p {
		out[kv.Key] = kv.Value
	}
	return out
}

func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeComponent(kv.Key))
		b.WriteByte('=')
		b.WriteString(escapeComponent(kv.Value))
	}
	return b.String()
}
