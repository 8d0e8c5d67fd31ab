package query

import (
	"net/url"
	"slices"
	"strings"
)

// Parameter names understood by the API.
const (
	KeyPage       = "page"
	KeyLimit      = "limit"
	KeySortBy     = "sortBy"
	KeySortOrder  = "sortOrder"
	KeySearch     = "search"
	KeyDepartment = "department"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter set. Unlike url.Values it keeps insertion
// order, so two serializations of the same State encode identically.
type Params []Param

// Get returns the value for key and whether it is present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Equal reports whether both sets hold the same parameters in the same order.
func (p Params) Equal(o Params) bool {
	return slices.Equal(p, o)
}

// Values converts p into url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, kv := range p {
		v.Add(kv.Key, kv.Value)
	}
	return v
}

// Encode renders p as a URL query string in order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return p.Encode()
}
