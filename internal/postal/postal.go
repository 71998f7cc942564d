// Package postal maps Singapore postal codes to planning areas by prefix.
package postal

import (
	"strings"
	"unicode"
)

// NoCode is the placeholder the geocoder returns when an address has no postal code.
const NoCode = "NIL"

const codeLength = 6

// Resolver does longest-prefix matching over a 3-digit and a 2-digit table.
type Resolver struct {
	prefix3 map[string]string
	prefix2 map[string]string
}

// NewResolver builds a Resolver. The maps are not copied and must not be mutated.
func NewResolver(prefix3, prefix2 map[string]string) *Resolver {
	return &Resolver{prefix3: prefix3, prefix2: prefix2}
}

// Usable reports whether code is present and not the NoCode placeholder.
func Usable(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && !strings.EqualFold(code, NoCode)
}

// Normalize strips whitespace and left-pads with zeros to six digits.
func Normalize(code string) string {
	code = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	if code == "" {
		return ""
	}
	if n := len(code); n < codeLength {
		code = strings.Repeat("0", codeLength-n) + code
	}
	return code
}

// Resolve returns the planning area for a postal code. The 3-digit table is
// checked before the 2-digit table; absence is a normal outcome.
func (r *Resolver) Resolve(code string) (string, bool) {
	if !Usable(code) {
		return "", false
	}
	norm := Normalize(code)
	if len(norm) < 2 {
		return "", false
	}
	if len(norm) >= 3 {
		if area, ok := r.prefix3[norm[:3]]; ok {
			return area, true
		}
	}
	area, ok := r.prefix2[norm[:2]]
	return area, ok
}
