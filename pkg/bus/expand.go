// Package bus expands bracketed range specifiers used for bus and array
// notation, e.g. "D[0..7]" or "A[0..1].X[3,7]".
package bus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSpecifier reports a malformed bracket specifier.
var ErrSpecifier = errors.New("bus: invalid range specifier")

// MaxWidth bounds the number of names a single string may expand to.
const MaxWidth = 1 << 16

// Expand returns every concrete name described by s, in encounter order.
//
// Each specifier is crossed with the variants accumulated so far, left to
// right; literal text between and after specifiers is appended to every
// variant. A string without specifiers expands to itself. An unclosed '['
// is treated as literal text. Expansions wider than MaxWidth fail with
// ErrSpecifier.
func Expand(s string) ([]string, error) {
	variants := []string{""}
	rest := s
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			break
		}
		end += open

		items, err := specifier(rest[open+1 : end])
		if err != nil {
			return nil, fmt.Errorf("%w %q in %q", err, rest[open:end+1], s)
		}

		if len(items) > MaxWidth/len(variants) {
			return nil, fmt.Errorf("%w: %q expands to more than %d names", ErrSpecifier, s, MaxWidth)
		}

		prefix := rest[:open]
		next := make([]string, 0, len(variants)*len(items))
		for _, v := range variants {
			for _, item := range items {
				next = append(next, v+prefix+item)
			}
		}
		variants = next
		rest = rest[end+1:]
	}

	for i := range variants {
		variants[i] += rest
	}
	return variants, nil
}

// Width returns the number of names s expands to.
func Width(s string) (int, error) {
	names, err := Expand(s)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// HasSpecifier reports whether s contains at least one closed bracket pair.
func HasSpecifier(s string) bool {
	open := strings.IndexByte(s, '[')
	return open >= 0 && strings.IndexByte(s[open:], ']') > 0
}

func specifier(body string) ([]string, error) {
	var items []string
	for _, elem := range strings.Split(body, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		split := strings.Index(elem, "..")
		if split < 0 {
			if len(items) >= MaxWidth {
				return nil, ErrSpecifier
			}
			items = append(items, elem)
			continue
		}
		lo, err := strconv.Atoi(elem[:split])
		if err != nil {
			return nil, ErrSpecifier
		}
		hi, err := strconv.Atoi(elem[split+2:])
		if err != nil {
			return nil, ErrSpecifier
		}
		n := hi - lo
		if hi < lo {
			n = lo - hi
		}
		// n wraps negative on overflow.
		if n < 0 || n >= MaxWidth-len(items) {
			return nil, ErrSpecifier
		}
		if hi >= lo {
			for i := lo; i <= hi; i++ {
				items = append(items, strconv.Itoa(i))
			}
		} else {
			for i := lo; i >= hi; i-- {
				items = append(items, strconv.Itoa(i))
			}
		}
	}
	if len(items) == 0 {
		return nil, ErrSpecifier
	}
	return items, nil
}
