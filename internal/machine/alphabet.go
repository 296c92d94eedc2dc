package machine

import (
	"fmt"
	"strings"
)

// Alphabet is an ordered set of single-character symbols. The engine
// itself never consults it; it exists for the validation collaborators
// sitting in front of the engine.
type Alphabet struct {
	symbols []Symbol
}

// NewAlphabet builds an alphabet from symbols, keeping declaration order.
func NewAlphabet(symbols ...Symbol) Alphabet {
	return Alphabet{symbols: symbols}
}

// ParseAlphabet reads the canonical "(a,b,c)" form: parentheses required,
// comma-separated symbols of exactly one character each, no duplicates,
// at least one symbol.
func ParseAlphabet(s string) (Alphabet, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return Alphabet{}, fmt.Errorf("alphabet %q must be wrapped in parentheses", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return Alphabet{}, fmt.Errorf("alphabet is empty")
	}

	var a Alphabet
	for _, tok := range strings.Split(inner, ",") {
		tok = strings.TrimSpace(tok)
		if len(tok) != 1 {
			return Alphabet{}, fmt.Errorf("alphabet symbol %q must be a single character", tok)
		}
		sym := Symbol(tok[0])
		if a.Contains(sym) {
			return Alphabet{}, fmt.Errorf("duplicate alphabet symbol %q", tok)
		}
		a.symbols = append(a.symbols, sym)
	}
	return a, nil
}

// Contains reports membership.
func (a Alphabet) Contains(s Symbol) bool {
	for _, sym := range a.symbols {
		if sym == s {
			return true
		}
	}
	return false
}

// Symbols returns the symbols in declaration order.
func (a Alphabet) Symbols() []Symbol {
	out := make([]Symbol, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// Len reports the alphabet size.
func (a Alphabet) Len() int { return len(a.symbols) }

// String re-renders the canonical "(a,b,c)" form.
func (a Alphabet) String() string {
	parts := make([]string, len(a.symbols))
	for i, s := range a.symbols {
		parts[i] = string(rune(s))
	}
	return "(" + strings.Join(parts, ",") + ")"
}
