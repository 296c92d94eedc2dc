package machine

import (
	"strings"
	"testing"
)

func TestParseAlphabet(t *testing.T) {
	a, err := ParseAlphabet("(a,b,c)")
	if err != nil {
		t.Fatalf("ParseAlphabet: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("Len = %d, want 3", a.Len())
	}
	if !a.Contains('a') || !a.Contains('b') || !a.Contains('c') {
		t.Fatal("membership check failed")
	}
	if a.Contains('z') {
		t.Fatal("'z' should not be a member")
	}
	if got := a.String(); got != "(a,b,c)" {
		t.Fatalf("String = %q, want \"(a,b,c)\"", got)
	}
	syms := a.Symbols()
	if len(syms) != 3 || syms[0] != 'a' || syms[2] != 'c' {
		t.Fatalf("Symbols lost declaration order: %v", syms)
	}
}

func TestParseAlphabetWhitespace(t *testing.T) {
	a, err := ParseAlphabet("  ( a , b )  ")
	if err != nil {
		t.Fatalf("ParseAlphabet: %v", err)
	}
	if a.String() != "(a,b)" {
		t.Fatalf("String = %q, want \"(a,b)\"", a.String())
	}
}

func TestParseAlphabetErrors(t *testing.T) {
	cases := []struct {
		input   string
		wantSub string
	}{
		{"a,b", "parentheses"},
		{"(a,b", "parentheses"},
		{"()", "empty"},
		{"(ab,c)", "single character"},
		{"(a,,b)", "single character"},
		{"(a,b,a)", "duplicate"},
	}
	for _, tc := range cases {
		_, err := ParseAlphabet(tc.input)
		if err == nil {
			t.Errorf("ParseAlphabet(%q) succeeded, want error", tc.input)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Errorf("ParseAlphabet(%q) error %q, want mention of %q", tc.input, err, tc.wantSub)
		}
	}
}
