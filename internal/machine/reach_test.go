package machine

import (
	"reflect"
	"testing"
)

func finals(states ...State) map[State]struct{} {
	set := make(map[State]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// q0 -a-> q1 -b-> q2, accepting {q2}.
func abDFA() *TransitionTable {
	tbl := NewTransitionTable()
	tbl.Add("q0", 'a', "q1")
	tbl.Add("q1", 'b', "q2")
	return tbl
}

func TestAcceptedDFA(t *testing.T) {
	tbl := abDFA()
	fin := finals("q2")

	cases := []struct {
		input string
		want  bool
	}{
		{"ab", true},
		{"a", false},
		{"", false},
		{"b", false},
		{"abb", false},
	}
	for _, tc := range cases {
		if got := Accepted(tbl, "q0", fin, tc.input); got != tc.want {
			t.Errorf("Accepted(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestAcceptedIdempotent(t *testing.T) {
	tbl := abDFA()
	fin := finals("q2")
	first := Accepted(tbl, "q0", fin, "ab")
	for i := 0; i < 5; i++ {
		if got := Accepted(tbl, "q0", fin, "ab"); got != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, got, first)
		}
	}
}

func TestReachableNFASet(t *testing.T) {
	tbl := NewTransitionTable()
	tbl.Add("q0", 'a', "q0")
	tbl.Add("q0", 'a', "q1")
	tbl.Add("q1", 'b', "q2")

	got := Reachable(tbl, "q0", "a")
	want := []State{"q0", "q1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reachable(\"a\") = %v, want %v", got, want)
	}
}

func TestReachableOrderOfAddInvariant(t *testing.T) {
	// Same NFA built in two different Add orders.
	forward := NewTransitionTable()
	forward.Add("q0", 'a', "q0")
	forward.Add("q0", 'a', "q1")
	forward.Add("q1", 'b', "q2")

	backward := NewTransitionTable()
	backward.Add("q1", 'b', "q2")
	backward.Add("q0", 'a', "q1")
	backward.Add("q0", 'a', "q0")

	for _, input := range []string{"", "a", "ab", "aa", "aab", "ba"} {
		f := Reachable(forward, "q0", input)
		b := Reachable(backward, "q0", input)
		if !reflect.DeepEqual(f, b) {
			t.Errorf("input %q: forward %v, backward %v", input, f, b)
		}
	}
}

func TestReachableReconvergence(t *testing.T) {
	// Two paths reconverge on q2 at position 2; dedup must keep the
	// search linear and still report q2 once.
	tbl := NewTransitionTable()
	tbl.Add("q0", 'a', "q1")
	tbl.Add("q0", 'a', "q3")
	tbl.Add("q1", 'a', "q2")
	tbl.Add("q3", 'a', "q2")

	got := Reachable(tbl, "q0", "aa")
	want := []State{"q2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reachable(\"aa\") = %v, want %v", got, want)
	}
}

func TestEmptyStringAcceptedIffInitialFinal(t *testing.T) {
	tbl := abDFA()
	if Accepted(tbl, "q0", finals("q2"), "") {
		t.Fatal("empty string accepted although q0 is not final")
	}
	if !Accepted(tbl, "q0", finals("q0", "q2"), "") {
		t.Fatal("empty string rejected although q0 is final")
	}
}
