package machine

import "testing"

// S: push an A per 'a', F: pop an A per 'b'. Accepts "ab" style pairs
// with the bottom marker Z back on top at the end.
func pairPDA() *PDA {
	p := NewPDA("S", 'Z')
	p.AddTransition(PDATransition{From: "S", Input: 'a', Pop: 'Z', Push: "AZ", To: "S"})
	p.AddTransition(PDATransition{From: "S", Input: 'b', Pop: 'A', Push: "", To: "F"})
	p.AddFinalState("F")
	return p
}

func TestPDAAccepts(t *testing.T) {
	res := pairPDA().Run("ab", DefaultMaxSteps)
	if res.Verdict != VerdictAccepted {
		t.Fatalf("verdict = %v, want accepted", res.Verdict)
	}
	if len(res.Path) != 2 {
		t.Fatalf("path length = %d, want 2", len(res.Path))
	}

	first := res.Path[0]
	if first.Consumed != 'a' || first.Popped != 'Z' || first.Pushed != "AZ" {
		t.Fatalf("unexpected first step %+v", first)
	}
	if first.Stack != "AZ" { // push string reads top-to-bottom
		t.Fatalf("first stack snapshot = %q, want \"AZ\"", first.Stack)
	}
	if first.InputIndex != 1 {
		t.Fatalf("first input index = %d, want 1", first.InputIndex)
	}

	last := res.Path[len(res.Path)-1]
	if last.Stack != "Z" {
		t.Fatalf("final stack = %q, want \"Z\"", last.Stack)
	}
	if last.InputIndex != 2 {
		t.Fatalf("final input index = %d, want 2", last.InputIndex)
	}
}

func TestPDARejectsStackUnderflow(t *testing.T) {
	// "b" needs to pop A but only Z is on the stack.
	res := pairPDA().Run("b", DefaultMaxSteps)
	if res.Verdict != VerdictRejected {
		t.Fatalf("verdict = %v, want rejected", res.Verdict)
	}
	if res.Path != nil {
		t.Fatalf("rejected run carries a path: %v", res.Path)
	}
}

func TestPDARejectsPartialInput(t *testing.T) {
	// "a" leaves input unconsumed in S: acceptance needs both the final
	// state and a fully consumed input.
	res := pairPDA().Run("a", DefaultMaxSteps)
	if res.Verdict != VerdictRejected {
		t.Fatalf("verdict = %v, want rejected", res.Verdict)
	}
}

func TestPDAEpsilonMove(t *testing.T) {
	p := NewPDA("S", 'Z')
	p.AddTransition(PDATransition{From: "S", Input: 'a', Pop: Epsilon, Push: "", To: "M"})
	p.AddTransition(PDATransition{From: "M", Input: Epsilon, Pop: Epsilon, Push: "", To: "F"})
	p.AddFinalState("F")

	res := p.Run("a", DefaultMaxSteps)
	if res.Verdict != VerdictAccepted {
		t.Fatalf("verdict = %v, want accepted", res.Verdict)
	}
	if len(res.Path) != 2 {
		t.Fatalf("path length = %d, want 2", len(res.Path))
	}
	eps := res.Path[1]
	if eps.Consumed != Epsilon || eps.InputIndex != 1 {
		t.Fatalf("epsilon step did not preserve input index: %+v", eps)
	}
}

func TestPDAEpsilonCycleExhausts(t *testing.T) {
	p := NewPDA("S", 'Z')
	p.AddTransition(PDATransition{From: "S", Input: Epsilon, Pop: Epsilon, Push: "", To: "S"})
	p.AddFinalState("F") // unreachable

	res := p.Run("a", 100)
	if res.Verdict != VerdictExhausted {
		t.Fatalf("verdict = %v, want exhausted", res.Verdict)
	}
	if res.Steps != 100 {
		t.Fatalf("steps = %d, want the full budget of 100", res.Steps)
	}
}

func TestPDAEpsilonCycleFullBudget(t *testing.T) {
	// An epsilon self-loop drives the branch to the full default depth.
	// Each frame must stay constant-size for this to finish quickly.
	p := NewPDA("S", DefaultStackSymbol)
	p.AddTransition(PDATransition{From: "S", Input: Epsilon, Pop: Epsilon, Push: "", To: "S"})
	p.AddFinalState("F") // unreachable

	res := p.Run("", DefaultMaxSteps)
	if res.Verdict != VerdictExhausted {
		t.Fatalf("verdict = %v, want exhausted", res.Verdict)
	}
	if res.Steps != DefaultMaxSteps {
		t.Fatalf("steps = %d, want the full budget of %d", res.Steps, DefaultMaxSteps)
	}
}

func TestPDATinyBudgetExhausts(t *testing.T) {
	// The machine needs more than one configuration to accept "ab".
	res := pairPDA().Run("ab", 1)
	if res.Verdict != VerdictExhausted {
		t.Fatalf("verdict = %v, want exhausted", res.Verdict)
	}
}

func TestPDABacktracksAcrossBranches(t *testing.T) {
	// Declaration order sends the search into a dead branch first; the
	// accepting path must still be found.
	p := NewPDA("S", 'Z')
	p.AddTransition(PDATransition{From: "S", Input: 'a', Pop: Epsilon, Push: "", To: "D"}) // dead end
	p.AddTransition(PDATransition{From: "S", Input: 'a', Pop: Epsilon, Push: "", To: "F"})
	p.AddFinalState("F")

	res := p.Run("a", DefaultMaxSteps)
	if res.Verdict != VerdictAccepted {
		t.Fatalf("verdict = %v, want accepted", res.Verdict)
	}
	if len(res.Path) != 1 || res.Path[0].To != "F" {
		t.Fatalf("unexpected path after backtrack: %v", res.Path)
	}
}

func TestPDAAnBn(t *testing.T) {
	p := NewPDA("S", 'Z')
	p.AddTransition(PDATransition{From: "S", Input: 'a', Pop: Epsilon, Push: "A", To: "S"})
	p.AddTransition(PDATransition{From: "S", Input: 'b', Pop: 'A', Push: "", To: "T"})
	p.AddTransition(PDATransition{From: "T", Input: 'b', Pop: 'A', Push: "", To: "T"})
	p.AddTransition(PDATransition{From: "T", Input: Epsilon, Pop: 'Z', Push: "Z", To: "F"})
	p.AddFinalState("F")

	cases := []struct {
		input string
		want  Verdict
	}{
		{"ab", VerdictAccepted},
		{"aabb", VerdictAccepted},
		{"aaabbb", VerdictAccepted},
		{"aab", VerdictRejected},
		{"abb", VerdictRejected},
		{"ba", VerdictRejected},
	}
	for _, tc := range cases {
		if res := p.Run(tc.input, DefaultMaxSteps); res.Verdict != tc.want {
			t.Errorf("Run(%q) = %v, want %v", tc.input, res.Verdict, tc.want)
		}
	}
}

func TestPathStep(t *testing.T) {
	res := pairPDA().Run("ab", DefaultMaxSteps)
	if res.Verdict != VerdictAccepted {
		t.Fatalf("verdict = %v, want accepted", res.Verdict)
	}
	if _, ok := res.Path.Step(0); !ok {
		t.Fatal("step 0 missing")
	}
	if _, ok := res.Path.Step(len(res.Path) - 1); !ok {
		t.Fatal("last step missing")
	}
	if _, ok := res.Path.Step(len(res.Path)); ok {
		t.Fatal("step past the end should signal absence")
	}
	if _, ok := res.Path.Step(-1); ok {
		t.Fatal("negative step should signal absence")
	}
}
