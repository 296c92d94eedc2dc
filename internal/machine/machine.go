// Package machine implements the simulation engine for the three machine
// kinds ZFlap edits: finite automata (DFA/NFA), pushdown automata and
// Turing machines. The engine is pure: it performs no I/O, no persistence
// and no alphabet validation of its own — an out-of-alphabet symbol simply
// finds no matching transition. All searches are synchronous and
// single-threaded; callers wanting cancellation run them on their own
// worker.
package machine

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// State identifies a control state. Equality is the only operation the
// engine needs; states carry no implicit structure.
type State string

// Symbol is a single character from a finite alphabet. The zero Symbol
// doubles as epsilon (PDA input/pop) and as the blank alias (TM read/write).
type Symbol byte

// Epsilon is the zero Symbol: consumes no input, pops nothing.
const Epsilon Symbol = 0

// DefaultBlank is the tape blank the workbench uses for Turing machines.
const DefaultBlank Symbol = '_'

// DefaultStackSymbol is the PDA stack-bottom marker, displayed as "Z0".
const DefaultStackSymbol Symbol = 'Z'

func (s Symbol) String() string {
	if s == Epsilon {
		return "ε"
	}
	return string(rune(s))
}

// Kind names a machine class.
type Kind string

const (
	KindFinite   Kind = "finite"
	KindPushdown Kind = "pushdown"
	KindTuring   Kind = "turing"
)

// Valid reports whether k names a known machine class.
func (k Kind) Valid() bool {
	switch k {
	case KindFinite, KindPushdown, KindTuring:
		return true
	}
	return false
}

// Rule is one finite-automaton transition row as the editor declares it.
type Rule struct {
	From   State
	Symbol Symbol
	To     State
}

// Definition is the in-memory machine the workbench edits and the stores
// persist. Exactly one of the transition slices is populated, per Kind.
type Definition struct {
	Name     string
	Kind     Kind
	Alphabet Alphabet
	States   []State
	Initial  State
	Finals   []State
	Rules    []Rule

	PDATransitions []PDATransition
	TMTransitions  []TMTransition
	StackSymbol    Symbol // PDA stack bottom; DefaultStackSymbol when zero
}

// AutoStateName yields the editor's q0, q1, ... naming scheme.
func AutoStateName(n int) State {
	return State(fmt.Sprintf("q%d", n))
}

// HasState reports whether s is declared.
func (d *Definition) HasState(s State) bool {
	for _, st := range d.States {
		if st == s {
			return true
		}
	}
	return false
}

// IsFinal reports whether s is an accepting state.
func (d *Definition) IsFinal(s State) bool {
	for _, f := range d.Finals {
		if f == s {
			return true
		}
	}
	return false
}

// FinalSet returns the accepting states as a set.
func (d *Definition) FinalSet() map[State]struct{} {
	set := make(map[State]struct{}, len(d.Finals))
	for _, f := range d.Finals {
		set[f] = struct{}{}
	}
	return set
}

// Bottom returns the PDA stack-bottom symbol, defaulted.
func (d *Definition) Bottom() Symbol {
	if d.StackSymbol == 0 {
		return DefaultStackSymbol
	}
	return d.StackSymbol
}

// Table builds the transition table for a finite definition. The table is
// a fresh snapshot; later edits to the definition do not touch it.
func (d *Definition) Table() *TransitionTable {
	t := NewTransitionTable()
	for _, r := range d.Rules {
		t.Add(r.From, r.Symbol, r.To)
	}
	return t
}

// PDA builds a runnable pushdown simulator from the definition.
func (d *Definition) PDA() *PDA {
	p := NewPDA(d.Initial, d.Bottom())
	for _, t := range d.PDATransitions {
		p.AddTransition(t)
	}
	for _, f := range d.Finals {
		p.AddFinalState(f)
	}
	return p
}

// TM builds a runnable Turing simulator from the definition.
func (d *Definition) TM() *TM {
	m := NewTM(d.Initial, DefaultBlank)
	for _, t := range d.TMTransitions {
		m.AddTransition(t)
	}
	for _, f := range d.Finals {
		m.AddFinalState(f)
	}
	return m
}

// Validate checks referential integrity before simulation ever runs:
// declared initial and finals, declared transition endpoints, transition
// symbols inside the alphabet (plus the stack bottom for PDA pops/pushes,
// plus blank for TM reads/writes). Unknown names carry a did-you-mean
// suggestion when a declared name is close enough.
func (d *Definition) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("unknown machine kind %q", d.Kind)
	}
	if len(d.States) == 0 {
		return fmt.Errorf("machine has no states")
	}
	if d.Initial == "" {
		return fmt.Errorf("machine has no initial state")
	}
	if !d.HasState(d.Initial) {
		return d.unknownState(d.Initial)
	}
	for _, f := range d.Finals {
		if !d.HasState(f) {
			return d.unknownState(f)
		}
	}
	switch d.Kind {
	case KindFinite:
		for _, r := range d.Rules {
			if err := d.checkEndpoints(r.From, r.To); err != nil {
				return err
			}
			if !d.Alphabet.Contains(r.Symbol) {
				return d.unknownSymbol(r.Symbol)
			}
		}
	case KindPushdown:
		for _, t := range d.PDATransitions {
			if err := d.checkEndpoints(t.From, t.To); err != nil {
				return err
			}
			if t.Input != Epsilon && !d.Alphabet.Contains(t.Input) {
				return d.unknownSymbol(t.Input)
			}
			if t.Pop != Epsilon && !d.stackSymbolOK(t.Pop) {
				return d.unknownSymbol(t.Pop)
			}
			for i := 0; i < len(t.Push); i++ {
				if !d.stackSymbolOK(Symbol(t.Push[i])) {
					return d.unknownSymbol(Symbol(t.Push[i]))
				}
			}
		}
	case KindTuring:
		for _, t := range d.TMTransitions {
			if err := d.checkEndpoints(t.From, t.To); err != nil {
				return err
			}
			if !d.tapeSymbolOK(t.Read) {
				return d.unknownSymbol(t.Read)
			}
			if !d.tapeSymbolOK(t.Write) {
				return d.unknownSymbol(t.Write)
			}
		}
	}
	return nil
}

func (d *Definition) checkEndpoints(from, to State) error {
	if !d.HasState(from) {
		return d.unknownState(from)
	}
	if !d.HasState(to) {
		return d.unknownState(to)
	}
	return nil
}

// stack alphabet = input alphabet ∪ {bottom marker}
func (d *Definition) stackSymbolOK(s Symbol) bool {
	return d.Alphabet.Contains(s) || s == d.Bottom() || isStackUpper(s)
}

// tape alphabet = input alphabet ∪ {blank}; the zero Symbol aliases blank
func (d *Definition) tapeSymbolOK(s Symbol) bool {
	return s == Epsilon || s == DefaultBlank || d.Alphabet.Contains(s)
}

// PDA push strings conventionally use uppercase working symbols (A, B, ...)
// that never appear on the input; the editor allows them without declaring
// them in the input alphabet.
func isStackUpper(s Symbol) bool {
	return s >= 'A' && s <= 'Z'
}

func (d *Definition) unknownState(s State) error {
	if hint := closestState(string(s), d.States); hint != "" {
		return fmt.Errorf("unknown state %q (did you mean %q?)", s, hint)
	}
	return fmt.Errorf("unknown state %q", s)
}

func (d *Definition) unknownSymbol(s Symbol) error {
	return fmt.Errorf("symbol %q not in alphabet %s", s.String(), d.Alphabet.String())
}

func closestState(name string, declared []State) string {
	best, bestDist := "", 3 // suggestions beyond distance 2 are noise
	for _, s := range declared {
		if dist := levenshtein.ComputeDistance(name, string(s)); dist < bestDist {
			best, bestDist = string(s), dist
		}
	}
	return best
}

// StatesLine renders declared states for display, e.g. "q0, q1, q2".
func (d *Definition) StatesLine() string {
	parts := make([]string, len(d.States))
	for i, s := range d.States {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
