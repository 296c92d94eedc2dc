package machine

import "fmt"

// PDATransition is one pushdown rule. Input and Pop may be Epsilon: an
// epsilon Input consumes nothing, an epsilon Pop touches nothing. Push is
// applied so its first character becomes the new stack top; read
// top-to-bottom, the pushed segment is the Push string itself.
type PDATransition struct {
	From  State
	Input Symbol
	Pop   Symbol
	Push  string
	To    State
}

// PDAStep records one transition firing for stepwise replay. Stack is the
// snapshot after the firing, top-first; InputIndex is the position after
// consuming (or not consuming) the input symbol.
type PDAStep struct {
	From       State
	To         State
	Consumed   Symbol
	Popped     Symbol
	Pushed     string
	Stack      string
	InputIndex int
}

func (s PDAStep) String() string {
	pushed := s.Pushed
	if pushed == "" {
		pushed = "ε"
	}
	return fmt.Sprintf("%s -%s-> %s  pop %s push %s  stack %s  input %d",
		s.From, s.Consumed, s.To, s.Popped, pushed, s.Stack, s.InputIndex)
}

// PDAResult is a Run outcome: the verdict, the number of configurations
// visited, and for accepted runs the step path.
type PDAResult struct {
	Verdict Verdict
	Steps   int
	Path    Path[PDAStep]
}

// PDA is a pushdown simulator: finite control plus an unbounded stack,
// explored depth-first with explicit backtracking. Transitions are tried
// in declaration order, which determines which single accepting path gets
// reported; the choice of path is otherwise implementation-defined.
type PDA struct {
	initial     State
	stackSymbol Symbol
	transitions []PDATransition
	finals      map[State]struct{}
}

// NewPDA creates a simulator starting in initial with stackSymbol as the
// sole stack content.
func NewPDA(initial State, stackSymbol Symbol) *PDA {
	return &PDA{
		initial:     initial,
		stackSymbol: stackSymbol,
		finals:      make(map[State]struct{}),
	}
}

// AddTransition appends a rule. Declaration order is trial order.
func (p *PDA) AddTransition(t PDATransition) {
	p.transitions = append(p.transitions, t)
}

// AddFinalState marks s as accepting.
func (p *PDA) AddFinalState(s State) {
	p.finals[s] = struct{}{}
}

// pdaFrame is one open node of the depth-first search: a configuration,
// the next candidate transition to try, and the firing that produced it.
// The open frames are exactly the current branch, so the accepting path
// is assembled from them on demand and no frame carries a path copy.
type pdaFrame struct {
	state State
	index int
	stack []Symbol // top at the end
	next  int
	step  PDAStep // zero for the root frame
}

// pdaBranch renders the open frames into the accepting path: each
// non-root frame contributes its incoming step, in order.
func pdaBranch(frames []pdaFrame) Path[PDAStep] {
	if len(frames) <= 1 {
		return nil
	}
	path := make(Path[PDAStep], 0, len(frames)-1)
	for _, f := range frames[1:] {
		path = append(path, f.step)
	}
	return path
}

// Run searches for an accepting configuration: inputIndex == len(input)
// and state ∈ finals. The search is depth-first over an explicit frame
// stack; the budget is charged once per configuration visited, and when
// it runs out the whole search stops with VerdictExhausted. Run never
// panics and returns no error.
func (p *PDA) Run(input string, maxSteps int) PDAResult {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	budget := maxSteps

	frames := []pdaFrame{{
		state: p.initial,
		stack: []Symbol{p.stackSymbol},
	}}

	for len(frames) > 0 {
		top := len(frames) - 1

		if frames[top].next == 0 { // first visit of this configuration
			if budget == 0 {
				return PDAResult{Verdict: VerdictExhausted, Steps: maxSteps}
			}
			budget--
			if frames[top].index == len(input) {
				if _, ok := p.finals[frames[top].state]; ok {
					return PDAResult{
						Verdict: VerdictAccepted,
						Steps:   maxSteps - budget,
						Path:    pdaBranch(frames),
					}
				}
			}
		}

		child, ok := p.advance(&frames[top], input)
		if !ok {
			frames = frames[:top]
			continue
		}
		frames = append(frames, child)
	}

	return PDAResult{Verdict: VerdictRejected, Steps: maxSteps - budget}
}

// advance tries candidate transitions from f.next onward and builds the
// child frame for the first one that fires. It reports false when the
// frame has no candidates left.
func (p *PDA) advance(f *pdaFrame, input string) (pdaFrame, bool) {
	for f.next < len(p.transitions) {
		t := p.transitions[f.next]
		f.next++

		if t.From != f.state {
			continue
		}
		if t.Input != Epsilon && (f.index >= len(input) || Symbol(input[f.index]) != t.Input) {
			continue
		}

		popped := Epsilon
		stack := f.stack
		if t.Pop != Epsilon {
			if len(stack) == 0 || stack[len(stack)-1] != t.Pop {
				continue
			}
			popped = t.Pop
			stack = stack[:len(stack)-1]
		}

		// Copy before pushing: the parent keeps its own stack for the
		// next candidate.
		newStack := make([]Symbol, len(stack), len(stack)+len(t.Push))
		copy(newStack, stack)
		for i := len(t.Push) - 1; i >= 0; i-- {
			newStack = append(newStack, Symbol(t.Push[i]))
		}

		index := f.index
		if t.Input != Epsilon {
			index++
		}

		step := PDAStep{
			From:       f.state,
			To:         t.To,
			Consumed:   t.Input,
			Popped:     popped,
			Pushed:     t.Push,
			Stack:      stackString(newStack),
			InputIndex: index,
		}

		return pdaFrame{
			state: t.To,
			index: index,
			stack: newStack,
			step:  step,
		}, true
	}
	return pdaFrame{}, false
}

// stackString renders a stack snapshot top-first.
func stackString(stack []Symbol) string {
	buf := make([]byte, len(stack))
	for i, s := range stack {
		buf[len(stack)-1-i] = byte(s)
	}
	return string(buf)
}
