package machine

import "fmt"

// Move is a head direction.
type Move int

const (
	MoveLeft Move = iota
	MoveRight
	MoveStay
)

func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "L"
	case MoveRight:
		return "R"
	default:
		return "S"
	}
}

// ParseMove maps the stored letter form back to a Move.
func ParseMove(s string) (Move, bool) {
	switch s {
	case "L":
		return MoveLeft, true
	case "R":
		return MoveRight, true
	case "S":
		return MoveStay, true
	}
	return MoveStay, false
}

// TMTransition is one Turing rule. The zero Symbol aliases the blank on
// both Read and Write.
type TMTransition struct {
	From  State
	Read  Symbol
	To    State
	Write Symbol
	Move  Move
}

// TMStep records one transition firing for stepwise replay. Read and
// Write hold the symbols as resolved against the tape (never the zero
// alias); Tape is the snapshot after the move with the head cell
// bracketed, Head the physical position in that snapshot.
type TMStep struct {
	From  State
	To    State
	Read  Symbol
	Write Symbol
	Move  Move
	Tape  string
	Head  int
}

func (s TMStep) String() string {
	return fmt.Sprintf("%s -> %s  read %s write %s move %s  tape %s  head %d",
		s.From, s.To, s.Read, s.Write, s.Move, s.Tape, s.Head)
}

// TMResult is a Run outcome, mirroring PDAResult.
type TMResult struct {
	Verdict Verdict
	Steps   int
	Path    Path[TMStep]
}

// TM is a Turing simulator: finite control plus an unbounded tape and a
// head, explored depth-first with explicit backtracking. Acceptance is by
// final state alone — checked the moment a configuration is visited, so a
// final initial state accepts any input with an empty path and input
// consumption is never required.
type TM struct {
	initial     State
	blank       Symbol
	transitions []TMTransition
	finals      map[State]struct{}
}

// NewTM creates a simulator starting in initial with the given blank.
func NewTM(initial State, blank Symbol) *TM {
	return &TM{
		initial: initial,
		blank:   blank,
		finals:  make(map[State]struct{}),
	}
}

// AddTransition appends a rule. Declaration order is trial order.
func (m *TM) AddTransition(t TMTransition) {
	m.transitions = append(m.transitions, t)
}

// AddFinalState marks s as accepting.
func (m *TM) AddFinalState(s State) {
	m.finals[s] = struct{}{}
}

// tmFrame mirrors pdaFrame: the open frames are the current branch, each
// one carrying only the firing that produced it.
type tmFrame struct {
	state State
	tape  Tape
	next  int
	step  TMStep // zero for the root frame
}

func tmBranch(frames []tmFrame) Path[TMStep] {
	if len(frames) <= 1 {
		return nil
	}
	path := make(Path[TMStep], 0, len(frames)-1)
	for _, f := range frames[1:] {
		path = append(path, f.step)
	}
	return path
}

// Run searches for a configuration whose state is accepting. Structure
// and budget semantics mirror PDA.Run: explicit frame stack, budget
// charged once per configuration visited, VerdictExhausted when it runs
// out before a conclusion.
func (m *TM) Run(input string, maxSteps int) TMResult {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	budget := maxSteps

	frames := []tmFrame{{
		state: m.initial,
		tape:  NewTape(input, m.blank),
	}}

	for len(frames) > 0 {
		top := len(frames) - 1

		if frames[top].next == 0 {
			if budget == 0 {
				return TMResult{Verdict: VerdictExhausted, Steps: maxSteps}
			}
			budget--
			if _, ok := m.finals[frames[top].state]; ok {
				return TMResult{
					Verdict: VerdictAccepted,
					Steps:   maxSteps - budget,
					Path:    tmBranch(frames),
				}
			}
		}

		child, ok := m.advance(&frames[top])
		if !ok {
			frames = frames[:top]
			continue
		}
		frames = append(frames, child)
	}

	return TMResult{Verdict: VerdictRejected, Steps: maxSteps - budget}
}

// advance tries candidate transitions from f.next onward: the rule fires
// when From matches and Read matches the symbol under the head, the blank
// matching an out-of-range head as well as an explicit in-range blank
// cell. Firing writes, moves, expands the tape, switches state and
// records the step.
func (m *TM) advance(f *tmFrame) (tmFrame, bool) {
	current := f.tape.Read()

	for f.next < len(m.transitions) {
		t := m.transitions[f.next]
		f.next++

		if t.From != f.state {
			continue
		}
		read := t.Read
		if read == Epsilon {
			read = m.blank
		}
		if read != current {
			continue
		}

		write := t.Write
		if write == Epsilon {
			write = m.blank
		}

		tape := f.tape.Clone()
		tape.Write(write)
		tape.Move(t.Move)

		step := TMStep{
			From:  f.state,
			To:    t.To,
			Read:  current,
			Write: write,
			Move:  t.Move,
			Tape:  tape.Snapshot(),
			Head:  tape.Head(),
		}

		return tmFrame{
			state: t.To,
			tape:  tape,
			step:  step,
		}, true
	}
	return tmFrame{}, false
}
