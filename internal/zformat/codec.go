// Package zformat converts machine definitions to and from the ZFlap
// project text format, and renders Graphviz DOT. The simulation engine
// never performs file I/O; callers hand byte slices or writers to this
// package.
package zformat

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/zflap/zflap/internal/machine"
)

// Header is the first line of every ZFlap project file.
const Header = "# Automata ZFlap Project"

// epsilonMark stands for epsilon/empty/blank in transition rows.
const epsilonMark = "~"

// Marshal renders a definition as a ZFlap project file:
//
//	# Automata ZFlap Project
//	kind: finite
//	alphabet: (a,b)
//	states: (q0,q1,q2)
//	initial: q0
//	finals: (q2)
//	transitions:
//	q0,a->q1
//
// PDA rows are "from,input,pop,push->to" plus a "stack:" line for the
// bottom marker; TM rows are "from,read,write,move->to".
func Marshal(def machine.Definition) ([]byte, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", def.Name, err)
	}

	var b strings.Builder
	fmt.Fprintln(&b, Header)
	fmt.Fprintf(&b, "kind: %s\n", def.Kind)
	fmt.Fprintf(&b, "alphabet: %s\n", def.Alphabet.String())
	fmt.Fprintf(&b, "states: (%s)\n", joinStates(def.States))
	fmt.Fprintf(&b, "initial: %s\n", def.Initial)
	fmt.Fprintf(&b, "finals: (%s)\n", joinStates(def.Finals))
	if def.Kind == machine.KindPushdown {
		fmt.Fprintf(&b, "stack: %s\n", def.Bottom())
	}
	fmt.Fprintln(&b, "transitions:")

	switch def.Kind {
	case machine.KindFinite:
		for _, r := range def.Rules {
			fmt.Fprintf(&b, "%s,%s->%s\n", r.From, r.Symbol, r.To)
		}
	case machine.KindPushdown:
		for _, t := range def.PDATransitions {
			push := t.Push
			if push == "" {
				push = epsilonMark
			}
			fmt.Fprintf(&b, "%s,%s,%s,%s->%s\n", t.From, mark(t.Input), mark(t.Pop), push, t.To)
		}
	case machine.KindTuring:
		for _, t := range def.TMTransitions {
			fmt.Fprintf(&b, "%s,%s,%s,%s->%s\n", t.From, mark(t.Read), mark(t.Write), t.Move, t.To)
		}
	}
	return []byte(b.String()), nil
}

// Unmarshal parses a ZFlap project file back into a definition and
// validates it. Unknown keys are rejected so that typos surface instead
// of silently dropping sections.
func Unmarshal(data []byte) (machine.Definition, error) {
	var def machine.Definition

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	inTransitions := false

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if lineNo == 1 {
			if line != Header {
				return def, fmt.Errorf("line 1: not a ZFlap project file")
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		if inTransitions {
			if err := parseTransition(&def, line); err != nil {
				return def, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return def, fmt.Errorf("line %d: expected \"key: value\", got %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "kind":
			def.Kind = machine.Kind(value)
			if !def.Kind.Valid() {
				return def, fmt.Errorf("line %d: unknown machine kind %q", lineNo, value)
			}
		case "alphabet":
			a, err := machine.ParseAlphabet(value)
			if err != nil {
				return def, fmt.Errorf("line %d: %w", lineNo, err)
			}
			def.Alphabet = a
		case "states":
			states, err := parseStateList(value)
			if err != nil {
				return def, fmt.Errorf("line %d: %w", lineNo, err)
			}
			def.States = states
		case "initial":
			def.Initial = machine.State(value)
		case "finals":
			states, err := parseStateList(value)
			if err != nil {
				return def, fmt.Errorf("line %d: %w", lineNo, err)
			}
			def.Finals = states
		case "stack":
			if len(value) != 1 {
				return def, fmt.Errorf("line %d: stack symbol %q must be a single character", lineNo, value)
			}
			def.StackSymbol = machine.Symbol(value[0])
		case "transitions":
			inTransitions = true
		default:
			return def, fmt.Errorf("line %d: unknown key %q", lineNo, key)
		}
	}
	if err := sc.Err(); err != nil {
		return def, fmt.Errorf("scan project file: %w", err)
	}

	if err := def.Validate(); err != nil {
		return def, err
	}
	return def, nil
}

func parseTransition(def *machine.Definition, line string) error {
	left, to, ok := strings.Cut(line, "->")
	if !ok {
		return fmt.Errorf("transition %q missing \"->\"", line)
	}
	fields := strings.Split(left, ",")
	dest := machine.State(strings.TrimSpace(to))

	switch def.Kind {
	case machine.KindFinite:
		if len(fields) != 2 {
			return fmt.Errorf("finite transition %q needs \"from,symbol->to\"", line)
		}
		sym, err := parseSymbol(fields[1], false)
		if err != nil {
			return err
		}
		def.Rules = append(def.Rules, machine.Rule{
			From:   machine.State(strings.TrimSpace(fields[0])),
			Symbol: sym,
			To:     dest,
		})
	case machine.KindPushdown:
		if len(fields) != 4 {
			return fmt.Errorf("pushdown transition %q needs \"from,input,pop,push->to\"", line)
		}
		input, err := parseSymbol(fields[1], true)
		if err != nil {
			return err
		}
		pop, err := parseSymbol(fields[2], true)
		if err != nil {
			return err
		}
		push := strings.TrimSpace(fields[3])
		if push == epsilonMark {
			push = ""
		}
		def.PDATransitions = append(def.PDATransitions, machine.PDATransition{
			From:  machine.State(strings.TrimSpace(fields[0])),
			Input: input,
			Pop:   pop,
			Push:  push,
			To:    dest,
		})
	case machine.KindTuring:
		if len(fields) != 4 {
			return fmt.Errorf("turing transition %q needs \"from,read,write,move->to\"", line)
		}
		read, err := parseSymbol(fields[1], true)
		if err != nil {
			return err
		}
		write, err := parseSymbol(fields[2], true)
		if err != nil {
			return err
		}
		move, ok := machine.ParseMove(strings.TrimSpace(fields[3]))
		if !ok {
			return fmt.Errorf("move %q must be L, R or S", strings.TrimSpace(fields[3]))
		}
		def.TMTransitions = append(def.TMTransitions, machine.TMTransition{
			From:  machine.State(strings.TrimSpace(fields[0])),
			Read:  read,
			To:    dest,
			Write: write,
			Move:  move,
		})
	default:
		return fmt.Errorf("transitions listed before kind")
	}
	return nil
}

func parseSymbol(field string, allowEpsilon bool) (machine.Symbol, error) {
	field = strings.TrimSpace(field)
	if field == epsilonMark {
		if !allowEpsilon {
			return 0, fmt.Errorf("epsilon not allowed here")
		}
		return machine.Epsilon, nil
	}
	if len(field) != 1 {
		return 0, fmt.Errorf("symbol %q must be a single character", field)
	}
	return machine.Symbol(field[0]), nil
}

func parseStateList(value string) ([]machine.State, error) {
	if !strings.HasPrefix(value, "(") || !strings.HasSuffix(value, ")") {
		return nil, fmt.Errorf("state list %q must be wrapped in parentheses", value)
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return nil, nil
	}
	var states []machine.State
	for _, tok := range strings.Split(inner, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty state name in %q", value)
		}
		states = append(states, machine.State(tok))
	}
	return states, nil
}

func mark(s machine.Symbol) string {
	if s == machine.Epsilon {
		return epsilonMark
	}
	return string(rune(s))
}

func joinStates(states []machine.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
