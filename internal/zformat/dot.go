package zformat

import (
	"fmt"
	"io"

	"github.com/zflap/zflap/internal/machine"
)

// WriteDOT renders the definition as a Graphviz digraph: rankdir=LR,
// accepting states drawn doublecircle, a synthetic start arrow into the
// initial state, edges labeled per kind (finite "a"; PDA "a, Z/AZ"; TM
// "0/1,R").
func WriteDOT(w io.Writer, def machine.Definition) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("digraph %q {\n", def.Name)
	p("  rankdir=LR;\n")
	p("  node [shape=circle];\n")
	p("  __start [shape=point];\n")
	for _, s := range def.States {
		if def.IsFinal(s) {
			p("  %q [shape=doublecircle];\n", string(s))
		} else {
			p("  %q;\n", string(s))
		}
	}
	p("  __start -> %q;\n", string(def.Initial))

	switch def.Kind {
	case machine.KindFinite:
		for _, r := range def.Rules {
			p("  %q -> %q [label=%q];\n", string(r.From), string(r.To), r.Symbol.String())
		}
	case machine.KindPushdown:
		for _, t := range def.PDATransitions {
			push := t.Push
			if push == "" {
				push = "ε"
			}
			label := fmt.Sprintf("%s, %s/%s", t.Input, t.Pop, push)
			p("  %q -> %q [label=%q];\n", string(t.From), string(t.To), label)
		}
	case machine.KindTuring:
		for _, t := range def.TMTransitions {
			read, write := t.Read, t.Write
			if read == machine.Epsilon {
				read = machine.DefaultBlank
			}
			if write == machine.Epsilon {
				write = machine.DefaultBlank
			}
			label := fmt.Sprintf("%s/%s,%s", read, write, t.Move)
			p("  %q -> %q [label=%q];\n", string(t.From), string(t.To), label)
		}
	}
	p("}\n")
	return err
}
