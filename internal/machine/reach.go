package machine

import "sort"

// Reachable performs a breadth-first traversal over (state, position)
// configurations, seeded with (initial, 0), and returns every state the
// automaton can be in after consuming all of input. A visited set keyed
// by (state, position) prevents re-expanding a configuration already
// queued; NFA branching can reconverge onto the same configuration via
// different paths and without deduplication the search is exponential.
// Position strictly increases on every hop, so the traversal always
// terminates within |states| × len(input) expansions.
//
// The result is sorted, so it is invariant under the order Add calls
// built the table.
func Reachable(t *TransitionTable, initial State, input string) []State {
	type config struct {
		state State
		pos   int
	}

	visited := map[config]struct{}{{initial, 0}: {}}
	queue := []config{{initial, 0}}
	reached := map[State]struct{}{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.pos == len(input) {
			reached[cur.state] = struct{}{}
			continue
		}

		sym := Symbol(input[cur.pos])
		for _, next := range t.Next(cur.state, sym) {
			c := config{next, cur.pos + 1}
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			queue = append(queue, c)
		}
	}

	out := make([]State, 0, len(reached))
	for s := range reached {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Accepted reports whether the reached-state set for input intersects the
// final-state set. Repeated calls with the same table and input return
// the same result.
func Accepted(t *TransitionTable, initial State, finals map[State]struct{}, input string) bool {
	for _, s := range Reachable(t, initial, input) {
		if _, ok := finals[s]; ok {
			return true
		}
	}
	return false
}
