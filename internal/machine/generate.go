package machine

// DefaultCycleLimit is how many times EnumerateLimited lets one state be
// revisited along a single exploration path.
const DefaultCycleLimit = 2

// Enumerate lists the strings up to maxLength accepted by the table, in
// breadth-first discovery order. The empty string is recorded up front
// iff the initial state is itself final. There is no revisit protection:
// the enumeration is complete up to maxLength but combinatorially
// expensive on automata with cycles, and distinct accepting paths that
// spell the same string produce duplicate entries.
func Enumerate(t *TransitionTable, initial State, finals map[State]struct{}, alphabet []Symbol, maxLength int) []string {
	type frontier struct {
		state State
		str   string
	}

	var accepted []string
	if _, ok := finals[initial]; ok {
		accepted = append(accepted, "")
	}

	queue := []frontier{{initial, ""}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.str) >= maxLength {
			continue
		}

		for _, sym := range alphabet {
			for _, next := range t.Next(cur.state, sym) {
				str := cur.str + sym.String()
				if _, ok := finals[next]; ok {
					accepted = append(accepted, str)
				}
				if len(str) < maxLength {
					queue = append(queue, frontier{next, str})
				}
			}
		}
	}
	return accepted
}

// EnumerateLimited is Enumerate with a per-state revisit bound: each
// frontier entry carries a visit counter per state (the initial state
// starts at 1) and a branch into a destination is pruned once that
// destination's counter would exceed cycleLimit. This bounds enumeration
// on cyclic automata at the cost of completeness — an accepted string
// whose accepting path revisits some state more than cycleLimit times is
// missed. That is a deliberate approximation, not a bug. Output with
// cycleLimit n is always a subset of output with cycleLimit n+1.
func EnumerateLimited(t *TransitionTable, initial State, finals map[State]struct{}, alphabet []Symbol, maxLength, cycleLimit int) []string {
	type frontier struct {
		state  State
		str    string
		visits map[State]int
	}

	var accepted []string
	if _, ok := finals[initial]; ok {
		accepted = append(accepted, "")
	}

	queue := []frontier{{initial, "", map[State]int{initial: 1}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.str) >= maxLength {
			continue
		}

		for _, sym := range alphabet {
			for _, next := range t.Next(cur.state, sym) {
				if cur.visits[next]+1 > cycleLimit {
					continue
				}
				str := cur.str + sym.String()
				if _, ok := finals[next]; ok {
					accepted = append(accepted, str)
				}
				if len(str) < maxLength {
					visits := make(map[State]int, len(cur.visits)+1)
					for s, n := range cur.visits {
						visits[s] = n
					}
					visits[next]++
					queue = append(queue, frontier{next, str, visits})
				}
			}
		}
	}
	return accepted
}
