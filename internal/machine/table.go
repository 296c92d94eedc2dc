package machine

// TransitionTable stores the NFA/DFA transition relation as
// (state, symbol) -> ordered list of destination states. Repeated Add
// calls for the same key accumulate, which is what enables NFA semantics.
// Single writer; a simulation call reads a stable snapshot and edits must
// never interleave with an in-flight call on the same table.
type TransitionTable struct {
	delta map[tableKey][]State
}

type tableKey struct {
	From   State
	Symbol Symbol
}

// NewTransitionTable returns an empty table.
func NewTransitionTable() *TransitionTable {
	return &TransitionTable{delta: make(map[tableKey][]State)}
}

// Add appends to the destination list for (from, symbol). Duplicate
// additions produce duplicate entries; Add never overwrites.
func (t *TransitionTable) Add(from State, symbol Symbol, to State) {
	k := tableKey{From: from, Symbol: symbol}
	t.delta[k] = append(t.delta[k], to)
}

// Next returns the accumulated destinations in insertion order, or nil
// for an absent key. Never an error.
func (t *TransitionTable) Next(from State, symbol Symbol) []State {
	return t.delta[tableKey{From: from, Symbol: symbol}]
}

// Clear resets the table to empty.
func (t *TransitionTable) Clear() {
	t.delta = make(map[tableKey][]State)
}

// Len reports the number of stored destination entries.
func (t *TransitionTable) Len() int {
	n := 0
	for _, dests := range t.delta {
		n += len(dests)
	}
	return n
}
