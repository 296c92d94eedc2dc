package machine

// Verdict is the tri-state outcome of a bounded search. Rejected means
// every candidate transition at every open frame was tried and failed
// with budget remaining; Exhausted means the step budget hit zero first,
// so the search was inconclusive. Callers must not treat Exhausted as a
// definite rejection.
type Verdict int

const (
	VerdictRejected Verdict = iota
	VerdictAccepted
	VerdictExhausted
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictExhausted:
		return "exhausted"
	default:
		return "rejected"
	}
}

// ParseVerdict maps the stored string form back to a Verdict.
func ParseVerdict(s string) (Verdict, bool) {
	switch s {
	case "accepted":
		return VerdictAccepted, true
	case "rejected":
		return VerdictRejected, true
	case "exhausted":
		return VerdictExhausted, true
	}
	return VerdictRejected, false
}

// DefaultMaxSteps is the step budget guarding the depth-first simulators
// against unbounded epsilon-cycles.
const DefaultMaxSteps = 100000

// Path is the ordered sequence of recorded transition firings from the
// initial configuration to an accepting one, replayed one step at a time
// by the workbench.
type Path[T any] []T

// Step retrieves step i, or reports absence past the end.
func (p Path[T]) Step(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(p) {
		return zero, false
	}
	return p[i], true
}
