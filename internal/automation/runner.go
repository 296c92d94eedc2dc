// Package automation implements the scripted front door: one JSON object
// per stdin line, one JSON response per stdout line. The protocol works
// on a single current machine at a time, matching the editor's
// single-document model.
package automation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zflap/zflap/internal/machine"
	"github.com/zflap/zflap/internal/service"
)

// Runner drives the protocol loop. Machines and Sims are optional: when
// nil, the save/load actions report an error and everything else works
// on the in-memory machine only. Runs of a saved or loaded machine go
// through Sims so they land in the run history like workbench runs do.
type Runner struct {
	In       io.Reader
	Out      io.Writer
	Machines *service.MachineService
	Sims     *service.SimulationService
	MaxSteps int

	def   *machine.Definition
	defID string // catalog id of def while it still mirrors the stored copy
}

type request struct {
	Action string `json:"action"`

	// create_machine
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Alphabet     string   `json:"alphabet"`
	InitialState string   `json:"initial_state"`
	FinalStates  []string `json:"final_states"`
	StackSymbol  string   `json:"stack_symbol"`

	// add_transition / add_final_state
	From   string `json:"from"`
	To     string `json:"to"`
	Symbol string `json:"symbol"`
	Pop    string `json:"pop"`
	Push   string `json:"push"`
	Read   string `json:"read"`
	Write  string `json:"write"`
	Move   string `json:"move"`
	State  string `json:"state"`

	// Input doubles as the PDA transition input symbol (add_transition)
	// and the whole input string (is_accepted, run).
	Input      string `json:"input"`
	MaxLength  int    `json:"max_length"`
	CycleLimit *int   `json:"cycle_limit"`
	MaxSteps   int    `json:"max_steps"`
}

type response struct {
	Status   string   `json:"status"`
	Message  string   `json:"message,omitempty"`
	Accepted *bool    `json:"accepted,omitempty"`
	Strings  []string `json:"strings,omitempty"`
	Verdict  string   `json:"verdict,omitempty"`
	Steps    *int     `json:"steps,omitempty"`
	Path     []string `json:"path,omitempty"`
}

func success(message string) response {
	return response{Status: "success", Message: message}
}

func failure(err error) response {
	return response{Status: "error", Message: err.Error()}
}

// Run reads requests until EOF or a quit action. Malformed JSON and
// unknown actions produce an error response and the loop continues;
// only write failures abort.
func (r *Runner) Run(ctx context.Context) error {
	sc := bufio.NewScanner(r.In)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(r.Out)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var req request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if err := enc.Encode(failure(fmt.Errorf("parse request: %v", err))); err != nil {
				return err
			}
			continue
		}
		if req.Action == "quit" {
			return enc.Encode(success("bye"))
		}

		if err := enc.Encode(r.handle(ctx, req)); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (r *Runner) handle(ctx context.Context, req request) response {
	switch req.Action {
	case "create_machine":
		return r.createMachine(req)
	case "add_transition":
		return r.addTransition(req)
	case "add_final_state":
		return r.addFinalState(req)
	case "is_accepted":
		return r.isAccepted(req)
	case "generate_accepted":
		return r.generateAccepted(req)
	case "run":
		return r.runInput(ctx, req)
	case "save":
		return r.save(ctx, req)
	case "load":
		return r.load(ctx, req)
	default:
		return failure(fmt.Errorf("unknown action %q", req.Action))
	}
}

func (r *Runner) createMachine(req request) response {
	kind := machine.Kind(req.Kind)
	if req.Kind == "" {
		kind = machine.KindFinite
	}
	if !kind.Valid() {
		return failure(fmt.Errorf("unknown machine kind %q", req.Kind))
	}

	alphabet, err := machine.ParseAlphabet(req.Alphabet)
	if err != nil {
		return failure(err)
	}

	def := machine.Definition{
		Name:     req.Name,
		Kind:     kind,
		Alphabet: alphabet,
		Initial:  machine.State(req.InitialState),
	}
	def.States = append(def.States, def.Initial)
	for _, f := range req.FinalStates {
		s := machine.State(f)
		if !def.HasState(s) {
			def.States = append(def.States, s)
		}
		def.Finals = append(def.Finals, s)
	}
	if req.StackSymbol != "" {
		if len(req.StackSymbol) != 1 {
			return failure(fmt.Errorf("stack symbol %q must be a single character", req.StackSymbol))
		}
		def.StackSymbol = machine.Symbol(req.StackSymbol[0])
	}

	r.def = &def
	r.defID = ""
	return success("machine created")
}

func (r *Runner) addTransition(req request) response {
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}

	// A rejected transition must leave the machine untouched, including
	// the states declare() may have added along the way.
	states := len(r.def.States)
	rules := len(r.def.Rules)
	pda := len(r.def.PDATransitions)
	tm := len(r.def.TMTransitions)
	fail := func(err error) response {
		r.def.States = r.def.States[:states]
		r.def.Rules = r.def.Rules[:rules]
		r.def.PDATransitions = r.def.PDATransitions[:pda]
		r.def.TMTransitions = r.def.TMTransitions[:tm]
		return failure(err)
	}

	from, to := machine.State(req.From), machine.State(req.To)
	r.declare(from)
	r.declare(to)

	switch r.def.Kind {
	case machine.KindFinite:
		sym, err := symbol(req.Symbol, false)
		if err != nil {
			return fail(err)
		}
		if !r.def.Alphabet.Contains(sym) {
			return fail(fmt.Errorf("symbol %q not in alphabet %s", req.Symbol, r.def.Alphabet))
		}
		r.def.Rules = append(r.def.Rules, machine.Rule{From: from, Symbol: sym, To: to})
	case machine.KindPushdown:
		input, err := symbol(req.Input, true)
		if err != nil {
			return fail(err)
		}
		pop, err := symbol(req.Pop, true)
		if err != nil {
			return fail(err)
		}
		t := machine.PDATransition{From: from, Input: input, Pop: pop, Push: req.Push, To: to}
		r.def.PDATransitions = append(r.def.PDATransitions, t)
	case machine.KindTuring:
		read, err := symbol(req.Read, true)
		if err != nil {
			return fail(err)
		}
		write, err := symbol(req.Write, true)
		if err != nil {
			return fail(err)
		}
		move, ok := machine.ParseMove(strings.ToUpper(req.Move))
		if !ok {
			return fail(fmt.Errorf("move %q must be L, R or S", req.Move))
		}
		t := machine.TMTransition{From: from, Read: read, To: to, Write: write, Move: move}
		r.def.TMTransitions = append(r.def.TMTransitions, t)
	}

	if err := r.def.Validate(); err != nil {
		return fail(err)
	}
	r.defID = ""
	return success("transition added")
}

func (r *Runner) addFinalState(req request) response {
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}
	s := machine.State(req.State)
	r.declare(s)
	if !r.def.IsFinal(s) {
		r.def.Finals = append(r.def.Finals, s)
		r.defID = ""
	}
	return success("final state added")
}

func (r *Runner) isAccepted(req request) response {
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}
	if r.def.Kind != machine.KindFinite {
		return failure(fmt.Errorf("is_accepted needs a finite machine, have %s", r.def.Kind))
	}
	ok := machine.Accepted(r.def.Table(), r.def.Initial, r.def.FinalSet(), req.Input)
	return response{Status: "success", Accepted: &ok}
}

func (r *Runner) generateAccepted(req request) response {
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}
	if r.def.Kind != machine.KindFinite {
		return failure(fmt.Errorf("generate_accepted needs a finite machine, have %s", r.def.Kind))
	}
	limit := machine.DefaultCycleLimit
	if req.CycleLimit != nil {
		limit = *req.CycleLimit
	}

	tbl := r.def.Table()
	finals := r.def.FinalSet()
	alphabet := r.def.Alphabet.Symbols()
	var strs []string
	if limit <= 0 {
		strs = machine.Enumerate(tbl, r.def.Initial, finals, alphabet, req.MaxLength)
	} else {
		strs = machine.EnumerateLimited(tbl, r.def.Initial, finals, alphabet, req.MaxLength, limit)
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		if s == "" {
			s = "ε"
		}
		out[i] = s
	}
	return response{Status: "success", Strings: out}
}

func (r *Runner) runInput(ctx context.Context, req request) response {
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}
	if r.def.Kind != machine.KindPushdown && r.def.Kind != machine.KindTuring {
		return failure(fmt.Errorf("run needs a pushdown or turing machine, have %s; use is_accepted", r.def.Kind))
	}

	// A machine still matching its stored copy runs through the
	// simulation service, so the run lands in the history. An explicit
	// max_steps opts out: history runs always use the configured budget.
	if r.Sims != nil && r.defID != "" && req.MaxSteps <= 0 {
		outcome, err := r.Sims.RunString(ctx, r.defID, req.Input)
		if err != nil {
			return failure(err)
		}
		steps := outcome.Steps
		return response{Status: "success", Verdict: outcome.Verdict.String(), Steps: &steps, Path: outcome.Path}
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = r.MaxSteps
	}

	var verdict machine.Verdict
	var steps int
	var path []string
	switch r.def.Kind {
	case machine.KindPushdown:
		res := r.def.PDA().Run(req.Input, maxSteps)
		verdict, steps = res.Verdict, res.Steps
		for _, s := range res.Path {
			path = append(path, s.String())
		}
	case machine.KindTuring:
		res := r.def.TM().Run(req.Input, maxSteps)
		verdict, steps = res.Verdict, res.Steps
		for _, s := range res.Path {
			path = append(path, s.String())
		}
	}

	return response{Status: "success", Verdict: verdict.String(), Steps: &steps, Path: path}
}

func (r *Runner) save(ctx context.Context, req request) response {
	if r.Machines == nil {
		return failure(fmt.Errorf("no catalog store configured"))
	}
	if r.def == nil {
		return failure(fmt.Errorf("no machine: send create_machine or load first"))
	}
	def := *r.def
	if req.Name != "" {
		def.Name = req.Name
	}
	m, err := r.Machines.Create(ctx, def)
	if err != nil {
		return failure(err)
	}
	r.defID = m.ID
	return success("machine saved")
}

func (r *Runner) load(ctx context.Context, req request) response {
	if r.Machines == nil {
		return failure(fmt.Errorf("no catalog store configured"))
	}
	m, err := r.Machines.FindByName(ctx, req.Name)
	if err != nil {
		return failure(err)
	}
	if m == nil {
		return failure(fmt.Errorf("load machine: %q not found", req.Name))
	}
	def, err := r.Machines.Load(ctx, m.ID)
	if err != nil {
		return failure(err)
	}
	r.def = &def
	r.defID = m.ID
	return success("machine loaded")
}

func (r *Runner) declare(s machine.State) {
	if !r.def.HasState(s) {
		r.def.States = append(r.def.States, s)
	}
}

// symbol parses a one-character protocol field; empty means epsilon when
// allowed.
func symbol(field string, allowEmpty bool) (machine.Symbol, error) {
	if field == "" {
		if !allowEmpty {
			return 0, fmt.Errorf("symbol is required")
		}
		return machine.Epsilon, nil
	}
	if len(field) != 1 {
		return 0, fmt.Errorf("symbol %q must be a single character", field)
	}
	return machine.Symbol(field[0]), nil
}
