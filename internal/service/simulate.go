package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/machine"
)

// SimulationService runs stored machines against inputs and records the
// outcomes. Simulation verdicts are data, not errors; only wiring
// failures surface as errors.
type SimulationService struct {
	Machines *MachineService
	Runs     *repository.RunRepo
	MaxSteps int // step budget for PDA/TM runs; DefaultMaxSteps when zero
}

// RunOutcome is what a simulation produced: the tri-state verdict, the
// number of configurations visited (zero for finite machines, which are
// decided by reachability rather than budgeted search) and, for accepted
// PDA/TM runs, the rendered step path.
type RunOutcome struct {
	Verdict machine.Verdict
	Steps   int
	Path    []string
}

// RunString simulates the stored machine on input, dispatching on kind:
// finite machines answer by reachability, PDA/TM by bounded depth-first
// search. The outcome is recorded as a run row.
func (s *SimulationService) RunString(ctx context.Context, machineID, input string) (RunOutcome, error) {
	def, err := s.Machines.Load(ctx, machineID)
	if err != nil {
		return RunOutcome{}, err
	}

	outcome := s.simulate(def, input)

	run := repository.Run{
		ID:        uuid.NewString(),
		MachineID: machineID,
		Input:     input,
		Verdict:   outcome.Verdict.String(),
		Steps:     outcome.Steps,
		MaxSteps:  s.maxSteps(),
	}
	if len(outcome.Path) > 0 {
		joined := strings.Join(outcome.Path, "\n")
		run.Path = &joined
	}
	if err := s.Runs.Insert(ctx, run); err != nil {
		return RunOutcome{}, fmt.Errorf("record run: %w", err)
	}
	return outcome, nil
}

// Enumerate lists accepted strings for a stored finite machine. Results
// are never recorded. A cycleLimit <= 0 selects the unbounded variant;
// the empty string appears iff the initial state is final and is the
// caller's to display with its epsilon marker.
func (s *SimulationService) Enumerate(ctx context.Context, machineID string, maxLength, cycleLimit int) ([]string, error) {
	def, err := s.Machines.Load(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if def.Kind != machine.KindFinite {
		return nil, fmt.Errorf("enumerate: %s is a %s machine, enumeration needs a finite one", def.Name, def.Kind)
	}

	tbl := def.Table()
	finals := def.FinalSet()
	alphabet := def.Alphabet.Symbols()
	if cycleLimit <= 0 {
		return machine.Enumerate(tbl, def.Initial, finals, alphabet, maxLength), nil
	}
	return machine.EnumerateLimited(tbl, def.Initial, finals, alphabet, maxLength, cycleLimit), nil
}

// History returns the most recent recorded runs for a machine.
func (s *SimulationService) History(ctx context.Context, machineID string, limit int) ([]repository.Run, error) {
	runs, err := s.Runs.ListByMachine(ctx, machineID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Replay re-derives the step path for a stored run by simulating the
// machine again on the recorded input. Useful when the stored path was
// pruned or the machine definition is being stepped through live.
func (s *SimulationService) Replay(ctx context.Context, runID string) (RunOutcome, error) {
	run, err := s.Runs.GetByID(ctx, runID)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return RunOutcome{}, fmt.Errorf("load run: %s not found", runID)
	}
	def, err := s.Machines.Load(ctx, run.MachineID)
	if err != nil {
		return RunOutcome{}, err
	}
	return s.simulate(def, run.Input), nil
}

func (s *SimulationService) simulate(def machine.Definition, input string) RunOutcome {
	switch def.Kind {
	case machine.KindPushdown:
		res := def.PDA().Run(input, s.maxSteps())
		return RunOutcome{Verdict: res.Verdict, Steps: res.Steps, Path: renderPDAPath(res.Path)}
	case machine.KindTuring:
		res := def.TM().Run(input, s.maxSteps())
		return RunOutcome{Verdict: res.Verdict, Steps: res.Steps, Path: renderTMPath(res.Path)}
	default:
		verdict := machine.VerdictRejected
		if machine.Accepted(def.Table(), def.Initial, def.FinalSet(), input) {
			verdict = machine.VerdictAccepted
		}
		return RunOutcome{Verdict: verdict}
	}
}

func (s *SimulationService) maxSteps() int {
	if s.MaxSteps > 0 {
		return s.MaxSteps
	}
	return machine.DefaultMaxSteps
}

func renderPDAPath(path machine.Path[machine.PDAStep]) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	for i, step := range path {
		out[i] = step.String()
	}
	return out
}

func renderTMPath(path machine.Path[machine.TMStep]) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	for i, step := range path {
		out[i] = step.String()
	}
	return out
}
