package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zflap/zflap/internal/config"
	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/machine"
	"github.com/zflap/zflap/internal/service"
)

// App ties together views.
type App struct {
	ctx      context.Context
	services Services
	cfg      config.Config
	state    appState

	machines   []repository.Machine
	catCursor  int
	kindFilter string // "", "finite", "pushdown", "turing"

	currentID  string
	current    *machine.Definition
	runs       []repository.Run
	runCursor  int

	runInput   string
	outcome    *service.RunOutcome
	stepCursor int

	enumMaxLength  int
	enumCycleLimit int
	enumStrings    []string

	modal       modalState
	inputBuffer string
	status      string
}

type Services struct {
	Machines *service.MachineService
	Sims     *service.SimulationService
}

type appState string

const (
	viewCatalog    appState = "catalog"
	viewDetail     appState = "detail"
	viewRunner     appState = "runner"
	viewEnumerator appState = "enumerator"
)

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmDelete modalState = "confirmDelete"
	modalRename        modalState = "rename"
	modalNewMachine    modalState = "newMachine"
)

func New(ctx context.Context, cfg config.Config, services Services) *App {
	maxLength := cfg.Sim.MaxLength
	if maxLength <= 0 {
		maxLength = 8
	}
	return &App{
		ctx:            ctx,
		services:       services,
		cfg:            cfg,
		state:          viewCatalog,
		enumMaxLength:  maxLength,
		enumCycleLimit: cfg.Sim.CycleLimit,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadMachines()
}

func (a *App) loadMachines() tea.Cmd {
	return func() tea.Msg {
		list, err := a.services.Machines.List(a.ctx, a.kindFilter)
		if err != nil {
			return errMsg{err}
		}
		return machinesMsg(list)
	}
}

func (a *App) openMachine(id string) tea.Cmd {
	return func() tea.Msg {
		def, err := a.services.Machines.Load(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		runs, err := a.services.Sims.History(a.ctx, id, 10)
		if err != nil {
			return errMsg{err}
		}
		return openedMsg{id: id, def: def, runs: runs}
	}
}

func (a *App) runCmd(input string) tea.Cmd {
	id := a.currentID
	return func() tea.Msg {
		out, err := a.services.Sims.RunString(a.ctx, id, input)
		if err != nil {
			return errMsg{err}
		}
		return runDoneMsg{outcome: out}
	}
}

func (a *App) enumerateCmd() tea.Cmd {
	id, maxLength, limit := a.currentID, a.enumMaxLength, a.enumCycleLimit
	return func() tea.Msg {
		strs, err := a.services.Sims.Enumerate(a.ctx, id, maxLength, limit)
		if err != nil {
			return errMsg{err}
		}
		return enumMsg(strs)
	}
}

func (a *App) deleteCmd(id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Machines.Delete(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("machine deleted")
		},
		a.loadMachines(),
	)
}

func (a *App) renameCmd(id, name string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Machines.Rename(a.ctx, id, strings.TrimSpace(name)); err != nil {
				return errMsg{err}
			}
			return statusMsg("machine renamed")
		},
		a.loadMachines(),
	)
}

// createCmd parses the new-machine form "name kind (alphabet) initial"
// and stores an empty machine to flesh out via export/import or the
// automation mode.
func (a *App) createCmd(form string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			fields := strings.Fields(form)
			if len(fields) != 4 {
				return errMsg{fmt.Errorf("expected \"name kind (alphabet) initial\", got %q", form)}
			}
			alphabet, err := machine.ParseAlphabet(fields[2])
			if err != nil {
				return errMsg{err}
			}
			def := machine.Definition{
				Name:     fields[0],
				Kind:     machine.Kind(fields[1]),
				Alphabet: alphabet,
				States:   []machine.State{machine.State(fields[3])},
				Initial:  machine.State(fields[3]),
			}
			if _, err := a.services.Machines.Create(a.ctx, def); err != nil {
				return errMsg{err}
			}
			return statusMsg("machine created")
		},
		a.loadMachines(),
	)
}

func (a *App) exportCmd(id, name string) tea.Cmd {
	return func() tea.Msg {
		data, err := a.services.Machines.Export(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		path := name + ".zflap"
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errMsg{fmt.Errorf("write %s: %w", path, err)}
		}
		return statusMsg("exported to " + path)
	}
}

func (a *App) exportDOTCmd(id, name string) tea.Cmd {
	return func() tea.Msg {
		path := name + ".dot"
		f, err := os.Create(path)
		if err != nil {
			return errMsg{fmt.Errorf("create %s: %w", path, err)}
		}
		defer f.Close()
		if err := a.services.Machines.ExportDOT(a.ctx, id, f); err != nil {
			return errMsg{err}
		}
		return statusMsg("exported to " + path)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.state {
		case viewRunner:
			return a.handleRunnerKey(m)
		case viewEnumerator:
			return a.handleEnumeratorKey(m)
		case viewDetail:
			return a.handleDetailKey(m)
		default:
			return a.handleCatalogKey(m)
		}
	case machinesMsg:
		a.machines = []repository.Machine(m)
		if a.catCursor >= len(a.machines) {
			a.catCursor = 0
		}
	case openedMsg:
		a.currentID = m.id
		def := m.def
		a.current = &def
		a.runs = m.runs
		a.runCursor = 0
		a.state = viewDetail
	case runDoneMsg:
		out := m.outcome
		a.outcome = &out
		a.stepCursor = 0
		a.status = ""
		return a, a.refreshRuns()
	case enumMsg:
		a.enumStrings = []string(m)
		a.status = fmt.Sprintf("%d accepted strings up to length %d", len(a.enumStrings), a.enumMaxLength)
	case runsMsg:
		a.runs = []repository.Run(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) refreshRuns() tea.Cmd {
	id := a.currentID
	return func() tea.Msg {
		runs, err := a.services.Sims.History(a.ctx, id, 10)
		if err != nil {
			return errMsg{err}
		}
		return runsMsg(runs)
	}
}

func (a *App) handleCatalogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.catCursor > 0 {
			a.catCursor--
		}
	case "down", "j":
		if a.catCursor < len(a.machines)-1 {
			a.catCursor++
		}
	case "f":
		a.kindFilter = nextKindFilter(a.kindFilter)
		return a, a.loadMachines()
	case "enter":
		if len(a.machines) > 0 {
			a.status = ""
			return a, a.openMachine(a.machines[a.catCursor].ID)
		}
	case "n":
		a.modal = modalNewMachine
		a.inputBuffer = ""
	case "r":
		if len(a.machines) > 0 {
			a.modal = modalRename
			a.inputBuffer = a.machines[a.catCursor].Name
		}
	case "backspace", "delete", "d", "x":
		if len(a.machines) > 0 {
			a.modal = modalConfirmDelete
		}
	}
	return a, nil
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc", "c":
		a.state = viewCatalog
		a.status = ""
		return a, a.loadMachines()
	case "s":
		a.state = viewRunner
		a.runInput = ""
		a.outcome = nil
		a.status = ""
	case "g":
		if a.current != nil && a.current.Kind == machine.KindFinite {
			a.state = viewEnumerator
			a.enumStrings = nil
			a.status = ""
		} else {
			a.status = "enumeration needs a finite machine"
		}
	case "e":
		if a.current != nil {
			return a, a.exportCmd(a.currentID, a.current.Name)
		}
	case "d":
		if a.current != nil {
			return a, a.exportDOTCmd(a.currentID, a.current.Name)
		}
	case "up", "k":
		if a.runCursor > 0 {
			a.runCursor--
		}
	case "down", "j":
		if a.runCursor < len(a.runs)-1 {
			a.runCursor++
		}
	}
	return a, nil
}

func (a *App) handleRunnerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewDetail
		a.status = ""
		return a, nil
	case "h", "left":
		if a.outcome != nil && a.stepCursor > 0 {
			a.stepCursor--
			return a, nil
		}
	case "l", "right":
		if a.outcome != nil && a.stepCursor < len(a.outcome.Path)-1 {
			a.stepCursor++
			return a, nil
		}
	}
	switch m.Type {
	case tea.KeyEnter:
		a.status = "running..."
		return a, a.runCmd(a.runInput)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.runInput) > 0 {
			a.runInput = a.runInput[:len(a.runInput)-1]
		}
	case tea.KeyRunes:
		// h and l edit the input until a result is on screen
		if a.outcome == nil {
			a.runInput += string(m.Runes)
		} else if s := string(m.Runes); s != "h" && s != "l" {
			a.outcome = nil
			a.runInput += s
		}
	}
	return a, nil
}

func (a *App) handleEnumeratorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = viewDetail
		a.status = ""
	case "+", "l", "right":
		a.enumMaxLength++
	case "-", "h", "left":
		if a.enumMaxLength > 0 {
			a.enumMaxLength--
		}
	case "c":
		// cycle limit 0 means unbounded enumeration
		a.enumCycleLimit = (a.enumCycleLimit + 1) % 4
	case "enter":
		a.status = "enumerating..."
		return a, a.enumerateCmd()
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			if len(a.machines) > 0 {
				return a, a.deleteCmd(a.machines[a.catCursor].ID)
			}
		case "n", "N", "esc":
			a.modal = modalNone
		}
	case modalRename, modalNewMachine:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
		case tea.KeyEnter:
			text := strings.TrimSpace(a.inputBuffer)
			if text == "" {
				a.status = "enter a value"
				return a, nil
			}
			mode := a.modal
			a.modal = modalNone
			a.inputBuffer = ""
			if mode == modalNewMachine {
				return a, a.createCmd(text)
			}
			if len(a.machines) > 0 {
				return a, a.renameCmd(a.machines[a.catCursor].ID, text)
			}
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewDetail:
		body = a.renderDetail()
	case viewRunner:
		body = a.renderRunner()
	case viewEnumerator:
		body = a.renderEnumerator()
	default:
		body = a.renderCatalog()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// messages
type machinesMsg []repository.Machine

type openedMsg struct {
	id   string
	def  machine.Definition
	runs []repository.Run
}

type runDoneMsg struct {
	outcome service.RunOutcome
}

type runsMsg []repository.Run

type enumMsg []string

type statusMsg string

type errMsg struct{ error }

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) renderCatalog() string {
	label := a.kindFilter
	if label == "" {
		label = "all"
	}
	title := titleStyle.Render("ZFlap Machines - " + label)
	out := title + "\n"
	if len(a.machines) == 0 {
		out += "  (no machines yet)\n"
	}
	for i, m := range a.machines {
		marker := " "
		if i == a.catCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-24s  %s\n", marker, m.Name, m.Kind)
	}
	out += "[enter] Open  [n] New  [f] Filter kind  [r] Rename  [d] Delete  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderDetail() string {
	if a.current == nil {
		return "loading..."
	}
	def := a.current
	title := titleStyle.Render(def.Name + " (" + string(def.Kind) + ")")
	out := title + "\n"
	out += fmt.Sprintf("Alphabet: %s\nStates: %s\nInitial: %s  Finals: %s\n",
		def.Alphabet, def.StatesLine(), def.Initial, joinStates(def.Finals))
	if def.Kind == machine.KindPushdown {
		out += fmt.Sprintf("Stack bottom: %s\n", def.Bottom())
	}

	out += "\nTransitions:\n"
	for _, row := range transitionLines(def) {
		out += "  " + row + "\n"
	}

	out += "\nRecent runs:\n"
	if len(a.runs) == 0 {
		out += "  (none)\n"
	}
	for i, r := range a.runs {
		marker := " "
		if i == a.runCursor {
			marker = "▶"
		}
		input := r.Input
		if input == "" {
			input = "ε"
		}
		out += fmt.Sprintf("%s %-16s  %-9s  steps %d\n", marker, input, r.Verdict, r.Steps)
	}

	out += "\n[s] Simulate  [g] Generate strings  [e] Export  [d] DOT  [esc] Catalog  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderRunner() string {
	title := titleStyle.Render("Simulate - " + a.current.Name)
	out := title + "\n"
	out += fmt.Sprintf("Input: %s_\n", a.runInput)
	out += "[enter] Run  [esc] Back\n"

	if a.outcome != nil {
		out += fmt.Sprintf("\nVerdict: %s", a.outcome.Verdict)
		if a.outcome.Steps > 0 {
			out += fmt.Sprintf("  (%d configurations)", a.outcome.Steps)
		}
		out += "\n"
		if len(a.outcome.Path) > 0 {
			out += fmt.Sprintf("Step %d of %d  [h] Prev  [l] Next\n", a.stepCursor+1, len(a.outcome.Path))
			out += "  " + a.outcome.Path[a.stepCursor] + "\n"
		}
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderEnumerator() string {
	title := titleStyle.Render("Generate - " + a.current.Name)
	limit := "unbounded"
	if a.enumCycleLimit > 0 {
		limit = fmt.Sprintf("%d visits per state", a.enumCycleLimit)
	}
	out := title + "\n"
	out += fmt.Sprintf("Max length: %d  Cycle limit: %s\n", a.enumMaxLength, limit)
	out += "[enter] Generate  [h/l] Length  [c] Cycle limit  [esc] Back\n"

	if a.enumStrings != nil {
		out += "\n"
		for _, s := range a.enumStrings {
			if s == "" {
				s = "ε"
			}
			out += "  " + s + "\n"
		}
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmDelete:
		name := ""
		if len(a.machines) > 0 {
			name = a.machines[a.catCursor].Name
		}
		return titleStyle.Render("Delete "+name+"?") + "\nThis also deletes its run history.\n[y] Yes  [n] No"
	case modalRename:
		return titleStyle.Render("Rename machine") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalNewMachine:
		return titleStyle.Render("New machine - name kind (alphabet) initial") +
			fmt.Sprintf("\ne.g. my-dfa finite (a,b) q0\n%s\n[enter] Create  [esc] Cancel", a.inputBuffer)
	default:
		return ""
	}
}

func transitionLines(def *machine.Definition) []string {
	var out []string
	switch def.Kind {
	case machine.KindPushdown:
		for _, t := range def.PDATransitions {
			push := t.Push
			if push == "" {
				push = "ε"
			}
			out = append(out, fmt.Sprintf("%s, %s, %s/%s -> %s", t.From, t.Input, t.Pop, push, t.To))
		}
	case machine.KindTuring:
		for _, t := range def.TMTransitions {
			out = append(out, fmt.Sprintf("%s, %s/%s,%s -> %s", t.From, t.Read, t.Write, t.Move, t.To))
		}
	default:
		for _, r := range def.Rules {
			out = append(out, fmt.Sprintf("%s, %s -> %s", r.From, r.Symbol, r.To))
		}
	}
	if out == nil {
		out = []string{"(none)"}
	}
	return out
}

func nextKindFilter(current string) string {
	switch current {
	case "":
		return "finite"
	case "finite":
		return "pushdown"
	case "pushdown":
		return "turing"
	default:
		return ""
	}
}

func joinStates(states []machine.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
