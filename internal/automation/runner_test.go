package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zflap/zflap/internal/database"
	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/service"
)

func runScript(t *testing.T, r *Runner, lines ...string) []response {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	r.In = strings.NewReader(strings.Join(lines, "\n") + "\n")
	r.Out = &out
	require.NoError(t, r.Run(ctx))

	var responses []response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp response
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, len(lines))
	return responses
}

func newStoreBackedRunner(t *testing.T) *Runner {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	machines := &service.MachineService{Machines: repository.NewMachineRepo(db)}
	sims := &service.SimulationService{
		Machines: machines,
		Runs:     repository.NewRunRepo(db),
		MaxSteps: 1000,
	}
	return &Runner{Machines: machines, Sims: sims, MaxSteps: 1000}
}

func TestFiniteDialogue(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`{"action":"create_machine","name":"ends-a","kind":"finite","alphabet":"(a,b)","initial_state":"q0"}`,
		`{"action":"add_transition","from":"q0","to":"q1","symbol":"a"}`,
		`{"action":"add_transition","from":"q1","to":"q1","symbol":"a"}`,
		`{"action":"add_transition","from":"q1","to":"q0","symbol":"b"}`,
		`{"action":"add_final_state","state":"q1"}`,
		`{"action":"is_accepted","input":"aba"}`,
		`{"action":"is_accepted","input":"ab"}`,
		`{"action":"quit"}`,
	)

	for _, resp := range responses {
		require.Equal(t, "success", resp.Status, resp.Message)
	}
	require.NotNil(t, responses[5].Accepted)
	require.True(t, *responses[5].Accepted)
	require.NotNil(t, responses[6].Accepted)
	require.False(t, *responses[6].Accepted)
}

func TestGenerateAcceptedUsesEpsilonMarker(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`{"action":"create_machine","name":"even-a","kind":"finite","alphabet":"(a)","initial_state":"q0","final_states":["q0"]}`,
		`{"action":"add_transition","from":"q0","to":"q1","symbol":"a"}`,
		`{"action":"add_transition","from":"q1","to":"q0","symbol":"a"}`,
		`{"action":"generate_accepted","max_length":4,"cycle_limit":0}`,
		`{"action":"quit"}`,
	)

	require.Equal(t, "success", responses[3].Status, responses[3].Message)
	require.Equal(t, []string{"ε", "aa", "aaaa"}, responses[3].Strings)
}

func TestPushdownRunDialogue(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`{"action":"create_machine","name":"pairs","kind":"pushdown","alphabet":"(a,b)","initial_state":"S"}`,
		`{"action":"add_transition","from":"S","to":"S","input":"a","pop":"Z","push":"AZ"}`,
		`{"action":"add_transition","from":"S","to":"F","input":"b","pop":"A","push":""}`,
		`{"action":"add_final_state","state":"F"}`,
		`{"action":"run","input":"ab"}`,
		`{"action":"run","input":"ba"}`,
		`{"action":"quit"}`,
	)

	for _, resp := range responses {
		require.Equal(t, "success", resp.Status, resp.Message)
	}

	accepted := responses[4]
	require.Equal(t, "accepted", accepted.Verdict)
	require.NotNil(t, accepted.Steps)
	require.Equal(t, 3, *accepted.Steps)
	require.Len(t, accepted.Path, 2)
	require.Contains(t, accepted.Path[0], "S -a-> S")
	require.Contains(t, accepted.Path[0], "stack AZ")

	rejected := responses[5]
	require.Equal(t, "rejected", rejected.Verdict)
	require.Empty(t, rejected.Path)
}

func TestTuringRunDialogue(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`{"action":"create_machine","name":"flip","kind":"turing","alphabet":"(0,1)","initial_state":"q0"}`,
		`{"action":"add_transition","from":"q0","to":"q0","read":"0","write":"1","move":"R"}`,
		`{"action":"add_transition","from":"q0","to":"q0","read":"1","write":"1","move":"R"}`,
		`{"action":"add_transition","from":"q0","to":"halt","read":"","write":"","move":"S"}`,
		`{"action":"add_final_state","state":"halt"}`,
		`{"action":"run","input":"010"}`,
		`{"action":"quit"}`,
	)

	for _, resp := range responses {
		require.Equal(t, "success", resp.Status, resp.Message)
	}
	run := responses[5]
	require.Equal(t, "accepted", run.Verdict)
	require.Len(t, run.Path, 4)
}

func TestProtocolErrorsKeepLoopAlive(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`not json at all`,
		`{"action":"launch_missiles"}`,
		`{"action":"is_accepted","input":"a"}`,
		`{"action":"create_machine","name":"ok","kind":"finite","alphabet":"(a)","initial_state":"q0","final_states":["q0"]}`,
		`{"action":"add_transition","from":"q0","to":"q0","symbol":"z"}`,
		`{"action":"is_accepted","input":""}`,
		`{"action":"quit"}`,
	)

	require.Equal(t, "error", responses[0].Status)
	require.Contains(t, responses[0].Message, "parse request")
	require.Equal(t, "error", responses[1].Status)
	require.Contains(t, responses[1].Message, "unknown action")
	require.Equal(t, "error", responses[2].Status)
	require.Contains(t, responses[2].Message, "no machine")
	require.Equal(t, "success", responses[3].Status)
	require.Equal(t, "error", responses[4].Status)
	require.Contains(t, responses[4].Message, "not in alphabet")
	require.Equal(t, "success", responses[5].Status)
	require.NotNil(t, responses[5].Accepted)
	require.True(t, *responses[5].Accepted)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	r := newStoreBackedRunner(t)
	responses := runScript(t, r,
		`{"action":"create_machine","name":"ends-a","kind":"finite","alphabet":"(a,b)","initial_state":"q0","final_states":["q1"]}`,
		`{"action":"add_transition","from":"q0","to":"q1","symbol":"a"}`,
		`{"action":"save"}`,
		`{"action":"create_machine","name":"scratch","kind":"finite","alphabet":"(a)","initial_state":"p0"}`,
		`{"action":"load","name":"ends-a"}`,
		`{"action":"is_accepted","input":"a"}`,
		`{"action":"quit"}`,
	)

	for _, resp := range responses {
		require.Equal(t, "success", resp.Status, resp.Message)
	}
	require.NotNil(t, responses[5].Accepted)
	require.True(t, *responses[5].Accepted)
}

func TestRunRecordsHistoryForStoredMachines(t *testing.T) {
	t.Parallel()

	r := newStoreBackedRunner(t)
	responses := runScript(t, r,
		`{"action":"create_machine","name":"pairs","kind":"pushdown","alphabet":"(a,b)","initial_state":"S"}`,
		`{"action":"add_transition","from":"S","to":"S","input":"a","pop":"Z","push":"AZ"}`,
		`{"action":"add_transition","from":"S","to":"F","input":"b","pop":"A","push":""}`,
		`{"action":"add_final_state","state":"F"}`,
		`{"action":"run","input":"ab"}`, // pre-save: in-memory only
		`{"action":"save"}`,
		`{"action":"run","input":"ab"}`,
		`{"action":"run","input":"ab","max_steps":50}`, // explicit budget stays in-memory
		`{"action":"quit"}`,
	)

	for _, resp := range responses {
		require.Equal(t, "success", resp.Status, resp.Message)
	}
	require.Equal(t, "accepted", responses[6].Verdict)
	require.NotNil(t, responses[6].Steps)
	require.Equal(t, 3, *responses[6].Steps)
	require.Len(t, responses[6].Path, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m, err := r.Machines.FindByName(ctx, "pairs")
	require.NoError(t, err)
	require.NotNil(t, m)

	history, err := r.Sims.History(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1) // only the post-save default-budget run
	require.Equal(t, "ab", history[0].Input)
	require.Equal(t, "accepted", history[0].Verdict)
	require.NotNil(t, history[0].Path)
}

func TestSaveWithoutStore(t *testing.T) {
	t.Parallel()

	r := &Runner{MaxSteps: 100}
	responses := runScript(t, r,
		`{"action":"create_machine","name":"m","kind":"finite","alphabet":"(a)","initial_state":"q0","final_states":["q0"]}`,
		`{"action":"save"}`,
		`{"action":"quit"}`,
	)
	require.Equal(t, "error", responses[1].Status)
	require.Contains(t, responses[1].Message, "no catalog store")
}
