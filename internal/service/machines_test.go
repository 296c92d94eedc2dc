package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zflap/zflap/internal/machine"
)

func TestMachineCRUD(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machines, _ := newTestServices(t)

	m := seedExample(t, machines, ctx, "ab-chain")
	require.NotEmpty(t, m.ID)
	require.Equal(t, "finite", m.Kind)

	def, err := machines.Load(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "ab-chain", def.Name)
	require.Equal(t, machine.KindFinite, def.Kind)
	require.Len(t, def.Rules, 2)

	require.NoError(t, machines.Rename(ctx, m.ID, "chain"))
	def, err = machines.LoadByName(ctx, "chain")
	require.NoError(t, err)
	require.Equal(t, "chain", def.Name)

	list, err := machines.List(ctx, "finite")
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = machines.List(ctx, "turing")
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, machines.Delete(ctx, m.ID))
	_, err = machines.Load(ctx, m.ID)
	require.Error(t, err)
}

func TestCreateRejectsInvalidDefinition(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machines, _ := newTestServices(t)

	def := machine.Definition{
		Name:     "broken",
		Kind:     machine.KindFinite,
		Alphabet: machine.NewAlphabet('a'),
		States:   []machine.State{"q0"},
		Initial:  "q9", // undeclared
	}
	_, err := machines.Create(ctx, def)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machines, sims := newTestServices(t)
	m := seedExample(t, machines, ctx, "an-bn")

	data, err := machines.Export(ctx, m.ID)
	require.NoError(t, err)
	require.Contains(t, string(data), "kind: pushdown")

	copied, err := machines.Import(ctx, "an-bn-copy", data)
	require.NoError(t, err)
	require.NotEqual(t, m.ID, copied.ID)

	out, err := sims.RunString(ctx, copied.ID, "aabb")
	require.NoError(t, err)
	require.Equal(t, machine.VerdictAccepted, out.Verdict)
}

func TestExportDOT(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machines, _ := newTestServices(t)
	m := seedExample(t, machines, ctx, "ab-chain")

	var buf bytes.Buffer
	require.NoError(t, machines.ExportDOT(ctx, m.ID, &buf))
	require.Contains(t, buf.String(), "doublecircle")
	require.Contains(t, buf.String(), "rankdir=LR")
}
