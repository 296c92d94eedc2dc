package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/machine"
	"github.com/zflap/zflap/internal/zformat"
)

// SeedExamples inserts the classic demo machines when the catalog is
// empty: the two-step DFA, the aⁿbⁿ pushdown machine and the
// zeros-to-ones Turing machine. IDs derive from the machine name, so
// reseeding is idempotent. The check and the inserts share one
// transaction, so a half-seeded catalog never survives a failure.
func SeedExamples(ctx context.Context, db *sql.DB) error {
	return WithTx(db, func(tx *sql.Tx) error {
		repo := repository.NewMachineRepo(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count machines: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, def := range ExampleDefinitions() {
			data, err := zformat.Marshal(def)
			if err != nil {
				return fmt.Errorf("seed %s: %w", def.Name, err)
			}
			m := repository.Machine{
				ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte("machine:"+def.Name)).String(),
				Name:       def.Name,
				Kind:       string(def.Kind),
				Definition: string(data),
			}
			if err := repo.Insert(ctx, m); err != nil {
				return fmt.Errorf("seed %s: %w", def.Name, err)
			}
		}
		return nil
	})
}

// ExampleDefinitions returns the built-in demo machines.
func ExampleDefinitions() []machine.Definition {
	return []machine.Definition{
		{
			Name:     "ab-chain",
			Kind:     machine.KindFinite,
			Alphabet: machine.NewAlphabet('a', 'b'),
			States:   []machine.State{"q0", "q1", "q2"},
			Initial:  "q0",
			Finals:   []machine.State{"q2"},
			Rules: []machine.Rule{
				{From: "q0", Symbol: 'a', To: "q1"},
				{From: "q1", Symbol: 'b', To: "q2"},
			},
		},
		{
			Name:     "an-bn",
			Kind:     machine.KindPushdown,
			Alphabet: machine.NewAlphabet('a', 'b'),
			States:   []machine.State{"S", "T", "F"},
			Initial:  "S",
			Finals:   []machine.State{"F"},
			PDATransitions: []machine.PDATransition{
				{From: "S", Input: 'a', Pop: machine.Epsilon, Push: "A", To: "S"},
				{From: "S", Input: 'b', Pop: 'A', Push: "", To: "T"},
				{From: "T", Input: 'b', Pop: 'A', Push: "", To: "T"},
				{From: "T", Input: machine.Epsilon, Pop: 'Z', Push: "Z", To: "F"},
			},
		},
		{
			Name:     "zeros-to-ones",
			Kind:     machine.KindTuring,
			Alphabet: machine.NewAlphabet('0', '1'),
			States:   []machine.State{"q0", "qf"},
			Initial:  "q0",
			Finals:   []machine.State{"qf"},
			TMTransitions: []machine.TMTransition{
				{From: "q0", Read: '0', To: "q0", Write: '1', Move: machine.MoveRight},
				{From: "q0", Read: machine.Epsilon, To: "qf", Write: machine.Epsilon, Move: machine.MoveStay},
			},
		},
	}
}
