package repository

import (
	"context"
	"database/sql"
	"time"
)

// RunRepo handles recorded simulation runs.
type RunRepo struct {
	db DBTX
}

func NewRunRepo(db DBTX) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Insert(ctx context.Context, run Run) error {
	created := run.CreatedAt
	if created.IsZero() {
		created = Now()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO runs(id, machine_id, input, verdict, steps, max_steps, path, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, run.ID, run.MachineID, run.Input, run.Verdict, run.Steps, run.MaxSteps, run.Path, created)
	return err
}

func (r *RunRepo) GetByID(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, machine_id, input, verdict, steps, max_steps, path, created_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListByMachine returns the most recent runs first, up to limit.
func (r *RunRepo) ListByMachine(ctx context.Context, machineID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, machine_id, input, verdict, steps, max_steps, path, created_at
	FROM runs WHERE machine_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?;
	`, machineID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// CountByVerdict returns per-verdict totals for one machine.
func (r *RunRepo) CountByVerdict(ctx context.Context, machineID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT verdict, COUNT(*) FROM runs WHERE machine_id = ? GROUP BY verdict;
	`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var verdict string
		var n int
		if err := rows.Scan(&verdict, &n); err != nil {
			return nil, err
		}
		out[verdict] = n
	}
	return out, rows.Err()
}

// PruneOlderThan deletes runs created before cutoff and reports how many
// went away.
func (r *RunRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var path sql.NullString
	if err := row.Scan(&run.ID, &run.MachineID, &run.Input, &run.Verdict, &run.Steps, &run.MaxSteps, &path, &run.CreatedAt); err != nil {
		return Run{}, err
	}
	if path.Valid {
		run.Path = &path.String
	}
	return run, nil
}
