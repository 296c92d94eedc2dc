package repository

import (
	"context"
	"database/sql"
)

// MachineRepo handles the machine catalog.
type MachineRepo struct {
	db DBTX
}

func NewMachineRepo(db DBTX) *MachineRepo { return &MachineRepo{db: db} }

func (r *MachineRepo) Insert(ctx context.Context, m Machine) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO machines(id, name, kind, definition, created_at, updated_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, m.ID, m.Name, m.Kind, m.Definition)
	return err
}

func (r *MachineRepo) Update(ctx context.Context, m Machine) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE machines SET name = ?, kind = ?, definition = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?;
	`, m.Name, m.Kind, m.Definition, m.ID)
	return err
}

func (r *MachineRepo) GetByID(ctx context.Context, id string) (*Machine, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, kind, definition, created_at, updated_at FROM machines WHERE id = ?`, id)
	return scanMachinePtr(row)
}

func (r *MachineRepo) GetByName(ctx context.Context, name string) (*Machine, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, kind, definition, created_at, updated_at FROM machines WHERE name = ?`, name)
	return scanMachinePtr(row)
}

// List returns the catalog ordered by name; kind filters when non-empty.
func (r *MachineRepo) List(ctx context.Context, kind string) ([]Machine, error) {
	query := `SELECT id, name, kind, definition, created_at, updated_at FROM machines`
	var args []interface{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MachineRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = ?`, id)
	return err
}

func (r *MachineRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM machines`).Scan(&n)
	return n, err
}

func scanMachine(row scanner) (Machine, error) {
	var m Machine
	if err := row.Scan(&m.ID, &m.Name, &m.Kind, &m.Definition, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Machine{}, err
	}
	return m, nil
}

func scanMachinePtr(row *sql.Row) (*Machine, error) {
	m, err := scanMachine(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
