// Package service wires the simulation engine, the persistence codec and
// the catalog store into the operations the workbench and the automation
// mode call.
package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/zflap/zflap/internal/database/repository"
	"github.com/zflap/zflap/internal/machine"
	"github.com/zflap/zflap/internal/zformat"
)

// MachineService manages the machine catalog.
type MachineService struct {
	Machines *repository.MachineRepo
}

// Create validates and stores a new machine.
func (s *MachineService) Create(ctx context.Context, def machine.Definition) (repository.Machine, error) {
	if def.Name == "" {
		return repository.Machine{}, fmt.Errorf("create machine: name is empty")
	}
	data, err := zformat.Marshal(def)
	if err != nil {
		return repository.Machine{}, fmt.Errorf("create machine: %w", err)
	}
	m := repository.Machine{
		ID:         uuid.NewString(),
		Name:       def.Name,
		Kind:       string(def.Kind),
		Definition: string(data),
	}
	if err := s.Machines.Insert(ctx, m); err != nil {
		return repository.Machine{}, fmt.Errorf("insert machine: %w", err)
	}
	return m, nil
}

// Load fetches a machine and decodes its definition.
func (s *MachineService) Load(ctx context.Context, id string) (machine.Definition, error) {
	m, err := s.Machines.GetByID(ctx, id)
	if err != nil {
		return machine.Definition{}, fmt.Errorf("load machine: %w", err)
	}
	if m == nil {
		return machine.Definition{}, fmt.Errorf("load machine: %s not found", id)
	}
	return decode(m)
}

// LoadByName is Load keyed by the unique machine name.
func (s *MachineService) LoadByName(ctx context.Context, name string) (machine.Definition, error) {
	m, err := s.Machines.GetByName(ctx, name)
	if err != nil {
		return machine.Definition{}, fmt.Errorf("load machine: %w", err)
	}
	if m == nil {
		return machine.Definition{}, fmt.Errorf("load machine: %q not found", name)
	}
	return decode(m)
}

// FindByName returns the catalog row for name, nil when absent.
func (s *MachineService) FindByName(ctx context.Context, name string) (*repository.Machine, error) {
	m, err := s.Machines.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find machine: %w", err)
	}
	return m, nil
}

// SaveDefinition re-validates and stores an edited definition under an
// existing catalog id, overwriting name and kind along with it.
func (s *MachineService) SaveDefinition(ctx context.Context, id string, def machine.Definition) error {
	data, err := zformat.Marshal(def)
	if err != nil {
		return fmt.Errorf("save machine: %w", err)
	}
	m := repository.Machine{
		ID:         id,
		Name:       def.Name,
		Kind:       string(def.Kind),
		Definition: string(data),
	}
	if err := s.Machines.Update(ctx, m); err != nil {
		return fmt.Errorf("update machine: %w", err)
	}
	return nil
}

// Rename changes only the display name.
func (s *MachineService) Rename(ctx context.Context, id, name string) error {
	def, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	def.Name = name
	return s.SaveDefinition(ctx, id, def)
}

// Delete removes a machine; its runs go with it via the FK cascade.
func (s *MachineService) Delete(ctx context.Context, id string) error {
	if err := s.Machines.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete machine: %w", err)
	}
	return nil
}

// List returns catalog rows, optionally filtered by kind.
func (s *MachineService) List(ctx context.Context, kind string) ([]repository.Machine, error) {
	out, err := s.Machines.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return out, nil
}

// Export returns the stored project text verbatim.
func (s *MachineService) Export(ctx context.Context, id string) ([]byte, error) {
	m, err := s.Machines.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export machine: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("export machine: %s not found", id)
	}
	return []byte(m.Definition), nil
}

// Import parses project text and stores it as a new machine. A non-empty
// name overrides the one in the file.
func (s *MachineService) Import(ctx context.Context, name string, data []byte) (repository.Machine, error) {
	def, err := zformat.Unmarshal(data)
	if err != nil {
		return repository.Machine{}, fmt.Errorf("import machine: %w", err)
	}
	if name != "" {
		def.Name = name
	}
	return s.Create(ctx, def)
}

// ExportDOT renders the machine as Graphviz.
func (s *MachineService) ExportDOT(ctx context.Context, id string, w io.Writer) error {
	def, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := zformat.WriteDOT(w, def); err != nil {
		return fmt.Errorf("write dot: %w", err)
	}
	return nil
}

func decode(m *repository.Machine) (machine.Definition, error) {
	def, err := zformat.Unmarshal([]byte(m.Definition))
	if err != nil {
		return machine.Definition{}, fmt.Errorf("decode machine %s: %w", m.Name, err)
	}
	if def.Name == "" {
		def.Name = m.Name
	}
	return def, nil
}
