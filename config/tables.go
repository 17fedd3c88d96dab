/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"io"
	"os"

	"github.com/suparena/recordstore/registry"
	"gopkg.in/yaml.v3"
)

// TableDefinition is the YAML form of a registry.Schema.
type TableDefinition struct {
	Name         string            `yaml:"name"`
	Table        string            `yaml:"table"`
	PartitionKey string            `yaml:"partitionKey"`
	SortKey      string            `yaml:"sortKey,omitempty"`
	Indexes      map[string]string `yaml:"indexes,omitempty"`
	Required     []string          `yaml:"required"`
}

// Schema converts d into a registry.Schema.
func (d TableDefinition) Schema() registry.Schema {
	return registry.Schema{
		Name:         d.Name,
		Table:        d.Table,
		PartitionKey: d.PartitionKey,
		SortKey:      d.SortKey,
		Indexes:      d.Indexes,
		Required:     d.Required,
	}
}

// TablesFile is the document read by LoadTables.
type TablesFile struct {
	Tables []TableDefinition `yaml:"tables"`
}

// LoadTables parses table definitions from r and validates each of them.
func LoadTables(r io.Reader) ([]registry.Schema, error) {
	var file TablesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse table definitions: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, fmt.Errorf("no tables defined")
	}

	seen := make(map[string]bool, len(file.Tables))
	schemas := make([]registry.Schema, 0, len(file.Tables))
	for _, def := range file.Tables {
		s := def.Schema()
		if s.Name == "" {
			s.Name = s.Table
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Table] {
			return nil, fmt.Errorf("table %q defined twice", s.Table)
		}
		seen[s.Table] = true
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// LoadTablesFile reads table definitions from path. An empty path yields the
// registered schemas.
func LoadTablesFile(path string) ([]registry.Schema, error) {
	if path == "" {
		return registry.Schemas(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTables(f)
}

// DefinitionsOf converts schemas back to their YAML form.
func DefinitionsOf(schemas []registry.Schema) TablesFile {
	file := TablesFile{Tables: make([]TableDefinition, 0, len(schemas))}
	for _, s := range schemas {
		file.Tables = append(file.Tables, TableDefinition{
			Name:         s.Name,
			Table:        s.Table,
			PartitionKey: s.PartitionKey,
			SortKey:      s.SortKey,
			Indexes:      s.Indexes,
			Required:     s.Required,
		})
	}
	return file
}
