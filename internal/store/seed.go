package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of a seed fixture
type SeedFile struct {
	Records []Record `yaml:"records"`
}

// ParseSeed decodes a seed fixture
func ParseSeed(data []byte) ([]Record, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	for i, r := range f.Records {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("seed record %d: id and name are required", i)
		}
	}
	return f.Records, nil
}

// SeedFromFile loads a YAML fixture into the store and returns how many
// records it wrote
func (s *Store) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	records, err := ParseSeed(data)
	if err != nil {
		return 0, err
	}
	if err := s.Upsert(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
