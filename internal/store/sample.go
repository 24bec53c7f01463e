package store

import (
	_ "embed"
	"fmt"
)

//go:embed sample.yaml
var sampleYAML []byte

// SampleRecords returns the built-in demo records
func SampleRecords() ([]Record, error) {
	records, err := ParseSeed(sampleYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in sample: %w", err)
	}
	return records, nil
}
