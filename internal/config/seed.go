package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the optional YAML bootstrap layout for synthetic users and
// radio cells. The initial layout is treated as input data; this type
// only parses a pre-generated one, it does not perform any
// placement/generation logic itself.
type Seed struct {
	Users []SeedPoint `yaml:"users"`
	Cells []SeedPoint `yaml:"cells"`
}

// SeedPoint is one (x,y) entry in a Seed file.
type SeedPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LoadSeed reads and parses a YAML seed file at path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read seed file %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse seed file %s: %w", path, err)
	}
	return &s, nil
}
