package universe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// universeFile is the on-disk shape: a benchmark and its symbols.
type universeFile struct {
	Benchmark string   `yaml:"benchmark"`
	Symbols   []string `yaml:"symbols"`
}

// LoadFile reads a YAML universe. Unknown keys are rejected so a typo
// cannot silently shrink a run to nothing.
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f universeFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse universe file %s: %w", path, err)
	}

	u := NewStatic(f.Symbols, f.Benchmark)
	if len(u.symbols) == 0 {
		return nil, fmt.Errorf("universe file %s lists no symbols", path)
	}
	return u, nil
}
