package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profileFile is the YAML overlay shape. Pointer and nil-able fields
// distinguish "absent, keep the base value" from an explicit zero.
type profileFile struct {
	Name          string             `yaml:"name"`
	MaxCandidates *int               `yaml:"max_candidates"`
	Timeframes    []string           `yaml:"timeframes"`
	MinHistory    map[string]int     `yaml:"min_history"`
	Stages        []string           `yaml:"stages"`
	Thresholds    map[string]float64 `yaml:"thresholds"`
	Weights       map[string]int     `yaml:"weights"`
	DeriveSetups  *bool              `yaml:"derive_setups"`
}

// Load reads a profile overlay from YAML and merges it over the
// built-in profile of the same name. A name without a built-in starts
// from an empty profile and must supply every section. Thresholds and
// min_history merge per key; stages, weights and timeframes replace
// the base wholesale.
// ⭐ SSOT: KnownFields(true), a typo in the file fails the load
func Load(path string) (*StrategyProfile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var file profileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Name == "" {
		return nil, data, ValidationError{"name", "required"}
	}

	profile := baseProfile(file.Name)
	applyOverlay(profile, &file)

	if err := Validate(profile); err != nil {
		return nil, data, err
	}
	return profile, data, nil
}

func baseProfile(name string) *StrategyProfile {
	if build, ok := builtins()[name]; ok {
		return build()
	}
	return &StrategyProfile{
		Name:       name,
		MinHistory: make(map[string]int),
		Thresholds: make(map[string]float64),
		Weights:    make(map[string]int),
	}
}

func applyOverlay(p *StrategyProfile, file *profileFile) {
	if file.MaxCandidates != nil {
		p.MaxCandidates = *file.MaxCandidates
	}
	if file.Timeframes != nil {
		p.Timeframes = append([]string(nil), file.Timeframes...)
	}
	if file.Stages != nil {
		p.Stages = append([]string(nil), file.Stages...)
	}
	if file.Weights != nil {
		p.Weights = make(map[string]int, len(file.Weights))
		for k, v := range file.Weights {
			p.Weights[k] = v
		}
	}
	for k, v := range file.MinHistory {
		p.MinHistory[k] = v
	}
	for k, v := range file.Thresholds {
		p.Thresholds[k] = v
	}
	if file.DeriveSetups != nil {
		p.DeriveSetups = *file.DeriveSetups
	}
}

// Hash returns the SHA256 of the profile's canonical JSON encoding.
// Map keys marshal in sorted order, so equal profiles always hash
// equal and a report can be traced back to its exact configuration.
func Hash(p *StrategyProfile) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
