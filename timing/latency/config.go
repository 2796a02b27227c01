// Package latency holds the per-functional-unit-class configuration
// (latency in cycles, number of reservation stations) that parameterizes
// the scheduler, and JSON load/save helpers for it.
package latency

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archsim/tomasulo16/insts"
)

// ClassConfig is the {latency_cycles, station_count} pair spec.md §6
// assigns to every functional-unit class.
type ClassConfig struct {
	Latency      uint   `json:"latency_cycles"`
	StationCount uint   `json:"station_count"`
}

// Config holds one ClassConfig per functional-unit class, keyed by class
// name so it round-trips cleanly through JSON.
type Config struct {
	Load    ClassConfig `json:"LOAD"`
	Store   ClassConfig `json:"STORE"`
	AddSub  ClassConfig `json:"ADD_SUB"`
	Mul     ClassConfig `json:"MUL"`
	Nor     ClassConfig `json:"NOR"`
	Beq     ClassConfig `json:"BEQ"`
	CallRet ClassConfig `json:"CALL_RET"`
}

// DefaultConfig returns the FU configuration defaults spec.md §6 lists:
// LOAD=(6,2), STORE=(6,2), ADD_SUB=(2,4), MUL=(10,2), NOR=(1,2),
// BEQ=(1,2), CALL_RET=(1,1).
func DefaultConfig() *Config {
	return &Config{
		Load:    ClassConfig{Latency: 6, StationCount: 2},
		Store:   ClassConfig{Latency: 6, StationCount: 2},
		AddSub:  ClassConfig{Latency: 2, StationCount: 4},
		Mul:     ClassConfig{Latency: 10, StationCount: 2},
		Nor:     ClassConfig{Latency: 1, StationCount: 2},
		Beq:     ClassConfig{Latency: 1, StationCount: 2},
		CallRet: ClassConfig{Latency: 1, StationCount: 1},
	}
}

// Class returns the configuration for a functional-unit class.
func (c *Config) Class(class insts.FUClass) ClassConfig {
	switch class {
	case insts.FULoad:
		return c.Load
	case insts.FUStore:
		return c.Store
	case insts.FUAddSub:
		return c.AddSub
	case insts.FUMul:
		return c.Mul
	case insts.FUNor:
		return c.Nor
	case insts.FUBeq:
		return c.Beq
	case insts.FUCallRet:
		return c.CallRet
	default:
		panic(fmt.Sprintf("latency: unknown class %v", class))
	}
}

// LoadConfig loads a Config from a JSON file, starting from defaults so a
// partial file only overrides the classes it names.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FU config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse FU config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize FU config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write FU config file: %w", err)
	}

	return nil
}

// Validate checks that every class has a positive latency and at least
// one station.
func (c *Config) Validate() error {
	classes := []struct {
		name string
		cc   ClassConfig
	}{
		{"LOAD", c.Load}, {"STORE", c.Store}, {"ADD_SUB", c.AddSub},
		{"MUL", c.Mul}, {"NOR", c.Nor}, {"BEQ", c.Beq}, {"CALL_RET", c.CallRet},
	}
	for _, cl := range classes {
		if cl.cc.Latency == 0 {
			return fmt.Errorf("%s latency_cycles must be > 0", cl.name)
		}
		if cl.cc.StationCount == 0 {
			return fmt.Errorf("%s station_count must be > 0", cl.name)
		}
	}
	return nil
}
