package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const SupportedSchema = "v1"

// Spec is one transform task: where the records come from, the script that
// reshapes them, and how hard to fan out.
type Spec struct {
	SchemaVersion string `yaml:"schema_version"`

	Name   string `yaml:"name"`
	From   string `yaml:"from"`   // source location; ${var} expanded against Vars
	Script string `yaml:"script"` // inline transform source
	Engine string `yaml:"engine"` // script engine name (default "js")
	Codec  string `yaml:"codec"`  // record codec name (default "ion")

	// Concurrent is the lane count. Zero (key absent) means strictly
	// sequential, order-preserving processing; any set value must be >= 2.
	// With lanes the output order is not preserved.
	Concurrent int `yaml:"concurrent"`

	Vars map[string]string `yaml:"vars"`
}

// LoadSpec parses a task YAML, gates on schema_version, applies defaults,
// and validates.
func LoadSpec(path string) (Spec, error) {
	var s Spec
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, err
	}
	if s.SchemaVersion == "" {
		s.SchemaVersion = SupportedSchema
	}
	if s.SchemaVersion != SupportedSchema {
		return s, fmt.Errorf("task schema_version %q not supported (want %q)", s.SchemaVersion, SupportedSchema)
	}
	if s.Engine == "" {
		s.Engine = "js"
	}
	if s.Codec == "" {
		s.Codec = "ion"
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate rejects specs that must never reach the pipeline: a missing
// source or script, or a lane count of one or below.
func (s Spec) Validate() error {
	if s.From == "" {
		return fmt.Errorf("task %q: from is required", s.Name)
	}
	if s.Script == "" {
		return fmt.Errorf("task %q: script is required", s.Name)
	}
	if s.Concurrent != 0 && s.Concurrent < 2 {
		return fmt.Errorf("task %q: concurrent must be >= 2, got %d", s.Name, s.Concurrent)
	}
	return nil
}

// RenderFrom expands ${var} references in the source location against the
// spec's vars. Unknown variables expand to the empty string.
func (s Spec) RenderFrom() string {
	return os.Expand(s.From, func(key string) string { return s.Vars[key] })
}
