package config

import (
	"errors"
	"io/fs"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Runtime holds host-level knobs that are not part of any single task.
type Runtime struct {
	Log         LogCfg `koanf:"log"`
	MetricsPort int    `koanf:"metrics_port"` // 0 = metrics endpoint disabled
	WorkDir     string `koanf:"work_dir"`     // temp output root ("" = os default)
	Buffer      int    `koanf:"buffer"`       // inter-stage queue capacity
	MaxInFlight int    `koanf:"max_in_flight"`
}

// LoadRuntime merges YAML (if present) with env vars
// (prefix `ROWMILL__`, delimiter `__`).
func LoadRuntime(path string) (Runtime, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Runtime{}, err
		}
	}
	_ = k.Load(env.Provider("ROWMILL__", "__", nil), nil)

	var cfg Runtime
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Runtime) {
	if c.Buffer == 0 {
		c.Buffer = 64
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = 4 * c.Buffer
	}
}
