// Package config loads the YAML runtime configuration and validates it
// against an embedded CUE schema, so a malformed file fails at startup
// with a precise message rather than surfacing as odd behavior later.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config is the full runtime configuration.
type Config struct {
	Data   Data   `json:"data" yaml:"data"`
	Poll   Poll   `json:"poll" yaml:"poll"`
	Judges Judges `json:"judges" yaml:"judges"`
	Log    Log    `json:"log" yaml:"log"`
}

// Data locates the durable state files.
type Data struct {
	// DocumentPath is the JSON document store file.
	DocumentPath string `json:"documentPath" yaml:"documentPath"`
	// CatalogPath is the sqlite problem catalog cache.
	CatalogPath string `json:"catalogPath" yaml:"catalogPath"`
}

// Poll tunes the orchestrator.
type Poll struct {
	OverlapSeconds       int `json:"overlapSeconds" yaml:"overlapSeconds"`
	SweepIntervalSeconds int `json:"sweepIntervalSeconds" yaml:"sweepIntervalSeconds"`
}

// Judge holds one integration's throttle spacing.
type Judge struct {
	IntervalMs int `json:"intervalMs" yaml:"intervalMs"`
}

// Judges configures the two integrations. When FixtureDir is set, both
// clients read canned responses from that directory instead of the
// network.
type Judges struct {
	Codeforces Judge  `json:"codeforces" yaml:"codeforces"`
	AtCoder    Judge  `json:"atcoder" yaml:"atcoder"`
	FixtureDir string `json:"fixtureDir,omitempty" yaml:"fixtureDir,omitempty"`
}

// Log configures logging.
type Log struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: Data{
			DocumentPath: "gauntlet.json",
			CatalogPath:  "catalog.db",
		},
		Poll: Poll{
			OverlapSeconds:       120,
			SweepIntervalSeconds: 30,
		},
		Judges: Judges{
			Codeforces: Judge{IntervalMs: 2100},
			AtCoder:    Judge{IntervalMs: 1100},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("looking up config schema: %w", err)
	}

	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	unified := def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// OverlapDuration returns the poll overlap as a duration.
func (c Config) OverlapDuration() time.Duration {
	return time.Duration(c.Poll.OverlapSeconds) * time.Second
}

// SweepInterval returns the sweep spacing as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Poll.SweepIntervalSeconds) * time.Second
}

// CFInterval returns the Codeforces throttle spacing.
func (c Config) CFInterval() time.Duration {
	return time.Duration(c.Judges.Codeforces.IntervalMs) * time.Millisecond
}

// ATInterval returns the AtCoder throttle spacing.
func (c Config) ATInterval() time.Duration {
	return time.Duration(c.Judges.AtCoder.IntervalMs) * time.Millisecond
}
