// Package config holds the engine's tunables with their documented
// defaults. Values load from an optional yaml file; the CLI layers env and
// flag overrides on top through viper.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml configs can say "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the full tuning surface of a correlation run. The zero value is
// not usable; start from Default().
type Config struct {
	// AcceptThreshold is the minimum fused confidence for a relationship to
	// survive into the graph.
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// Detector base strengths.
	IssueKeyStrength   float64 `yaml:"issue_key_strength"`
	BranchNameStrength float64 `yaml:"branch_name_strength"`
	// ContentCeiling caps content-similarity strength: a perfect textual
	// match is still weaker than any explicit reference.
	ContentCeiling float64 `yaml:"content_ceiling"`
	// SimilarityFloor is the similarity below which the content detector
	// stays silent.
	SimilarityFloor float64 `yaml:"similarity_floor"`

	// Scoring bonuses and guards.
	MaxTemporalBonus       float64 `yaml:"max_temporal_bonus"`
	TemporalWindowDays     int     `yaml:"temporal_window_days"`
	AuthorBonus            float64 `yaml:"author_bonus"`
	PlausibilityWindowDays int     `yaml:"plausibility_window_days"`

	// Complexity score weights, one per dimension. Non-negative; the score's
	// upper bound is their sum.
	ComplexityVolumeWeight    float64 `yaml:"complexity_volume_weight"`
	ComplexityCommitsWeight   float64 `yaml:"complexity_commits_weight"`
	ComplexityDiversityWeight float64 `yaml:"complexity_diversity_weight"`
	ComplexityDurationWeight  float64 `yaml:"complexity_duration_weight"`

	// Parallelism bounds the pair-scoring workers. Zero means NumCPU.
	Parallelism int `yaml:"parallelism"`
	// RunTimeout bounds a whole run. Zero disables the timeout.
	RunTimeout Duration `yaml:"run_timeout"`

	// Annotate enables the post-hoc LLM rationale annotator. Requires an
	// API key in the environment.
	Annotate      bool   `yaml:"annotate"`
	AnnotateModel string `yaml:"annotate_model"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		AcceptThreshold:           0.5,
		IssueKeyStrength:          0.9,
		BranchNameStrength:        0.7,
		ContentCeiling:            0.4,
		SimilarityFloor:           0.3,
		MaxTemporalBonus:          0.1,
		TemporalWindowDays:        7,
		AuthorBonus:               0.1,
		PlausibilityWindowDays:    180,
		ComplexityVolumeWeight:    0.3,
		ComplexityCommitsWeight:   0.3,
		ComplexityDiversityWeight: 0.2,
		ComplexityDurationWeight:  0.2,
		Parallelism:               runtime.NumCPU(),
		AnnotateModel:             "claude-3-5-haiku-latest",
	}
}

// Load reads a yaml config file and applies it over the defaults. A missing
// path returns pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	unit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
		return nil
	}
	for name, v := range map[string]float64{
		"accept_threshold":     c.AcceptThreshold,
		"issue_key_strength":   c.IssueKeyStrength,
		"branch_name_strength": c.BranchNameStrength,
		"content_ceiling":      c.ContentCeiling,
		"similarity_floor":     c.SimilarityFloor,
		"max_temporal_bonus":   c.MaxTemporalBonus,
		"author_bonus":         c.AuthorBonus,
	} {
		if err := unit(name, v); err != nil {
			return err
		}
	}
	for name, v := range map[string]float64{
		"complexity_volume_weight":    c.ComplexityVolumeWeight,
		"complexity_commits_weight":   c.ComplexityCommitsWeight,
		"complexity_diversity_weight": c.ComplexityDiversityWeight,
		"complexity_duration_weight":  c.ComplexityDurationWeight,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", name, v)
		}
	}
	if c.TemporalWindowDays < 0 {
		return fmt.Errorf("temporal_window_days must be >= 0, got %d", c.TemporalWindowDays)
	}
	if c.PlausibilityWindowDays < 0 {
		return fmt.Errorf("plausibility_window_days must be >= 0, got %d", c.PlausibilityWindowDays)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("run_timeout must be >= 0, got %v", time.Duration(c.RunTimeout))
	}
	if c.Annotate && c.AnnotateModel == "" {
		return fmt.Errorf("annotate_model is required when annotate is enabled")
	}
	return nil
}

// EffectiveParallelism resolves the zero default.
func (c *Config) EffectiveParallelism() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}
