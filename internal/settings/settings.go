// Package settings resolves, parses, validates, and defaults murmur settings.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the fully materialized runtime configuration used by murmur.
type Settings struct {
	// SelectedModel is the catalog ID loaded by InitiateLoad and the CLI.
	SelectedModel string `yaml:"selected_model" env:"SELECTED_MODEL"`
	// ModelsDir is the catalog root holding models.yaml and artifacts.
	ModelsDir string `yaml:"models_dir" env:"MODELS_DIR"`
	// Unload controls when the resident engine is evicted.
	Unload UnloadPolicy `yaml:"unload" env:"UNLOAD"`
	// CustomWords are vocabulary corrections applied to recognized text.
	CustomWords []string `yaml:"custom_words" env:"CUSTOM_WORDS" envSeparator:","`
	// WordThreshold is the minimum similarity for a custom-word replacement.
	WordThreshold float64 `yaml:"word_threshold" env:"WORD_THRESHOLD"`
}

// Provider supplies current settings to long-lived components. Implementations
// must be safe for concurrent use; the idle watcher reads on every poll.
type Provider interface {
	Settings() Settings
}

// Static is a fixed-value Provider for tests and one-shot CLI runs.
type Static struct {
	Value Settings
}

func (s Static) Settings() Settings {
	return s.Value
}

// PolicyKind enumerates engine eviction strategies.
type PolicyKind string

const (
	// PolicyNever keeps a loaded engine resident until explicit unload.
	PolicyNever PolicyKind = "never"
	// PolicyImmediately evicts the engine right after each finalize.
	PolicyImmediately PolicyKind = "immediately"
	// PolicyAfter evicts the engine once idle for AfterSeconds.
	PolicyAfter PolicyKind = "after"
)

// UnloadPolicy is the eviction policy plus its idle window when kind=after.
// Its textual form is "never", "immediately", or a positive integer second
// count, in both YAML and environment overrides.
type UnloadPolicy struct {
	Kind         PolicyKind
	AfterSeconds int
}

// Timeout returns the idle window and whether timed eviction applies.
func (p UnloadPolicy) Timeout() (time.Duration, bool) {
	if p.Kind != PolicyAfter {
		return 0, false
	}
	return time.Duration(p.AfterSeconds) * time.Second, true
}

func (p UnloadPolicy) String() string {
	if p.Kind == PolicyAfter {
		return strconv.Itoa(p.AfterSeconds)
	}
	return string(p.Kind)
}

// UnmarshalText implements encoding.TextUnmarshaler for env overrides.
func (p *UnloadPolicy) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	switch value {
	case "", string(PolicyNever):
		*p = UnloadPolicy{Kind: PolicyNever}
		return nil
	case string(PolicyImmediately):
		*p = UnloadPolicy{Kind: PolicyImmediately}
		return nil
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return fmt.Errorf("unload must be %q, %q, or a positive second count, got %q",
			PolicyNever, PolicyImmediately, value)
	}
	*p = UnloadPolicy{Kind: PolicyAfter, AfterSeconds: seconds}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p UnloadPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalYAML accepts the same scalar forms as UnmarshalText.
func (p *UnloadPolicy) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(raw))
}

// MarshalYAML renders the scalar form.
func (p UnloadPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
