// Package brain supplies fixed personality trait scalars that bias decisions.
// Traits are orthogonal to life state: they never change at runtime.
package brain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Traits are named bias scalars, each 0..1. The zero value is a usable
// neutral-ish personality only through DefaultTraits; a missing provider
// entry means "no bias", and prompt sections are simply omitted.
type Traits struct {
	Warmth              float64 `yaml:"warmth"`
	Curiosity           float64 `yaml:"curiosity"`
	Chaos               float64 `yaml:"chaos"`
	ControversyAversion float64 `yaml:"controversy_aversion"`
	Confidence          float64 `yaml:"confidence"`
	Assertiveness       float64 `yaml:"assertiveness"`
}

func DefaultTraits() Traits {
	return Traits{
		Warmth:              0.5,
		Curiosity:           0.5,
		Chaos:               0.2,
		ControversyAversion: 0.7,
		Confidence:          0.5,
		Assertiveness:       0.4,
	}
}

// Provider resolves traits for a bot handle. ok=false means no persona file
// exists; callers degrade gracefully.
type Provider interface {
	TraitsFor(handle string) (Traits, bool)
}

// FileProvider reads one YAML file per handle from a directory
// (<dir>/<handle>.yaml). Files are read lazily on each lookup; personas are
// edited by hand and should not require a restart.
type FileProvider struct {
	Dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: strings.TrimSpace(dir)}
}

func (p *FileProvider) TraitsFor(handle string) (Traits, bool) {
	if p == nil || p.Dir == "" {
		return Traits{}, false
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return Traits{}, false
	}
	data, err := os.ReadFile(filepath.Join(p.Dir, handle+".yaml"))
	if err != nil {
		return Traits{}, false
	}
	var t Traits
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Traits{}, false
	}
	return t.clamped(), true
}

// WritePersona writes a starter persona file, refusing to overwrite one that
// already exists.
func WritePersona(dir, handle string, t Traits) error {
	path := filepath.Join(dir, strings.TrimSpace(handle)+".yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("persona already exists: %s", path)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(t.clamped())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (t Traits) clamped() Traits {
	return Traits{
		Warmth:              clamp01(t.Warmth),
		Curiosity:           clamp01(t.Curiosity),
		Chaos:               clamp01(t.Chaos),
		ControversyAversion: clamp01(t.ControversyAversion),
		Confidence:          clamp01(t.Confidence),
		Assertiveness:       clamp01(t.Assertiveness),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
