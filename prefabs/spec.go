package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScriptMode says when a scene script runs.
type ScriptMode string

const (
	// ScriptOnce runs after the scene entities are created.
	ScriptOnce ScriptMode = "once"
	// ScriptTick runs on every scheduler tick.
	ScriptTick ScriptMode = "tick"
)

// Scene describes entities to create and scripts to run against them.
type Scene struct {
	LogLevel string       `yaml:"log_level"`
	Ticks    int          `yaml:"ticks"`
	Scripts  []ScriptSpec `yaml:"scripts"`
	Entities []EntitySpec `yaml:"entities"`
}

type ScriptSpec struct {
	Path string     `yaml:"path"`
	Mode ScriptMode `yaml:"mode"`
}

// EntitySpec lists the native and dynamic components of one entity. Native
// components are decoded through a Catalog; dynamic values are handed to the
// scripting proxy as-is.
type EntitySpec struct {
	Name    string         `yaml:"name"`
	Native  map[string]any `yaml:"native"`
	Dynamic map[string]any `yaml:"dynamic"`
}

var ErrInvalidScene = errors.New("prefabs: invalid scene")

// LoadScene loads and validates a scene by name.
func LoadScene(filename string) (*Scene, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return scene, nil
}

// ParseScene decodes and validates scene YAML.
func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// Validate fills defaults and checks the scene for obvious mistakes.
func (s *Scene) Validate() error {
	if s.Ticks < 0 {
		return fmt.Errorf("%w: ticks=%d", ErrInvalidScene, s.Ticks)
	}
	for i := range s.Scripts {
		sc := &s.Scripts[i]
		if strings.TrimSpace(sc.Path) == "" {
			return fmt.Errorf("%w: script %d has no path", ErrInvalidScene, i)
		}
		switch sc.Mode {
		case "":
			sc.Mode = ScriptOnce
		case ScriptOnce, ScriptTick:
		default:
			return fmt.Errorf("%w: script %s has mode %q", ErrInvalidScene, sc.Path, sc.Mode)
		}
	}
	seen := make(map[string]struct{}, len(s.Entities))
	for i, e := range s.Entities {
		if e.Name == "" {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("%w: entity %d reuses name %q", ErrInvalidScene, i, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// DecodeComponentSpec re-decodes a loosely typed YAML value into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
