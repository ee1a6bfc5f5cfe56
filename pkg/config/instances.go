package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// InstanceDef declares an application-specific cache instance in a YAML file:
//
//	instances:
//	  - name: sessions
//	    ttl: 15m
//	    max_size: 1048576
//	    persist: true
//	  - name: search
//	    ttl: 30s
//	    enabled: false
type InstanceDef struct {
	Name    string        `yaml:"name"`
	TTL     time.Duration `yaml:"ttl"`
	MaxSize int64         `yaml:"max_size"`
	Enabled *bool         `yaml:"enabled"`
	Persist bool          `yaml:"persist"`
}

// CacheConfig converts the definition. Instances are enabled unless stated otherwise.
func (d InstanceDef) CacheConfig() cache.Config {
	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}
	return cache.Config{
		TTL:     d.TTL,
		MaxSize: d.MaxSize,
		Enabled: enabled,
		Persist: d.Persist,
	}
}

type instancesFile struct {
	Instances []InstanceDef `yaml:"instances"`
}

// LoadInstances reads instance definitions from a YAML file.
func LoadInstances(path string) ([]InstanceDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidInstances, err)
	}
	return ParseInstances(raw)
}

// ParseInstances decodes instance definitions and rejects unnamed,
// duplicated and invalid entries.
func ParseInstances(raw []byte) ([]InstanceDef, error) {
	var file instancesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidInstances, err)
	}

	seen := make(map[string]struct{}, len(file.Instances))
	for i, def := range file.Instances {
		if def.Name == "" {
			return nil, fmt.Errorf("%w: instance #%d has no name", ErrInvalidInstances, i)
		}
		if _, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate instance %q", ErrInvalidInstances, def.Name)
		}
		seen[def.Name] = struct{}{}
		if err := def.CacheConfig().Validate(); err != nil {
			return nil, fmt.Errorf("%w: instance %q: %w", ErrInvalidInstances, def.Name, err)
		}
	}
	return file.Instances, nil
}
