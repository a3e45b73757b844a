package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	opts "github.com/goliatone/go-options"
	"gopkg.in/yaml.v3"
)

const layerPathSeparator = "/"

// LoadConfigYAML parses a YAML document whose top-level keys are sections.
func LoadConfigYAML(r io.Reader) (Config, error) {
	if r == nil {
		return Config{}, nil
	}
	raw := map[string]any{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		if err == io.EOF {
			return Config{}, nil
		}
		return nil, fmt.Errorf("core: decode config yaml: %w", err)
	}
	return configFromMap(raw)
}

func LoadConfigFile(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("core: config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: read config %s: %w", path, err)
	}
	return LoadConfigYAML(bytes.NewReader(data))
}

// ResolveConfig layers defaults < loaded < runtime, key by key within each
// section.
func ResolveConfig(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return nil, fmt.Errorf("core: options merge failed: %w", err)
	}
	return configFromLayerMap(merged.Value), nil
}

// configToLayerMap flattens sections into "Section/key" entries so layers
// override single keys. Empty sections keep a bare section entry.
func configToLayerMap(cfg Config) map[string]any {
	layer := map[string]any{}
	for name, section := range cfg {
		if len(section) == 0 {
			layer[name] = map[string]any{}
			continue
		}
		for key, value := range section {
			layer[name+layerPathSeparator+key] = value
		}
	}
	return layer
}

func configFromLayerMap(layer map[string]any) Config {
	cfg := Config{}
	for path, value := range layer {
		name, key, ok := strings.Cut(path, layerPathSeparator)
		if cfg[name] == nil {
			cfg[name] = map[string]any{}
		}
		if ok {
			cfg[name][key] = value
		}
	}
	return cfg
}

func configFromMap(raw map[string]any) (Config, error) {
	cfg := make(Config, len(raw))
	for name, value := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch typed := value.(type) {
		case nil:
			cfg[name] = map[string]any{}
		case map[string]any:
			section := make(map[string]any, len(typed))
			for key, item := range typed {
				section[key] = item
			}
			cfg[name] = section
		case map[any]any:
			section := make(map[string]any, len(typed))
			for key, item := range typed {
				section[fmt.Sprint(key)] = item
			}
			cfg[name] = section
		default:
			return nil, fmt.Errorf("core: config section %q must be a mapping, got %T", name, value)
		}
	}
	return cfg, nil
}
