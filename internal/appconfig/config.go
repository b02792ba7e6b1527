package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/delaneyj/minivue/internal/logging"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnknownOp         = errors.New("unknown method op")
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config describes an app for the CLI: where to mount, which template and
// data to use, and declarative methods for event directives. Markup is an
// inline template used when Template is empty.
type Config struct {
	El       string                `mapstructure:"el"`
	Template string                `mapstructure:"template"`
	Markup   string                `mapstructure:"markup"`
	DataFile string                `mapstructure:"data_file"`
	Data     map[string]any        `mapstructure:"data"`
	Methods  map[string]MethodSpec `mapstructure:"methods"`
	Logging  logging.Config        `mapstructure:"logging"`
}

func (c *Config) SetDefaults() {
	if c.El == "" {
		c.El = "#app"
	}
}

// Load reads an app config from a yaml, toml or json file. Paths inside
// it are resolved relative to the file. ${VAR} and ${VAR:-default} are
// expanded before parsing.
func Load(path string) (*Config, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	for name, spec := range cfg.Methods {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("method %q: %w", name, err)
		}
	}

	dir := filepath.Dir(path)
	cfg.Template = resolve(dir, cfg.Template)
	cfg.DataFile = resolve(dir, cfg.DataFile)
	cfg.SetDefaults()
	return &cfg, nil
}

// LoadData reads a data tree from a yaml, toml or json file.
func LoadData(path string) (map[string]any, error) {
	return readFile(path)
}

// Decode parses a data tree of the given format: "yaml", "toml" or "json".
func Decode(format string, content []byte) (map[string]any, error) {
	expanded := []byte(expandEnvVars(string(content)))

	var out map[string]any
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(expanded, &out); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(expanded, &out); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(expanded, &out); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if out == nil {
		out = map[string]any{}
	}
	return normalizeMap(out), nil
}

func readFile(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	out, err := Decode(format, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// normalizeMap turns the decoder-specific container types into the
// map[string]any / []any shapes the reactive store wraps.
func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalize(v)
	}
	return m
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return normalizeMap(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, el := range x {
			out[fmt.Sprint(k)] = normalize(el)
		}
		return out
	case []any:
		for i, el := range x {
			x[i] = normalize(el)
		}
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalizeMap(el)
		}
		return out
	default:
		return v
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
