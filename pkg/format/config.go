package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/detype/pkg/glob"
)

// ErrConfig reports an unreadable formatter configuration file.
var ErrConfig = errors.New("invalid formatter config")

// configFiles are searched in each directory, in order.
var configFiles = []string{
	"package.json",
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
	".prettierrc.toml",
}

// ResolveConfig finds the formatter configuration nearest to filename,
// searching its directory and then each parent, and returns the options
// that apply to the file with matching overrides merged in. It returns nil
// options and an empty path when no configuration exists.
func ResolveConfig(filename string) (Options, string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", filename, err)
	}

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		for _, name := range configFiles {
			path := filepath.Join(dir, name)
			raw, found, err := loadConfig(path)
			if err != nil {
				return nil, "", err
			}
			if found {
				return applyOverrides(raw, dir, abs), path, nil
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			return nil, "", nil
		}
	}
}

// loadConfig reads one candidate file. package.json only counts when it
// carries a "prettier" object.
func loadConfig(path string) (map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	raw := map[string]any{}
	switch filepath.Base(path) {
	case "package.json":
		var pkg struct {
			Prettier json.RawMessage `json:"prettier"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, false, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
		if len(pkg.Prettier) == 0 || pkg.Prettier[0] != '{' {
			return nil, false, nil
		}
		err = json.Unmarshal(pkg.Prettier, &raw)
	case ".prettierrc.json":
		err = json.Unmarshal(data, &raw)
	case ".prettierrc.toml":
		_, err = toml.Decode(string(data), &raw)
	default:
		// YAML is a superset of JSON, which covers the extensionless file.
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}
	return raw, true, nil
}

// applyOverrides returns the top-level options of raw with every matching
// override's options merged on top, in file order.
func applyOverrides(raw map[string]any, dir, filename string) Options {
	opts := Options{}
	for k, v := range raw {
		if k != "overrides" {
			opts[k] = v
		}
	}

	rel, err := filepath.Rel(dir, filename)
	if err != nil {
		rel = filepath.Base(filename)
	}

	for _, entry := range tables(raw["overrides"]) {
		if !glob.Any(rel, stringList(entry["files"])) || glob.Any(rel, stringList(entry["excludeFiles"])) {
			continue
		}
		extra, _ := entry["options"].(map[string]any)
		for k, v := range extra {
			opts[k] = v
		}
	}
	return opts
}

// tables normalizes a list of objects as decoded from JSON, YAML or TOML.
func tables(v any) []map[string]any {
	switch v := v.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}
