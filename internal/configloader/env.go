package configloader

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/config"
)

// envVarPrefix is the prefix for all detype environment variables.
const envVarPrefix = "DETYPE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FORMATTER":          {field: "formatter", typ: envTypeString, help: "Formatter: basic, prettier, or none"},
	"PRETTIER_PATH":      {field: "prettier_path", typ: envTypeString, help: "Path to the prettier executable"},
	"REMOVE_TS_COMMENTS": {field: "remove_ts_comments", typ: envTypeBool, help: "Remove @ts-ignore and @ts-expect-error comments: true or false"},
	"JOBS":               {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"IGNORE":             {field: "ignore", typ: envTypeSlice, help: "Comma-separated list of ignore patterns"},
	"MARKDOWN":           {field: "markdown", typ: envTypeBool, help: "Transform Markdown code blocks: true or false"},
	"FOLLOW_SYMLINKS":    {field: "follow_symlinks", typ: envTypeBool, help: "Walk symlinked directories: true or false"},
	"CACHE":              {field: "cache.enabled", typ: envTypeBool, help: "Enable the output cache: true or false"},
	"CACHE_DIR":          {field: "cache.dir", typ: envTypeString, help: "Cache directory"},
	"COLOR":              {field: "color", typ: envTypeString, help: "Colored output: auto, always, or never"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with DETYPE_ (e.g., DETYPE_FORMATTER).
// NO_COLOR forces color off unless DETYPE_COLOR is set.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = config.ColorNever
	}

	// Sorted so the first reported error does not depend on map order.
	for _, envSuffix := range slices.Sorted(maps.Keys(envMappings)) {
		mapping := envMappings[envSuffix]
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "formatter":
		cfg.Formatter = value
	case "prettier_path":
		cfg.PrettierPath = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "color":
		cfg.Color = config.ColorMode(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "remove_ts_comments":
		cfg.RemoveTSComments = config.Bool(value)
	case "markdown":
		cfg.Markdown = config.Bool(value)
	case "follow_symlinks":
		cfg.FollowSymlinks = config.Bool(value)
	case "cache.enabled":
		cfg.Cache.Enabled = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	vars[logging.EnvLevel] = "log level: debug, info, warn, error"
	vars[logging.EnvFormat] = "log format: text, json, logfmt"
	return vars
}
