// Package config defines core configuration types for detype.
// These types are pure data structures; loading lives in internal/configloader.
package config

// Formatter names accepted by the formatter setting.
const (
	FormatterBasic    = "basic"
	FormatterPrettier = "prettier"
	FormatterNone     = "none"
)

// ColorMode controls colored terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is known.
func (c ColorMode) IsValid() bool {
	switch c {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// CacheConfig controls the output cache.
type CacheConfig struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`

	// Dir overrides the cache location. Empty means the user cache directory.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// Config is the root configuration structure for detype.
//
// Booleans are pointers so a later source can set them back to false; use
// Enabled to read them.
type Config struct {
	// Formatter is "basic", "prettier" or "none".
	Formatter string `yaml:"formatter,omitempty" json:"formatter,omitempty"`

	// PrettierPath is the prettier executable. Empty searches PATH.
	PrettierPath string `yaml:"prettier_path,omitempty" json:"prettier_path,omitempty"`

	// FormatterOptions are Prettier option names and values. They apply on
	// top of the Prettier config found next to each input.
	FormatterOptions map[string]any `yaml:"formatter_options,omitempty" json:"formatter_options,omitempty"`

	// RemoveTSComments drops @ts-ignore and @ts-expect-error comments.
	RemoveTSComments *bool `yaml:"remove_ts_comments,omitempty" json:"remove_ts_comments,omitempty"`

	// Jobs is the number of files processed at once. 0 means one per CPU.
	Jobs int `yaml:"jobs,omitempty" json:"jobs,omitempty"`

	// Ignore contains glob patterns for files and directories to skip.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// Markdown transforms typed fenced code blocks in Markdown files.
	Markdown *bool `yaml:"markdown,omitempty" json:"markdown,omitempty"`

	// FollowSymlinks walks symlinked directories.
	FollowSymlinks *bool `yaml:"follow_symlinks,omitempty" json:"follow_symlinks,omitempty"`

	Cache CacheConfig `yaml:"cache,omitempty" json:"cache,omitempty"`

	Color ColorMode `yaml:"color,omitempty" json:"color,omitempty"`

	// CLI-level options (not persisted to config files).

	// DryRun computes outputs without writing them.
	DryRun bool `yaml:"-" json:"-"`

	// Diff prints a diff of every changed file.
	Diff bool `yaml:"-" json:"-"`

	// Magic only resolves directive blocks.
	Magic bool `yaml:"-" json:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Formatter:        FormatterBasic,
		RemoveTSComments: Bool(false),
		Jobs:             0, // 0 means use runtime.NumCPU
		Markdown:         Bool(false),
		FollowSymlinks:   Bool(false),
		Cache:            CacheConfig{Enabled: Bool(false)},
		Color:            ColorAuto,
	}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Enabled reports whether p is set and true.
func Enabled(p *bool) bool {
	return p != nil && *p
}
