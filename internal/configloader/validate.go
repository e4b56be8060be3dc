package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/detype/pkg/config"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/glob"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "cache.dir").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Formatter != "" && !format.IsKnown(cfg.Formatter) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "formatter",
			Value:   cfg.Formatter,
			Message: fmt.Sprintf("invalid formatter %q; must be one of: %s", cfg.Formatter, strings.Join(format.Names(), ", ")),
		})
	}

	if cfg.PrettierPath != "" && cfg.Formatter != config.FormatterPrettier {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "prettier_path",
			Value:   cfg.PrettierPath,
			Message: fmt.Sprintf("prettier_path is unused with formatter %q", cfg.Formatter),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: "jobs must be >= 0 (0 means auto)",
		})
	}

	if cfg.Color != "" && !cfg.Color.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "color",
			Value:   cfg.Color,
			Message: fmt.Sprintf("invalid color mode %q; must be one of: auto, always, never", cfg.Color),
		})
	}

	for key := range cfg.FormatterOptions {
		if strings.TrimSpace(key) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "formatter_options",
				Value:   key,
				Message: "option names must not be empty",
			})
		}
	}

	validateIgnorePatterns(cfg, result)

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if !glob.Valid(pattern) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("ignore[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern %q", pattern),
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
