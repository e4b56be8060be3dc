// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Pipeline fields.
	FieldKind        = "kind"
	FieldPlugins     = "plugins"
	FieldRegions     = "regions"
	FieldExpressions = "expressions"
	FieldEdits       = "edits"
	FieldFormatter   = "formatter"
	FieldCacheHit    = "cache_hit"
	FieldChanged     = "changed"
	FieldProps       = "props"
	FieldEmits       = "emits"

	// Configuration fields.
	FieldRemoveTSComments = "remove_ts_comments"
	FieldJobs             = "jobs"
	FieldConfig           = "config"

	// Statistics fields.
	FieldFilesDiscovered  = "files_discovered"
	FieldFilesTransformed = "files_transformed"
	FieldFilesFailed      = "files_failed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
