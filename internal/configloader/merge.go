package configloader

import (
	"maps"

	"github.com/yaklabco/detype/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans: override overwrites base if set, so false can win
//   - Maps: deep merge, with override's values taking precedence
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Formatter != "" {
		result.Formatter = override.Formatter
	}
	if override.PrettierPath != "" {
		result.PrettierPath = override.PrettierPath
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Cache.Dir != "" {
		result.Cache.Dir = override.Cache.Dir
	}

	result.RemoveTSComments = mergeBool(base.RemoveTSComments, override.RemoveTSComments)
	result.Markdown = mergeBool(base.Markdown, override.Markdown)
	result.FollowSymlinks = mergeBool(base.FollowSymlinks, override.FollowSymlinks)
	result.Cache.Enabled = mergeBool(base.Cache.Enabled, override.Cache.Enabled)

	// CLI-only switches can only be turned on.
	result.DryRun = base.DryRun || override.DryRun
	result.Diff = base.Diff || override.Diff
	result.Magic = base.Magic || override.Magic

	result.FormatterOptions = mergeOptions(base.FormatterOptions, override.FormatterOptions)

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

func mergeBool(base, override *bool) *bool {
	if override != nil {
		return override
	}
	return base
}

// mergeOptions merges formatter options key by key into a new map.
func mergeOptions(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	result := make(map[string]any, len(base)+len(override))
	maps.Copy(result, base)
	maps.Copy(result, override)
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
