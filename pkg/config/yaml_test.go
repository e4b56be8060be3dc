package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies pointers, slices and maps", func(t *testing.T) {
		t.Parallel()
		original := &config.Config{
			Formatter:        config.FormatterPrettier,
			RemoveTSComments: config.Bool(true),
			Ignore:           []string{"**/*.test.ts"},
			FormatterOptions: map[string]any{"semi": false},
			Cache:            config.CacheConfig{Enabled: config.Bool(true), Dir: "/tmp/c"},
			DryRun:           true,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.Equal(t, original, clone)

		*clone.RemoveTSComments = false
		*clone.Cache.Enabled = false
		clone.Ignore[0] = "changed"
		clone.FormatterOptions["semi"] = true

		assert.True(t, *original.RemoveTSComments)
		assert.True(t, *original.Cache.Enabled)
		assert.Equal(t, "**/*.test.ts", original.Ignore[0])
		assert.Equal(t, false, original.FormatterOptions["semi"])
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("cli fields are not persisted", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			Formatter: config.FormatterNone,
			Markdown:  config.Bool(false),
			DryRun:    true,
		}

		data, err := cfg.ToYAMLWithHeader(config.DefaultTemplateHeader())
		require.NoError(t, err)
		assert.Contains(t, string(data), "# detype configuration")
		assert.Contains(t, string(data), "formatter: none")
		assert.Contains(t, string(data), "markdown: false")
		assert.NotContains(t, string(data), "dry")
	})
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte(`
formatter: prettier
remove_ts_comments: true
formatter_options:
  semi: false
  tabWidth: 4
ignore:
  - "gen/**"
cache:
  enabled: true
`))
	require.NoError(t, err)
	assert.Equal(t, config.FormatterPrettier, cfg.Formatter)
	assert.True(t, config.Enabled(cfg.RemoveTSComments))
	assert.Nil(t, cfg.Markdown)
	assert.Equal(t, map[string]any{"semi": false, "tabWidth": 4}, cfg.FormatterOptions)
	assert.Equal(t, []string{"gen/**"}, cfg.Ignore)
	assert.True(t, config.Enabled(cfg.Cache.Enabled))

	_, err = config.FromYAML([]byte("formatter: [\n"))
	require.Error(t, err)
}

func TestFromYAMLAcceptsJSON(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte(`{"formatter": "none", "jobs": 2}`))
	require.NoError(t, err)
	assert.Equal(t, config.FormatterNone, cfg.Formatter)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts config.TemplateOptions
	}{
		{name: "minimal yaml"},
		{name: "full yaml", opts: config.TemplateOptions{Full: true}},
		{name: "minimal json", opts: config.TemplateOptions{Format: "json"}},
		{name: "full json", opts: config.TemplateOptions{Full: true, Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := config.GenerateTemplate(tt.opts)
			require.NoError(t, err)

			// Every template must load back.
			cfg, err := config.FromYAML(data)
			require.NoError(t, err)
			assert.Equal(t, config.FormatterBasic, cfg.Formatter)

			if tt.opts.Format == "json" {
				assert.True(t, json.Valid(data))
			}
			if tt.opts.Full {
				assert.Equal(t, config.ColorAuto, cfg.Color)
				assert.NotNil(t, cfg.Cache.Enabled)
			}
		})
	}
}

func TestColorModeIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, config.ColorAuto.IsValid())
	assert.True(t, config.ColorNever.IsValid())
	assert.False(t, config.ColorMode("sometimes").IsValid())
}
