package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/detype/internal/configloader"
	"github.com/yaklabco/detype/internal/ui/pretty"
)

// flagGroupAnnotation names the help section a flag is listed under.
const flagGroupAnnotation = "detype_help_group"

// Help sections for the transform flags, in display order. Flags without a
// group are listed under "Flags:".
const (
	groupFormatting = "Formatting"
	groupFiles      = "Files"
	groupRun        = "Run"
	groupOutput     = "Output"
	groupCache      = "Cache"
)

var flagGroupOrder = []string{groupFormatting, groupFiles, groupRun, groupOutput, groupCache}

// setFlagGroup files the named flags under a help section.
func setFlagGroup(flags *pflag.FlagSet, group string, names ...string) {
	for _, name := range names {
		if err := flags.SetAnnotation(name, flagGroupAnnotation, []string{group}); err != nil {
			panic(fmt.Sprintf("help group for unknown flag %q", name))
		}
	}
}

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command lipgloss.Style
	Heading lipgloss.Style
	Flag    lipgloss.Style
	Example lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{Command: plain, Heading: plain, Flag: plain, Example: plain}
	}
	return &HelpStyles{
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Flag:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Example: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders help for the detype commands: usage, examples,
// subcommands, transform flags grouped by concern, global flags and, for the
// root command, the environment variables.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a new help formatter with the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const helpTemplate = `{{ heading "Usage:" }}
  {{ if .Runnable }}{{ command .UseLine }}{{ end }}
  {{- if .HasAvailableSubCommands }}
  {{ command .CommandPath }} [command]{{ end }}
{{- if .HasExample }}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end }}
{{- if .HasAvailableSubCommands }}

{{ heading "Commands:" }}{{ range .Commands }}{{ if .IsAvailableCommand }}
  {{ command (rpad .Name .NamePadding) }} {{ .Short }}{{ end }}{{ end }}
{{- end }}
{{- range flagSections .LocalFlags }}

{{ heading .Title }}
{{ .Body }}
{{- end }}
{{- if .HasAvailableInheritedFlags }}

{{ heading "Global Flags:" }}
{{ flagLines .InheritedFlags }}
{{- end }}
{{- if not .HasParent }}

{{ heading "Environment:" }}{{ range envVars }}
  {{ flag (rpad .Name 26) }} {{ .Help }}{{ end }}
{{- end }}
{{- if .HasAvailableSubCommands }}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end }}
`

// ApplyToCommand installs the help and usage output on cmd. Subcommands
// inherit it.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	tmpl := template.Must(template.New("help").Funcs(template.FuncMap{
		"heading":      h.styles.Heading.Render,
		"command":      h.styles.Command.Render,
		"example":      h.styles.Example.Render,
		"flag":         h.styles.Flag.Render,
		"rpad":         rpad,
		"flagSections": h.flagSections,
		"flagLines":    h.flagLines,
		"envVars":      envVars,
	}).Parse(helpTemplate))

	render := func(c *cobra.Command) error {
		if err := tmpl.Execute(c.OutOrStdout(), c); err != nil {
			return fmt.Errorf("render help: %w", err)
		}
		return nil
	}

	cmd.SetUsageFunc(render)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if text := strings.TrimSpace(firstNonEmpty(c.Long, c.Short)); text != "" {
			fmt.Fprintf(c.OutOrStdout(), "%s\n\n", text)
		}
		if err := render(c); err != nil {
			c.PrintErrln(err)
		}
	})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// flagSection is one titled block of flags in the help output.
type flagSection struct {
	Title string
	Body  string
}

// flagSections splits flags into their help groups. Ungrouped flags come
// first under "Flags:".
func (h *HelpFormatter) flagSections(flags *pflag.FlagSet) []flagSection {
	grouped := make(map[string][]*pflag.Flag)
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		group := ""
		if values := f.Annotations[flagGroupAnnotation]; len(values) > 0 {
			group = values[0]
		}
		grouped[group] = append(grouped[group], f)
	})

	var sections []flagSection
	add := func(title string, list []*pflag.Flag) {
		if len(list) > 0 {
			sections = append(sections, flagSection{Title: title, Body: h.renderFlags(list)})
		}
	}
	add("Flags:", grouped[""])
	for _, group := range flagGroupOrder {
		add(group+" Flags:", grouped[group])
	}
	return sections
}

// flagLines renders every visible flag of a set.
func (h *HelpFormatter) flagLines(flags *pflag.FlagSet) string {
	var list []*pflag.Flag
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			list = append(list, f)
		}
	})
	return h.renderFlags(list)
}

// renderFlags lays out flags as "  -s, --name type   usage (default x)" with
// the usage column aligned.
func (h *HelpFormatter) renderFlags(list []*pflag.Flag) string {
	names := make([]string, len(list))
	usages := make([]string, len(list))
	width := 0
	for i, f := range list {
		varName, usage := pflag.UnquoteUsage(f)
		name := "    --" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", --" + f.Name
		}
		if varName != "" {
			name += " " + varName
		}
		if showDefault(f) {
			usage += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		names[i], usages[i] = name, usage
		width = max(width, len(name))
	}

	lines := make([]string, len(list))
	for i := range list {
		lines[i] = "  " + h.styles.Flag.Render(rpad(names[i], width)) + "   " + usages[i]
	}
	return strings.Join(lines, "\n")
}

// showDefault reports whether a flag's default is worth printing.
func showDefault(f *pflag.Flag) bool {
	switch f.DefValue {
	case "", "false", "0", "[]":
		return false
	}
	return true
}

// envVar is one DETYPE_* variable shown in the root help.
type envVar struct {
	Name string
	Help string
}

// envVars lists the environment variables that override configuration,
// sorted by name.
func envVars() []envVar {
	vars := configloader.ListEnvVars()
	out := make([]envVar, 0, len(vars))
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		out = append(out, envVar{Name: name, Help: vars[name]})
	}
	return out
}

// rpad adds padding to the right of a string.
func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}
