package detype

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/sfc"
	"github.com/yaklabco/detype/pkg/splice"
	"github.com/yaklabco/detype/pkg/typestrip"
	"github.com/yaklabco/detype/pkg/vuecompile"
)

// ErrExpressionBatch reports a transformed expression batch that no longer
// splits into one piece per template expression.
var ErrExpressionBatch = errors.New("template expression batch mismatch")

const (
	expressionDelimiter = `['---detypes-delimiter---'];`
	removeAfterMarker   = `/* @detype: remove-after-this */`
)

var (
	// Textual, so it also fires inside string literals that happen to spell
	// the attribute.
	langTS  = regexp.MustCompile(`\s*\blang\s*=\s*["']ts["']`)
	langTSX = regexp.MustCompile(`\blang\s*=\s*(["'])tsx["']`)
)

// DefaultsUnwrapper returns the plugin that rewrites
// withDefaults(defineProps<T>(), {...}) to defineProps<T>(). The defaults
// live in the compiled props object instead.
func DefaultsUnwrapper() typestrip.Plugin {
	return typestrip.Plugin{
		Name: "detype-with-defaults",
		Visitor: map[string]typestrip.VisitFunc{
			"call_expression": func(p *typestrip.Path) {
				if !isCall(p.Node, "withDefaults") {
					return
				}
				args := p.Node.ChildByField("arguments")
				if args == nil {
					return
				}
				for _, arg := range args.NamedChildren() {
					if arg.Kind() == "comment" {
						continue
					}
					if isCall(arg, "defineProps") {
						p.ReplaceWith(arg)
					}
					return
				}
			},
		},
	}
}

func isCall(n typestrip.Node, name string) bool {
	if n == nil || n.Kind() != "call_expression" {
		return false
	}
	fn := n.ChildByField("function")
	return fn != nil && fn.Text() == name
}

// transformComponentFile strips the typed script blocks of a component file
// and the expressions of its template, leaving every other byte in place.
func (t *Transformer) transformComponentFile(ctx context.Context, text, fileID string, opts TransformOptions) (string, error) {
	logger := logging.FromContext(ctx)

	desc, err := sfc.Parse(text, fileID)
	if err != nil {
		return "", fmt.Errorf("parse component file: %w", err)
	}
	if !desc.HasTypedScript() {
		logger.Debug("no typed script, leaving component as is", logging.FieldPath, fileID)
		return text, nil
	}

	var props, emits string
	if needsCompile(desc) {
		props, emits, err = t.compileMacros(ctx, desc, fileID)
		if err != nil {
			return "", err
		}
	}

	edits := splice.NewBuilder(text)
	engine := t.engine()

	exprs := sfc.CollectExpressions(desc)
	var batch string
	if len(exprs) > 0 {
		batch, err = t.transformExpressions(ctx, exprs, fileID, opts, edits)
		if err != nil {
			return "", err
		}
	}

	for _, block := range desc.Scripts() {
		if block.IsTyped() {
			code, err := t.transformScript(ctx, engine, block, batch, fileID, opts)
			if err != nil {
				return "", err
			}
			edits.Replace(block.Loc.Start, block.Loc.End, code)
		}
		if attr, ok := block.Attr("generic"); ok {
			start := attr.Loc.Start
			for start > block.TagLoc.Start && isSpace(text[start-1]) {
				start--
			}
			edits.Delete(start, attr.Loc.End)
		}
	}

	logger.Debug("splicing component",
		logging.FieldPath, fileID,
		logging.FieldRegions, len(desc.Scripts()),
		logging.FieldExpressions, len(exprs),
		logging.FieldEdits, edits.Len())

	result, err := edits.String()
	if err != nil {
		return "", fmt.Errorf("splice %s: %w", fileID, err)
	}

	result = langTS.ReplaceAllString(result, "")
	result = langTSX.ReplaceAllString(result, "lang=${1}jsx${1}")

	if props != "" {
		if at := strings.Index(result, "defineProps("); at >= 0 {
			props = strings.ReplaceAll(props, "\n", "\n"+lineIndent(result, at))
			result = result[:at] + "defineProps(" + props + result[at+len("defineProps("):]
		}
	}
	if emits != "" {
		result = strings.Replace(result, "defineEmits(", "defineEmits("+emits, 1)
	}
	return result, nil
}

// lineIndent returns the leading blanks of the line holding offset at.
func lineIndent(text string, at int) string {
	start := strings.LastIndexByte(text[:at], '\n') + 1
	line := text[start:at]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func needsCompile(desc *sfc.Descriptor) bool {
	for _, block := range desc.Scripts() {
		if vuecompile.NeedsCompile(block.Content) {
			return true
		}
	}
	return false
}

// compileMacros returns the runtime props object and emits array for typed
// defineProps and defineEmits calls.
func (t *Transformer) compileMacros(ctx context.Context, desc *sfc.Descriptor, fileID string) (string, string, error) {
	if desc.ScriptSetup == nil {
		return "", "", nil
	}

	fsys, dir := t.sourceDir(fileID)
	res, err := t.compiler().Compile(ctx, desc, vuecompile.Options{FS: fsys, Dir: dir})
	if err != nil {
		return "", "", fmt.Errorf("compile %s: %w", fileID, err)
	}

	props, _ := vuecompile.ExtractProps(res.Content)
	emits, _ := vuecompile.ExtractEmits(res.Content)
	logging.FromContext(ctx).Debug("compiled script setup",
		logging.FieldPath, fileID,
		logging.FieldProps, props != "",
		logging.FieldEmits, emits != "")
	return props, emits, nil
}

// sourceDir returns the file system that resolves the component's imports
// and the component's directory inside it.
func (t *Transformer) sourceDir(fileID string) (fs.FS, string) {
	if t.SourceFS != nil {
		return t.SourceFS, path.Dir(filepath.ToSlash(fileID))
	}

	abs, err := filepath.Abs(fileID)
	if err != nil {
		return nil, ""
	}
	root := filepath.VolumeName(abs) + string(filepath.Separator)
	rel, err := filepath.Rel(root, filepath.Dir(abs))
	if err != nil {
		return nil, ""
	}
	return os.DirFS(root), filepath.ToSlash(rel)
}

// transformExpressions strips all template expressions in one engine run and
// records a replacement for each. It returns the transformed batch.
func (t *Transformer) transformExpressions(ctx context.Context, exprs []sfc.Expression, fileID string, opts TransformOptions, edits *splice.Builder) (string, error) {
	wrapped := make([]string, len(exprs))
	for i, e := range exprs {
		wrapped[i] = "[" + e.Source + "]"
	}
	batch := strings.Join(wrapped, ";"+expressionDelimiter) + ";"

	out, err := t.engine().RemoveTypes(ctx, batch, fileID+".ts", opts.engineOptions())
	if err != nil {
		return "", fmt.Errorf("template expressions: %w", err)
	}

	pieces := strings.Split(out, expressionDelimiter)
	if len(pieces) != len(exprs) {
		return "", fmt.Errorf("%s: %d expressions, %d results: %w", fileID, len(exprs), len(pieces), ErrExpressionBatch)
	}
	for i, e := range exprs {
		piece := strings.TrimSpace(pieces[i])
		piece = strings.TrimSuffix(piece, ";")
		piece = strings.TrimSuffix(strings.TrimPrefix(piece, "["), "]")
		if piece != e.Source {
			edits.Replace(e.Start, e.End, piece)
		}
	}
	return out, nil
}

// transformScript strips one script block. The expression batch is appended
// behind a marker so imports used only by the template count as used, and
// everything from the marker on is dropped again.
func (t *Transformer) transformScript(ctx context.Context, engine *typestrip.Engine, block *sfc.Block, batch, fileID string, opts TransformOptions) (string, error) {
	content := block.Content
	if batch != "" {
		content += ";" + removeAfterMarker + batch
	}

	name := fileID + ".ts"
	if block.Lang == "tsx" {
		name = fileID + ".tsx"
	}
	code, err := engine.RemoveTypes(ctx, content, name, opts.engineOptions(DefaultsUnwrapper()))
	if err != nil {
		return "", fmt.Errorf("script block: %w", err)
	}

	if batch != "" {
		if idx := strings.Index(code, removeAfterMarker); idx >= 0 {
			code = strings.TrimSuffix(code[:idx], ";")
		}
	}
	return code, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
