package vuecompile

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/sfc"
)

// Builtin compiles typed props and emits declarations into runtime
// declarations in the shape of the framework compiler's output.
type Builtin struct{}

// NewBuiltin creates the in-process compiler.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

type prop struct {
	name       string
	types      []string
	required   bool
	def        string
	hasDefault bool
}

// macros are the props and emits declarations found in script setup.
type macros struct {
	props    *sitter.Node
	defaults *sitter.Node
	emits    *sitter.Node
}

// Compile implements Compiler.
func (b *Builtin) Compile(ctx context.Context, d *sfc.Descriptor, opts Options) (*Result, error) {
	if d == nil || d.ScriptSetup == nil {
		return nil, fmt.Errorf("no script setup block: %w", ErrCompile)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", d.Filename, err)
	}

	r := newResolver(ctx, opts)
	defer r.close()

	dir := path.Clean(opts.Dir)
	setup, err := r.parse(d.ScriptSetup.Content, scriptName(d.ScriptSetup), dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.Filename, err)
	}
	if d.Script != nil {
		script, err := r.parse(d.Script.Content, scriptName(d.Script), dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCompile, d.Filename, err)
		}
		setup.merge(script)
	}

	found := macros{}
	findMacros(setup, setup.root, &found)

	var props []prop
	if found.props != nil {
		props, err = r.props(found, setup)
		if err != nil {
			return nil, fmt.Errorf("%s: defineProps: %w", d.Filename, err)
		}
	}

	var emits []string
	if found.emits != nil {
		emits, err = r.emits(found.emits, setup)
		if err != nil {
			return nil, fmt.Errorf("%s: defineEmits: %w", d.Filename, err)
		}
	}

	logging.FromContext(ctx).Debug("compiled script setup",
		logging.FieldPath, d.Filename, logging.FieldProps, len(props), logging.FieldEmits, len(emits))

	return &Result{Content: render(componentName(d.Filename), found, props, emits)}, nil
}

func scriptName(b *sfc.Block) string {
	if b.Lang == "tsx" {
		return "script.tsx"
	}
	return "script.ts"
}

func componentName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// findMacros locates the typed defineProps and defineEmits calls and the
// defaults object of a withDefaults wrapper.
func findMacros(sc *scope, n *sitter.Node, found *macros) {
	if n.Type() == "call_expression" {
		fn := field(n, "function")
		switch {
		case fn == nil:
		case sc.text(fn) == "defineProps" && field(n, "type_arguments") != nil:
			found.props = n
		case sc.text(fn) == "defineEmits" && field(n, "type_arguments") != nil:
			found.emits = n
		case sc.text(fn) == "withDefaults":
			if args := field(n, "arguments"); args != nil {
				named := namedChildren(args)
				if len(named) > 1 && named[1].Type() == "object" {
					found.defaults = named[1]
				}
			}
		}
	}
	for _, c := range namedChildren(n) {
		findMacros(sc, c, found)
	}
}

// typeArgument returns the first type argument of a macro call.
func typeArgument(call *sitter.Node) *sitter.Node {
	args := field(call, "type_arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	return args.NamedChild(0)
}

func (r *resolver) props(found macros, sc *scope) ([]prop, error) {
	arg := typeArgument(found.props)
	if arg == nil {
		return nil, fmt.Errorf("missing type argument: %w", ErrCompile)
	}

	members, err := r.members(typeRef{node: arg, scope: sc}, 0)
	if err != nil {
		return nil, err
	}

	var props []prop
	for _, m := range members {
		p, ok := r.prop(m)
		if !ok {
			continue
		}
		if i := slices.IndexFunc(props, func(q prop) bool { return q.name == p.name }); i >= 0 {
			props[i] = p
			continue
		}
		props = append(props, p)
	}

	if found.defaults != nil {
		applyDefaults(props, found.defaults, sc)
	}
	return props, nil
}

func (r *resolver) prop(m typeRef) (prop, bool) {
	sc := m.scope
	name := field(m.node, "name")
	if name == nil {
		return prop{}, false
	}
	p := prop{name: unquote(sc.text(name)), required: childOfKind(m.node, "?") == nil}

	switch m.node.Type() {
	case "property_signature":
		ann := field(m.node, "type")
		if ann == nil || ann.NamedChildCount() == 0 {
			p.types = []string{"null"}
			break
		}
		p.types = r.runtimeTypes(typeRef{node: ann.NamedChild(0), scope: sc}, 0)
	case "method_signature":
		p.types = []string{"Function"}
	default:
		return prop{}, false
	}
	return p, true
}

// members flattens an object-like type into its member nodes.
func (r *resolver) members(t typeRef, depth int) ([]typeRef, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("type reference chain too deep: %w", ErrCompile)
	}
	n, sc := t.node, t.scope

	switch n.Type() {
	case "object_type", "interface_body":
		var out []typeRef
		for _, m := range namedChildren(n) {
			out = append(out, typeRef{node: m, scope: sc})
		}
		return out, nil

	case "interface_declaration":
		var out []typeRef
		if ext := childOfKind(n, "extends_type_clause"); ext != nil {
			for _, base := range namedChildren(ext) {
				inherited, err := r.members(typeRef{node: base, scope: sc}, depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, inherited...)
			}
		}
		if body := field(n, "body"); body != nil {
			own, err := r.members(typeRef{node: body, scope: sc}, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, own...)
		}
		return out, nil

	case "type_alias_declaration":
		value := field(n, "value")
		if value == nil {
			return nil, fmt.Errorf("type alias without a value: %w", ErrCompile)
		}
		return r.members(typeRef{node: value, scope: sc}, depth+1)

	case "intersection_type":
		var out []typeRef
		for _, part := range namedChildren(n) {
			ms, err := r.members(typeRef{node: part, scope: sc}, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, ms...)
		}
		return out, nil

	case "parenthesized_type":
		return r.members(typeRef{node: n.NamedChild(0), scope: sc}, depth+1)

	case "generic_type":
		name := field(n, "name")
		args := field(n, "type_arguments")
		if name != nil && args != nil && args.NamedChildCount() > 0 {
			switch sc.text(name) {
			case "Readonly", "Partial", "Required":
				return r.members(typeRef{node: args.NamedChild(0), scope: sc}, depth+1)
			}
		}
		if name != nil {
			return r.members(typeRef{node: name, scope: sc}, depth+1)
		}

	case "type_identifier":
		ref, ok, err := r.lookup(sc.text(n), sc, depth)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unresolvable type reference %s: %w", sc.text(n), ErrCompile)
		}
		return r.members(ref, depth+1)
	}

	return nil, fmt.Errorf("unsupported type %s: %w", sc.text(n), ErrCompile)
}

var builtinTypes = map[string]string{
	"String": "String", "Number": "Number", "Boolean": "Boolean", "Symbol": "Symbol",
	"Object": "Object", "Function": "Function", "Array": "Array", "ReadonlyArray": "Array",
	"Date": "Date", "RegExp": "RegExp", "Map": "Map", "Set": "Set", "WeakMap": "WeakMap",
	"WeakSet": "WeakSet", "Promise": "Promise", "Error": "Error",
	"Record": "Object", "Partial": "Object", "Required": "Object", "Readonly": "Object",
	"Pick": "Object", "Omit": "Object",
}

var predefinedTypes = map[string]string{
	"string": "String", "number": "Number", "boolean": "Boolean", "object": "Object",
	"symbol": "Symbol", "bigint": "BigInt", "any": "null", "unknown": "null",
}

// runtimeTypes maps a type to the runtime constructors that check it.
// "null" means the type cannot be checked at runtime.
//
//nolint:gocyclo,cyclop // One case per type kind.
func (r *resolver) runtimeTypes(t typeRef, depth int) []string {
	if depth > maxDepth {
		return []string{"null"}
	}
	n, sc := t.node, t.scope

	switch n.Type() {
	case "predefined_type":
		if rt, ok := predefinedTypes[sc.text(n)]; ok {
			return []string{rt}
		}
		return nil
	case "literal_type":
		if n.NamedChildCount() == 0 {
			return nil
		}
		switch n.NamedChild(0).Type() {
		case "string":
			return []string{"String"}
		case "number", "unary_expression":
			return []string{"Number"}
		case "true", "false":
			return []string{"Boolean"}
		}
		return nil
	case "template_literal_type", "template_string":
		return []string{"String"}
	case "union_type":
		var out []string
		for _, part := range namedChildren(n) {
			out = append(out, r.runtimeTypes(typeRef{node: part, scope: sc}, depth+1)...)
		}
		return out
	case "intersection_type", "object_type":
		return []string{"Object"}
	case "array_type", "tuple_type":
		return []string{"Array"}
	case "function_type", "constructor_type":
		return []string{"Function"}
	case "readonly_type", "parenthesized_type":
		if n.NamedChildCount() == 0 {
			return []string{"null"}
		}
		return r.runtimeTypes(typeRef{node: n.NamedChild(int(n.NamedChildCount())-1), scope: sc}, depth+1)
	case "generic_type":
		if name := field(n, "name"); name != nil {
			return r.runtimeTypes(typeRef{node: name, scope: sc}, depth+1)
		}
	case "type_identifier":
		name := sc.text(n)
		if rt, ok := builtinTypes[name]; ok {
			return []string{rt}
		}
		ref, ok, err := r.lookup(name, sc, depth)
		if err != nil || !ok {
			return []string{"null"}
		}
		return r.declTypes(ref, depth+1)
	}
	return []string{"null"}
}

func (r *resolver) declTypes(ref typeRef, depth int) []string {
	n, sc := ref.node, ref.scope
	switch n.Type() {
	case "interface_declaration":
		return []string{"Object"}
	case "type_alias_declaration":
		if value := field(n, "value"); value != nil {
			return r.runtimeTypes(typeRef{node: value, scope: sc}, depth)
		}
	case "enum_declaration":
		return enumTypes(n)
	}
	return []string{"null"}
}

func enumTypes(n *sitter.Node) []string {
	body := field(n, "body")
	if body == nil {
		return []string{"Number"}
	}
	var out []string
	for _, member := range namedChildren(body) {
		value := field(member, "value")
		if member.Type() == "enum_assignment" && value != nil && value.Type() == "string" {
			out = append(out, "String")
		} else {
			out = append(out, "Number")
		}
	}
	return out
}

func (r *resolver) emits(call *sitter.Node, sc *scope) ([]string, error) {
	arg := typeArgument(call)
	if arg == nil {
		return nil, fmt.Errorf("missing type argument: %w", ErrCompile)
	}
	var events []string
	if err := r.collectEvents(typeRef{node: arg, scope: sc}, &events, 0); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *resolver) collectEvents(t typeRef, events *[]string, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("type reference chain too deep: %w", ErrCompile)
	}
	n, sc := t.node, t.scope

	switch n.Type() {
	case "function_type", "call_signature":
		if params := field(n, "parameters"); params != nil {
			r.firstParamEvents(params, sc, events, depth)
		}
	case "object_type", "interface_body":
		for _, m := range namedChildren(n) {
			switch m.Type() {
			case "call_signature":
				if err := r.collectEvents(typeRef{node: m, scope: sc}, events, depth+1); err != nil {
					return err
				}
			case "property_signature":
				if name := field(m, "name"); name != nil {
					*events = appendUnique(*events, unquote(sc.text(name)))
				}
			}
		}
	case "interface_declaration":
		if body := field(n, "body"); body != nil {
			return r.collectEvents(typeRef{node: body, scope: sc}, events, depth+1)
		}
	case "type_alias_declaration":
		if value := field(n, "value"); value != nil {
			return r.collectEvents(typeRef{node: value, scope: sc}, events, depth+1)
		}
	case "union_type", "intersection_type", "parenthesized_type":
		for _, part := range namedChildren(n) {
			if err := r.collectEvents(typeRef{node: part, scope: sc}, events, depth+1); err != nil {
				return err
			}
		}
	case "type_identifier":
		ref, ok, err := r.lookup(sc.text(n), sc, depth)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("unresolvable type reference %s: %w", sc.text(n), ErrCompile)
		}
		return r.collectEvents(ref, events, depth+1)
	default:
		return fmt.Errorf("unsupported type %s: %w", sc.text(n), ErrCompile)
	}
	return nil
}

// firstParamEvents adds the string literal types of the first parameter of
// a call signature.
func (r *resolver) firstParamEvents(params *sitter.Node, sc *scope, events *[]string, depth int) {
	named := namedChildren(params)
	if len(named) == 0 {
		return
	}
	ann := field(named[0], "type")
	if ann == nil || ann.NamedChildCount() == 0 {
		return
	}
	r.literalStrings(typeRef{node: ann.NamedChild(0), scope: sc}, events, depth+1)
}

func (r *resolver) literalStrings(t typeRef, out *[]string, depth int) {
	if depth > maxDepth {
		return
	}
	n, sc := t.node, t.scope
	switch n.Type() {
	case "literal_type":
		if n.NamedChildCount() > 0 && n.NamedChild(0).Type() == "string" {
			*out = appendUnique(*out, unquote(sc.text(n.NamedChild(0))))
		}
	case "union_type", "parenthesized_type":
		for _, part := range namedChildren(n) {
			r.literalStrings(typeRef{node: part, scope: sc}, out, depth+1)
		}
	case "type_identifier":
		ref, ok, err := r.lookup(sc.text(n), sc, depth)
		if err != nil || !ok || ref.node.Type() != "type_alias_declaration" {
			return
		}
		if value := field(ref.node, "value"); value != nil {
			r.literalStrings(typeRef{node: value, scope: ref.scope}, out, depth+1)
		}
	}
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// applyDefaults copies the withDefaults object entries onto the props.
func applyDefaults(props []prop, defaults *sitter.Node, sc *scope) {
	for _, entry := range namedChildren(defaults) {
		var key, value string
		switch entry.Type() {
		case "pair":
			k, v := field(entry, "key"), field(entry, "value")
			if k == nil || v == nil {
				continue
			}
			key, value = unquote(sc.text(k)), sc.text(v)
		case "shorthand_property_identifier":
			key = sc.text(entry)
			value = key
		case "method_definition":
			name, params, body := field(entry, "name"), field(entry, "parameters"), field(entry, "body")
			if name == nil || params == nil || body == nil {
				continue
			}
			key = unquote(sc.text(name))
			value = "function " + sc.text(params) + " " + sc.text(body)
		default:
			continue
		}
		for i := range props {
			if props[i].name == key {
				props[i].def, props[i].hasDefault = value, true
			}
		}
	}
}

var identifierName = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func propKey(name string) string {
	if identifierName.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

func renderType(types []string) string {
	var uniq []string
	for _, t := range types {
		if t == "null" {
			return "null"
		}
		uniq = appendUnique(uniq, t)
	}
	switch len(uniq) {
	case 0:
		return "null"
	case 1:
		return uniq[0]
	default:
		return "[" + strings.Join(uniq, ", ") + "]"
	}
}

// render prints compiled component code carrying the runtime declarations.
func render(name string, found macros, props []prop, emits []string) string {
	var b strings.Builder
	b.WriteString("import { defineComponent as _defineComponent } from 'vue'\n\n")
	b.WriteString("export default /*#__PURE__*/_defineComponent({\n")
	fmt.Fprintf(&b, "  __name: %s,\n", strconv.Quote(name))

	if found.props != nil {
		b.WriteString("  props: {\n")
		for i, p := range props {
			fmt.Fprintf(&b, "    %s: { type: %s, required: %t", propKey(p.name), renderType(p.types), p.required)
			if p.hasDefault {
				fmt.Fprintf(&b, ", default: %s", p.def)
			}
			b.WriteString(" }")
			if i < len(props)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("  },\n")
	}

	if found.emits != nil {
		quoted := make([]string, len(emits))
		for i, e := range emits {
			quoted[i] = strconv.Quote(e)
		}
		fmt.Fprintf(&b, "  emits: [%s],\n", strings.Join(quoted, ", "))
	}

	b.WriteString("  setup(__props, { expose: __expose }) {\n    __expose();\n    return {}\n  }\n})\n")
	return b.String()
}
