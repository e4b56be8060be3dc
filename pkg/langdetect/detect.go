// Package langdetect classifies source files by kind using go-enry's
// extension tables.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Kind is the kind of a source file as far as type removal is concerned.
type Kind int

// File kinds.
const (
	KindUnknown Kind = iota
	KindTypeScript
	KindTSX
	KindJavaScript
	KindVue
	KindMarkdown
)

func (k Kind) String() string {
	switch k {
	case KindTypeScript:
		return "typescript"
	case KindTSX:
		return "tsx"
	case KindJavaScript:
		return "javascript"
	case KindVue:
		return "vue"
	case KindMarkdown:
		return "markdown"
	}
	return "unknown"
}

// Typed reports whether files of this kind are type-stripped directly.
func (k Kind) Typed() bool {
	return k == KindTypeScript || k == KindTSX
}

// KindOf returns the kind of filename by its extension.
func KindOf(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mts", ".cts":
		return KindTypeScript
	case ".tsx":
		return KindTSX
	}

	for _, lang := range enry.GetLanguagesByExtension(filename, nil, nil) {
		switch lang {
		case "TypeScript":
			return KindTypeScript
		case "TSX":
			return KindTSX
		case "Vue":
			return KindVue
		case "JavaScript", "JSX":
			return KindJavaScript
		case "Markdown":
			return KindMarkdown
		}
	}
	return KindUnknown
}

// IsDeclaration reports whether filename is a type declaration file
// (.d.ts, .d.mts, .d.cts), which holds no runtime code.
func IsDeclaration(filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// FenceKind maps a Markdown fenced code block info string to a kind.
func FenceKind(info string) Kind {
	lang, _, _ := strings.Cut(strings.TrimSpace(info), " ")
	switch strings.ToLower(lang) {
	case "ts", "typescript", "mts", "cts":
		return KindTypeScript
	case "tsx":
		return KindTSX
	case "vue":
		return KindVue
	}
	return KindUnknown
}
