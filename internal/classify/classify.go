// Package classify maps repository files to a language label and line count
// and, for languages with a tree-sitter grammar, a structural outline.
package classify

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/julianshen/docgenie/internal/parser"
)

// Unknown is the language label for unrecognized, extensionless, binary and
// unreadable files.
const Unknown = "Unknown"

// binarySniffLen bounds how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// Loader returns a file's content on demand.
type Loader func() ([]byte, error)

// SourceFile is a classified repository file. It is read-only once returned
// by Classify.
type SourceFile struct {
	Path      string
	Language  string
	Lines     int
	Size      int64
	Skipped   bool // content could not be read
	Binary    bool
	Functions []string
	Classes   []string
	Imports   []string
	Content   []byte
}

// languages maps lower-cased file extensions to language labels.
var languages = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".cjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".hpp":   "C++",
	".c":     "C",
	".h":     "C",
	".go":    "Go",
	".rs":    "Rust",
	".rb":    "Ruby",
	".php":   "PHP",
	".cs":    "C#",
	".swift": "Swift",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".scala": "Scala",
	".dart":  "Dart",
	".lua":   "Lua",
	".r":     "R",
	".sh":    "Shell",
	".bash":  "Shell",
	".sql":   "SQL",
	".vue":   "Vue",
	".html":  "HTML",
	".htm":   "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".xml":   "XML",
	".md":    "Markdown",
	".proto": "Protocol Buffers",
	".tf":    "HCL",
}

// LanguageFor returns the language label for path based on its extension.
func LanguageFor(path string) string {
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return Unknown
}

// CountLines returns the number of lines in content: one per '\n', plus one
// for a trailing line without a terminator. Empty content has zero lines.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// IsBinary reports whether content looks binary (a NUL byte near the start).
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}

// Classifier classifies files. It is safe for concurrent use.
type Classifier struct {
	outlines bool
	parsers  sync.Pool
}

// New returns a Classifier. When outlines is true, files in languages with a
// tree-sitter grammar are parsed for function, class and import names.
func New(outlines bool) *Classifier {
	return &Classifier{
		outlines: outlines,
		parsers: sync.Pool{
			New: func() any { return parser.NewParser() },
		},
	}
}

// Classify loads and classifies a single file. It never fails: a loader error
// yields an Unknown file with zero lines and Skipped set.
func (c *Classifier) Classify(ctx context.Context, path string, size int64, load Loader) SourceFile {
	sf := SourceFile{Path: path, Size: size, Language: Unknown}

	content, err := load()
	if err != nil {
		log.Printf("WARNING: skipping %s: %v", path, err)
		sf.Skipped = true
		return sf
	}
	if IsBinary(content) {
		sf.Binary = true
		return sf
	}

	sf.Language = LanguageFor(path)
	sf.Lines = CountLines(content)
	sf.Content = content
	if sf.Size == 0 {
		sf.Size = int64(len(content))
	}

	if c.outlines && parser.Supported(path) {
		p := c.parsers.Get().(*parser.Parser)
		defer c.parsers.Put(p)
		if o, err := p.Outline(ctx, path, content); err == nil {
			sf.Functions = symbolNames(o.Functions)
			sf.Classes = symbolNames(o.Classes)
			sf.Imports = o.Imports
		}
	}
	return sf
}

func symbolNames(syms []parser.Symbol) []string {
	if len(syms) == 0 {
		return nil
	}
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}
