// Package signature loads and validates the declarative technology
// signature table used by the detector. The table maps a fixed set of
// categories to named technologies, each carrying weighted patterns that are
// tested against file paths and file contents.
package signature

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Categories lists the known signature categories in report order.
var Categories = []string{
	"frameworks",
	"databases",
	"testing",
	"build_tools",
	"infrastructure",
	"ci_cd",
}

// CategoryTitles maps a category key to its human readable heading.
var CategoryTitles = map[string]string{
	"frameworks":     "Frameworks",
	"databases":      "Databases",
	"testing":        "Testing",
	"build_tools":    "Build Tools",
	"infrastructure": "Infrastructure",
	"ci_cd":          "CI/CD",
}

// DefaultWeight applies to patterns when neither the pattern nor its
// signature declares a weight.
const DefaultWeight = 0.5

var (
	ErrUnknownCategory = errors.New("unknown signature category")
	ErrEmptyName       = errors.New("signature name is empty")
	ErrNoPatterns      = errors.New("signature has no patterns")
	ErrInvalidPattern  = errors.New("invalid signature pattern")
	ErrInvalidWeight   = errors.New("signature weight must be in (0, 1]")
	ErrDuplicateName   = errors.New("duplicate signature name")
	ErrEmptyTable      = errors.New("signature table is empty")
)

// Target restricts where a pattern is tested.
type Target string

const (
	TargetAny     Target = ""
	TargetPath    Target = "path"
	TargetContent Target = "content"
)

//go:embed default_signatures.yaml
var defaultTable []byte

// Pattern is one weighted matcher. In YAML a bare string is shorthand for a
// case-insensitive literal match with the signature's weight.
type Pattern struct {
	Match         string  `yaml:"match"`
	Regex         bool    `yaml:"regex,omitempty"`
	CaseSensitive bool    `yaml:"case_sensitive,omitempty"`
	Weight        float64 `yaml:"weight,omitempty"`
	Target        Target  `yaml:"target,omitempty"`

	re    *regexp.Regexp
	lower string
}

// patternFields are the keys a mapping pattern may carry. Node.Decode does
// not inherit the outer decoder's KnownFields setting, so they are checked
// here.
var patternFields = map[string]bool{
	"match": true, "regex": true, "case_sensitive": true, "weight": true, "target": true,
}

// UnmarshalYAML accepts either a scalar or a mapping.
func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Match = node.Value
		return nil
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if !patternFields[key.Value] {
				return fmt.Errorf("%w: unknown field %q on line %d", ErrInvalidPattern, key.Value, key.Line)
			}
		}
	}
	type plain Pattern
	var raw plain
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = Pattern(raw)
	return nil
}

// MatchString reports whether s satisfies the pattern. The pattern must have
// been compiled through a Table.
func (p *Pattern) MatchString(s string) bool {
	if p.re != nil {
		return p.re.MatchString(s)
	}
	if p.CaseSensitive {
		return strings.Contains(s, p.Match)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// Applies reports whether the pattern is tested against the given target.
func (p *Pattern) Applies(t Target) bool {
	return p.Target == TargetAny || p.Target == t
}

// Signature is a named technology with its detection patterns.
type Signature struct {
	Category string    `yaml:"-"`
	Name     string    `yaml:"name"`
	Weight   float64   `yaml:"weight,omitempty"`
	Patterns []Pattern `yaml:"patterns"`
}

// Table is a validated, compiled signature set. It is immutable once built
// and safe for concurrent use.
type Table struct {
	Signatures []Signature
}

// tableFile is the on-disk shape: category -> signatures.
type tableFile struct {
	Replace    bool                   `yaml:"replace,omitempty"`
	Categories map[string][]Signature `yaml:",inline"`
}

// Default returns the built-in signature table.
func Default() (*Table, error) {
	t, err := Parse(defaultTable)
	if err != nil {
		return nil, fmt.Errorf("default signatures: %w", err)
	}
	return t, nil
}

// Parse decodes and validates a YAML signature table.
func Parse(data []byte) (*Table, error) {
	sigs, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	return build(sigs)
}

// Load returns the default table merged with the user table at path. A
// signature in the user file replaces a default one of the same name; new
// names are appended. When replace is true, or the user file sets
// "replace: true", only the user table is used. An empty path yields the
// default table.
func Load(path string, replace bool) (*Table, error) {
	base, _, err := decode(defaultTable)
	if err != nil {
		return nil, fmt.Errorf("default signatures: %w", err)
	}
	if path == "" {
		return build(base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature file: %w", err)
	}
	user, fileReplace, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("signature file %s: %w", path, err)
	}
	if replace || fileReplace {
		return build(user)
	}
	return build(merge(base, user))
}

// decode parses YAML into a category-ordered signature list. Categories are
// emitted in Categories order so that the resulting table is deterministic
// regardless of map iteration. Unknown fields are rejected.
func decode(data []byte) ([]Signature, bool, error) {
	var f tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("parsing signatures: %w", err)
	}
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}
	for cat := range f.Categories {
		if !known[cat] {
			return nil, false, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}
	}

	var sigs []Signature
	for _, cat := range Categories {
		for _, s := range f.Categories[cat] {
			s.Category = cat
			sigs = append(sigs, s)
		}
	}
	return sigs, f.Replace, nil
}

func merge(base, user []Signature) []Signature {
	out := make([]Signature, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, s := range out {
		index[s.Name] = i
	}
	for _, s := range user {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

// build validates every signature and compiles its patterns. A table with
// no signatures is rejected.
func build(sigs []Signature) (*Table, error) {
	if len(sigs) == 0 {
		return nil, ErrEmptyTable
	}
	seen := make(map[string]string, len(sigs))
	t := &Table{Signatures: make([]Signature, 0, len(sigs))}

	for _, s := range sigs {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("%w (category %s)", ErrEmptyName, s.Category)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateName, s.Name, prev, s.Category)
		}
		seen[s.Name] = s.Category

		if len(s.Patterns) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoPatterns, s.Name)
		}
		if s.Weight == 0 {
			s.Weight = DefaultWeight
		}
		if s.Weight < 0 || s.Weight > 1 {
			return nil, fmt.Errorf("%w: %s has %v", ErrInvalidWeight, s.Name, s.Weight)
		}

		patterns := make([]Pattern, len(s.Patterns))
		for i, p := range s.Patterns {
			if err := compile(&p, s.Weight); err != nil {
				return nil, fmt.Errorf("%s pattern %d: %w", s.Name, i, err)
			}
			patterns[i] = p
		}
		s.Patterns = patterns
		t.Signatures = append(t.Signatures, s)
	}
	return t, nil
}

func compile(p *Pattern, inherited float64) error {
	if p.Match == "" {
		return fmt.Errorf("%w: empty match", ErrInvalidPattern)
	}
	switch p.Target {
	case TargetAny, TargetPath, TargetContent:
	default:
		return fmt.Errorf("%w: unknown target %q", ErrInvalidPattern, p.Target)
	}
	if p.Weight == 0 {
		p.Weight = inherited
	}
	if p.Weight < 0 || p.Weight > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, p.Weight)
	}

	if p.Regex {
		flags := "m"
		if !p.CaseSensitive {
			flags += "i"
		}
		re, err := regexp.Compile("(?" + flags + ")" + p.Match)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		p.re = re
		return nil
	}
	p.lower = strings.ToLower(p.Match)
	return nil
}

// Marshal renders the table back to YAML grouped by category.
func (t *Table) Marshal() ([]byte, error) {
	doc := make(map[string][]Signature)
	for _, s := range t.Signatures {
		doc[s.Category] = append(doc[s.Category], s)
	}
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range Categories {
		sigs, ok := doc[cat]
		if !ok {
			continue
		}
		var val yaml.Node
		if err := val.Encode(sigs); err != nil {
			return nil, err
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: cat},
			&val,
		)
	}
	return yaml.Marshal(root)
}

// Count returns the number of signatures per category.
func (t *Table) Count() map[string]int {
	counts := make(map[string]int, len(Categories))
	for _, s := range t.Signatures {
		counts[s.Category]++
	}
	return counts
}
