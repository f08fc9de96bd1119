package deps

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// requirementLine captures a PEP 508 name, optional extras and the rest.
var requirementLine = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)

// requirementOption finds per-requirement options such as --hash.
var requirementOption = regexp.MustCompile(`\s+--?[A-Za-z]`)

// parseRequirements reads a pip requirements file. Files whose name mentions
// dev or test hold development dependencies.
func parseRequirements(base string, data []byte) ([]entry, error) {
	kind := Production
	lower := strings.ToLower(base)
	if strings.Contains(lower, "dev") || strings.Contains(lower, "test") {
		kind = Development
	}

	lines, err := logicalLines(data)
	if err != nil {
		return nil, err
	}
	var out []entry
	for _, ll := range lines {
		start, line := ll.no, ll.text
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if loc := requirementOption.FindStringIndex(line); loc != nil {
			line = line[:loc[0]]
		}

		// direct references: "name @ https://..."
		if strings.Contains(line, "://") {
			name, ref, ok := strings.Cut(line, "@")
			if !ok || strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
				continue
			}
			out = append(out, entry{name: strings.TrimSpace(name), version: strings.TrimSpace(ref), kind: kind})
			continue
		}

		spec, _, _ := strings.Cut(line, ";")
		m := requirementLine.FindStringSubmatch(strings.TrimSpace(spec))
		if m == nil {
			return nil, fmt.Errorf("line %d: invalid requirement %q", start, line)
		}
		version := strings.TrimSpace(m[3])
		if version != "" && !strings.ContainsAny(version[:1], "=<>!~") {
			return nil, fmt.Errorf("line %d: invalid version specifier %q", start, version)
		}
		out = append(out, entry{name: m[1], version: version, kind: kind})
	}
	return out, nil
}

type logicalLine struct {
	no   int // first physical line
	text string
}

// logicalLines joins lines ending in a backslash with the line that follows.
func logicalLines(data []byte) ([]logicalLine, error) {
	var out []logicalLine
	var cur strings.Builder
	sc := bufio.NewScanner(bytes.NewReader(data))
	no, start := 0, 0
	for sc.Scan() {
		no++
		if cur.Len() == 0 {
			start = no
		}
		raw := strings.TrimRight(sc.Text(), " \t")
		if cont, ok := strings.CutSuffix(raw, "\\"); ok {
			cur.WriteString(cont)
			cur.WriteByte(' ')
			continue
		}
		cur.WriteString(raw)
		out = append(out, logicalLine{no: start, text: cur.String()})
		cur.Reset()
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cur.Len() > 0 {
		out = append(out, logicalLine{no: start, text: cur.String()})
	}
	return out, nil
}

// tomlTable decodes a TOML manifest and returns the raw document plus the
// keys in document order.
func tomlTable(data []byte) (map[string]any, []toml.Key, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, md.Keys(), nil
}

// tomlEntries collects the direct children of the table at prefix in
// document order.
func tomlEntries(doc map[string]any, keys []toml.Key, prefix []string, kind Kind, skip func(string) bool) []entry {
	var out []entry
	for _, k := range keys {
		if len(k) != len(prefix)+1 || !hasPrefix(k, prefix) {
			continue
		}
		name := k[len(k)-1]
		if skip != nil && skip(name) {
			continue
		}
		out = append(out, entry{name: name, version: tomlVersion(lookup(doc, k)), kind: kind})
	}
	return out
}

func hasPrefix(k toml.Key, prefix []string) bool {
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

func lookup(doc map[string]any, k toml.Key) any {
	var cur any = doc
	for _, part := range k {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// tomlVersion reads a version from either a string value or an inline table
// such as {version = "1.0", features = [...]}. Path, git and workspace
// dependencies are reported by their source.
func tomlVersion(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			return s
		}
		for _, src := range []string{"git", "path", "url"} {
			if s, ok := val[src].(string); ok {
				return src + ":" + s
			}
		}
		if ws, ok := val["workspace"].(bool); ok && ws {
			return "workspace:*"
		}
	}
	return ""
}

// parsePipfile reads pipenv's [packages] and [dev-packages].
func parsePipfile(_ string, data []byte) ([]entry, error) {
	doc, keys, err := tomlTable(data)
	if err != nil {
		return nil, err
	}
	out := tomlEntries(doc, keys, []string{"packages"}, Production, nil)
	return append(out, tomlEntries(doc, keys, []string{"dev-packages"}, Development, nil)...), nil
}

// parsePyproject reads Poetry tables and PEP 621 project dependencies.
func parsePyproject(_ string, data []byte) ([]entry, error) {
	doc, keys, err := tomlTable(data)
	if err != nil {
		return nil, err
	}
	notPython := func(name string) bool { return name == "python" }

	out := tomlEntries(doc, keys, []string{"tool", "poetry", "dependencies"}, Production, notPython)
	out = append(out, tomlEntries(doc, keys, []string{"tool", "poetry", "dev-dependencies"}, Development, notPython)...)

	// [tool.poetry.group.<name>.dependencies]
	for _, k := range keys {
		if len(k) == 5 && k[0] == "tool" && k[1] == "poetry" && k[2] == "group" && k[4] == "dependencies" {
			out = append(out, tomlEntries(doc, keys, k, Development, notPython)...)
		}
	}

	if project, ok := doc["project"].(map[string]any); ok {
		reqs, err := pep508List(project["dependencies"], Production)
		if err != nil {
			return nil, err
		}
		out = append(out, reqs...)

		if optional, ok := project["optional-dependencies"].(map[string]any); ok {
			for _, k := range keys {
				if len(k) == 3 && k[0] == "project" && k[1] == "optional-dependencies" {
					reqs, err := pep508List(optional[k[2]], Development)
					if err != nil {
						return nil, err
					}
					out = append(out, reqs...)
				}
			}
		}
	}
	return out, nil
}

// pep508List parses an array of requirement strings.
func pep508List(v any, kind Kind) ([]entry, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	var lines []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			lines = append(lines, s)
		}
	}
	entries, err := parseRequirements("pyproject", []byte(strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("project dependencies: %w", err)
	}
	for i := range entries {
		entries[i].kind = kind
	}
	return entries, nil
}
