// Package deps parses package-manager manifests into a unified dependency
// list split by production and development use.
package deps

import (
	"log"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind separates runtime dependencies from development-only ones.
type Kind string

const (
	Production  Kind = "production"
	Development Kind = "development"
)

// Constraint describes the shape of a declared version.
type Constraint string

const (
	Exact Constraint = "exact"
	Range Constraint = "range"
	Any   Constraint = "any"
	Other Constraint = "other" // URLs, paths, property references
)

// Dependency is one declared package.
type Dependency struct {
	Name       string     `json:"name"`
	Version    string     `json:"version"`
	Manager    string     `json:"manager"`
	Kind       Kind       `json:"kind"`
	Source     string     `json:"source"`
	Constraint Constraint `json:"constraint"`
}

// Warning records a manifest that could not be parsed.
type Warning struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Manifest is a recognized manifest file and its raw content.
type Manifest struct {
	Path    string
	Content []byte
}

// entry is a parsed declaration before it is stamped with manager and source.
type entry struct {
	name    string
	version string
	kind    Kind
}

// manifestParser defines how to recognize and parse one manifest format.
type manifestParser struct {
	manager string
	match   func(base string) bool
	parse   func(base string, data []byte) ([]entry, error)
}

var requirementsFile = regexp.MustCompile(`^requirements.*\.txt$`)

func named(name string) func(string) bool {
	return func(base string) bool { return base == name }
}

var parsers = []manifestParser{
	{manager: "npm", match: named("package.json"), parse: parsePackageJSON},
	{manager: "pip", match: requirementsFile.MatchString, parse: parseRequirements},
	{manager: "pipenv", match: named("Pipfile"), parse: parsePipfile},
	{manager: "poetry", match: named("pyproject.toml"), parse: parsePyproject},
	{manager: "cargo", match: named("Cargo.toml"), parse: parseCargo},
	{manager: "go", match: named("go.mod"), parse: parseGoMod},
	{manager: "maven", match: named("pom.xml"), parse: parsePom},
	{manager: "composer", match: named("composer.json"), parse: parseComposer},
}

func parserFor(p string) (manifestParser, bool) {
	base := path.Base(p)
	for _, mp := range parsers {
		if mp.match(base) {
			return mp, true
		}
	}
	return manifestParser{}, false
}

// IsManifest reports whether the file at p is a recognized manifest.
func IsManifest(p string) bool {
	_, ok := parserFor(p)
	return ok
}

// ManagerFor returns the package manager that owns the manifest at p.
func ManagerFor(p string) string {
	mp, _ := parserFor(p)
	return mp.manager
}

// Aggregate parses manifests in path order. A manifest that fails to parse
// contributes a Warning and no dependencies. Dependencies are deduplicated by
// (name, manager); the first occurrence wins.
func Aggregate(manifests []Manifest) ([]Dependency, []Warning) {
	sorted := make([]Manifest, len(manifests))
	copy(sorted, manifests)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	type key struct{ name, manager string }
	seen := make(map[key]bool)

	var out []Dependency
	var warnings []Warning
	for _, m := range sorted {
		mp, ok := parserFor(m.Path)
		if !ok {
			continue
		}
		entries, err := mp.parse(path.Base(m.Path), m.Content)
		if err != nil {
			log.Printf("WARNING: skipping manifest %s: %v", m.Path, err)
			warnings = append(warnings, Warning{File: m.Path, Message: err.Error()})
			continue
		}
		for _, e := range entries {
			k := key{e.name, mp.manager}
			if seen[k] {
				continue
			}
			seen[k] = true

			version := strings.TrimSpace(e.version)
			if version == "" {
				version = "*"
			}
			out = append(out, Dependency{
				Name:       e.name,
				Version:    version,
				Manager:    mp.manager,
				Kind:       e.kind,
				Source:     m.Path,
				Constraint: classifyConstraint(mp.manager, version),
			})
		}
	}
	return out, warnings
}

// Counts returns the total, production and development dependency counts.
func Counts(deps []Dependency) (total, production, development int) {
	for _, d := range deps {
		if d.Kind == Development {
			development++
		} else {
			production++
		}
	}
	return len(deps), production, development
}

// classifyConstraint derives the constraint kind of a declared version.
func classifyConstraint(manager, version string) Constraint {
	v := strings.TrimSpace(version)
	switch strings.ToLower(v) {
	case "", "*", "latest", "x", "any":
		return Any
	}
	if strings.Contains(v, "://") || strings.Contains(v, "${") ||
		strings.HasPrefix(v, "file:") || strings.HasPrefix(v, "git") ||
		strings.HasPrefix(v, "workspace:") || strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(") {
		return Other
	}

	// PEP 440 operators mapped onto their semver equivalents
	v = strings.Replace(v, "~=", "~", 1)
	v = strings.Replace(v, "==", "=", 1)

	if isRange(v) {
		if _, err := semver.NewConstraint(v); err == nil {
			return Range
		}
		return Other
	}
	if _, err := semver.NewVersion(strings.TrimPrefix(v, "=")); err != nil {
		return Other
	}
	// a bare Cargo version is a caret requirement
	if manager == "cargo" && !strings.HasPrefix(v, "=") {
		return Range
	}
	return Exact
}

// isRange reports whether v uses range operators or wildcards rather than
// pinning a single version.
func isRange(v string) bool {
	if strings.ContainsAny(v, "^~><!, |") {
		return true
	}
	for _, part := range strings.Split(v, ".") {
		if part == "x" || part == "X" || part == "*" {
			return true
		}
	}
	return false
}
