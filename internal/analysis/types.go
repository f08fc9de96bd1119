package analysis

import (
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
)

// Result is everything the report assembler needs from one run. It is
// built once by Analyze and not modified afterwards.
type Result struct {
	Detections   []detect.Detection `json:"detections"`
	Dependencies []deps.Dependency  `json:"dependencies"`
	Warnings     []deps.Warning     `json:"warnings"`
	Manifests    []string           `json:"manifests"`
	Endpoints    []Endpoint         `json:"endpoints"`
	Summary      Summary            `json:"summary"`
	Structure    Structure          `json:"structure"`
	Files        []FileInfo         `json:"files"`
}

// Endpoint is an HTTP route found in source code.
type Endpoint struct {
	Method string `json:"method"` // upper case, or ANY
	Path   string `json:"path"`
	File   string `json:"file"`
}

// Summary holds repository-wide counts.
type Summary struct {
	Files           int            `json:"files"`
	Lines           int            `json:"lines"`
	Skipped         int            `json:"skipped"`
	Binary          int            `json:"binary"`
	Functions       int            `json:"functions"`
	Classes         int            `json:"classes"`
	PrimaryLanguage string         `json:"primary_language"`
	Languages       []LanguageStat `json:"languages"`
}

// LanguageStat is the file and line total of one language.
type LanguageStat struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
	Lines    int    `json:"lines"`
}

// Structure holds layout facts used by the architecture notes and the UML
// diagrams.
type Structure struct {
	Directories    []DirectoryStat `json:"directories"`
	KeyFiles       []FileInfo      `json:"key_files"`
	Classes        []ClassRef      `json:"classes"`
	Components     []string        `json:"components"`
	ComponentEdges []Edge          `json:"component_edges"`
}

// DirectoryStat describes one top-level directory.
type DirectoryStat struct {
	Path      string   `json:"path"`
	Files     int      `json:"files"`
	Lines     int      `json:"lines"`
	Languages []string `json:"languages"`
}

// ClassRef names a class or type declaration and the file declaring it.
type ClassRef struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Language string `json:"language"`
}

// Edge is an import relation between two components.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FileInfo is the per-file record kept after content is discarded.
type FileInfo struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	Lines     int    `json:"lines"`
	Functions int    `json:"functions"`
	Classes   int    `json:"classes"`
}
