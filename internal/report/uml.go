package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/julianshen/docgenie/internal/analysis"
)

// Diagram size limits keep generated diagrams readable.
const (
	maxDiagramClasses    = 20
	maxDiagramComponents = 12
)

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// alias turns a label into a PlantUML identifier.
func alias(prefix, label string) string {
	return prefix + "_" + nonIdent.ReplaceAllString(label, "_")
}

// quote escapes a label for use inside PlantUML double quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `'`) + `"`
}

func buildUseCaseDiagram(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	b.WriteString("@startuml\n")
	fmt.Fprintf(&b, "title Use Case Diagram - %s\n\n", meta.name())
	b.WriteString("left to right direction\n")
	b.WriteString("actor User\nactor Developer\nactor System\n\n")

	fmt.Fprintf(&b, "rectangle %s {\n", quote(meta.name()))
	b.WriteString("  usecase \"Core Functionality\" as UC1\n")
	b.WriteString("  usecase \"Data Processing\" as UC2\n")
	b.WriteString("  usecase \"User Interface\" as UC3\n")
	b.WriteString("  usecase \"API Access\" as UC4\n")
	for i, ep := range res.Endpoints {
		if i == maxDiagramComponents {
			break
		}
		fmt.Fprintf(&b, "  usecase %s as EP%d\n", quote(ep.Method+" "+ep.Path), i+1)
	}
	b.WriteString("}\n\n")

	b.WriteString("User --> UC1\nUser --> UC3\nDeveloper --> UC4\nSystem --> UC2\n")
	b.WriteString("UC1 --> UC2\nUC3 --> UC1\nUC4 --> UC2\n")
	for i := range res.Endpoints {
		if i == maxDiagramComponents {
			break
		}
		fmt.Fprintf(&b, "UC4 --> EP%d\n", i+1)
	}
	b.WriteString("@enduml\n")

	return Document{Path: UseCaseDiagramPath, Title: "Use Case Diagram", Content: b.String()}
}

// buildClassDiagram lists declared class and type names grouped by file.
// Names are labels only; no members or relations are inferred.
func buildClassDiagram(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	b.WriteString("@startuml\n")
	fmt.Fprintf(&b, "title Class Diagram - %s\n\n", meta.name())

	classes := res.Structure.Classes
	if len(classes) == 0 {
		b.WriteString("note \"No classes detected\" as N1\n")
	}
	if len(classes) > maxDiagramClasses {
		classes = classes[:maxDiagramClasses]
	}

	file := ""
	seen := map[string]bool{}
	for _, c := range classes {
		if c.File != file {
			if file != "" {
				b.WriteString("}\n")
			}
			file = c.File
			fmt.Fprintf(&b, "package %s {\n", quote(file))
		}
		id := alias("C", c.File+"_"+c.Name)
		if seen[id] {
			continue
		}
		seen[id] = true
		fmt.Fprintf(&b, "  class %s as %s\n", quote(c.Name), id)
	}
	if file != "" {
		b.WriteString("}\n")
	}
	if extra := len(res.Structure.Classes) - len(classes); extra > 0 {
		fmt.Fprintf(&b, "note \"%d more classes not shown\" as N2\n", extra)
	}
	b.WriteString("@enduml\n")

	return Document{Path: ClassDiagramPath, Title: "Class Diagram", Content: b.String()}
}

func buildComponentDiagram(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	b.WriteString("@startuml\n")
	fmt.Fprintf(&b, "title Component Diagram - %s\n\n", meta.name())

	comps := res.Structure.Components
	if len(comps) > maxDiagramComponents {
		comps = comps[:maxDiagramComponents]
	}
	shown := map[string]bool{}
	for _, c := range comps {
		shown[c] = true
		fmt.Fprintf(&b, "component %s as %s\n", quote(c), alias("D", c))
	}
	if len(comps) == 0 {
		fmt.Fprintf(&b, "component %s as root\n", quote(meta.name()))
	}

	if len(res.Structure.ComponentEdges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range res.Structure.ComponentEdges {
		if shown[e.From] && shown[e.To] {
			fmt.Fprintf(&b, "%s --> %s\n", alias("D", e.From), alias("D", e.To))
		}
	}
	b.WriteString("@enduml\n")

	return Document{Path: ComponentDiagramPath, Title: "Component Diagram", Content: b.String()}
}
