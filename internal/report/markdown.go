package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianshen/docgenie/internal/analysis"
	"github.com/julianshen/docgenie/internal/deps"
	"github.com/julianshen/docgenie/internal/detect"
	"github.com/julianshen/docgenie/internal/signature"
)

// NoTechnologies is written for a category without detections.
const NoTechnologies = "No technologies detected in this category."

// topTechnologies is the number of detections listed in the README.
const topTechnologies = 5

func buildReadme(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	repo := meta.Repo
	fmt.Fprintf(&b, "# %s\n\n", meta.name())
	if repo.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", repo.Description)
	}

	primary := repo.Language
	if primary == "" {
		primary = res.Summary.PrimaryLanguage
	}
	if primary == "" {
		primary = "Multiple"
	}

	b.WriteString("## 📊 Project Overview\n\n")
	fmt.Fprintf(&b, "- **Primary Language:** %s\n", primary)
	if repo.URL != "" {
		fmt.Fprintf(&b, "- **Repository:** %s\n", repo.URL)
	}
	if repo.DefaultBranch != "" {
		fmt.Fprintf(&b, "- **Branch:** %s\n", repo.DefaultBranch)
	}
	fmt.Fprintf(&b, "- **Stars:** %d\n", repo.Stars)
	fmt.Fprintf(&b, "- **Forks:** %d\n", repo.Forks)
	if !repo.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Last Updated:** %s\n", repo.UpdatedAt.UTC().Format(TimestampLayout))
	}

	b.WriteString("\n## 🚀 Technologies Used\n\n")
	top := detect.Top(res.Detections, topTechnologies)
	if len(top) == 0 {
		b.WriteString("No technologies detected.\n")
	}
	for _, d := range top {
		fmt.Fprintf(&b, "- **%s** (%s)\n", d.Name, signature.CategoryTitles[d.Category])
	}
	b.WriteString("\nSee [Technology Analysis](./analysis/technology_analysis.md) for detailed information.\n")

	total, prod, dev := deps.Counts(res.Dependencies)
	b.WriteString("\n## 📋 Dependencies\n\n")
	fmt.Fprintf(&b, "- **Total Dependencies:** %d\n", total)
	fmt.Fprintf(&b, "- **Production:** %d\n", prod)
	fmt.Fprintf(&b, "- **Development:** %d\n", dev)
	b.WriteString("\nSee [Dependency Analysis](./analysis/dependency_analysis.md) for detailed information.\n")

	b.WriteString("\n## 🛠️ Setup Instructions\n\n")
	writeSetup(&b, res, repo.URL, meta.name())

	s := res.Summary
	b.WriteString("\n## 📈 Code Metrics\n\n")
	fmt.Fprintf(&b, "- **Total Files:** %d\n", s.Files)
	fmt.Fprintf(&b, "- **Total Lines of Code:** %s\n", thousands(s.Lines))
	fmt.Fprintf(&b, "- **Functions:** %d\n", s.Functions)
	fmt.Fprintf(&b, "- **Classes:** %d\n", s.Classes)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "- **Unreadable Files:** %d\n", s.Skipped)
	}

	b.WriteString("\n## 🏛️ Architecture\n\n")
	b.WriteString("See [Architecture Documentation](./architecture/architecture_analysis.md) for detailed information.\n\n")
	b.WriteString("### UML Diagrams\n\n")
	b.WriteString("- [Use Case Diagram](./uml/use_case_diagram.puml)\n")
	b.WriteString("- [Class Diagram](./uml/class_diagram.puml)\n")
	b.WriteString("- [Component Diagram](./uml/component_diagram.puml)\n")

	b.WriteString("\n## 📚 API Documentation\n\n")
	fmt.Fprintf(&b, "%d endpoint(s) detected. See [API Documentation](./api/api_specification.md).\n", len(res.Endpoints))

	if meta.Summary != "" {
		b.WriteString("\n## 🤖 AI Summary\n\n")
		b.WriteString("See [AI Summary](./analysis/ai_summary.md).\n")
	}

	return Document{Path: ReadmePath, Title: meta.name(), Content: b.String()}
}

// installHints maps a package manager to its install and run commands.
var installHints = map[string][2]string{
	"npm":      {"npm install", "npm start"},
	"pip":      {"pip install -r requirements.txt", "python main.py"},
	"pipenv":   {"pipenv install --dev", "pipenv run python main.py"},
	"poetry":   {"poetry install", "poetry run python -m <package>"},
	"cargo":    {"cargo build", "cargo run"},
	"go":       {"go mod download", "go run ./..."},
	"maven":    {"mvn install", "mvn exec:java"},
	"composer": {"composer install", "php artisan serve"},
}

// writeSetup lists install and run commands for the managers whose
// manifests were found, in order of first appearance.
func writeSetup(b *strings.Builder, res *analysis.Result, url, name string) {
	var managers []string
	seen := map[string]bool{}
	for _, m := range res.Manifests {
		mgr := deps.ManagerFor(m)
		if mgr != "" && !seen[mgr] {
			seen[mgr] = true
			managers = append(managers, mgr)
		}
	}

	b.WriteString("```bash\n")
	if url != "" {
		fmt.Fprintf(b, "git clone %s\ncd %s\n", url, name)
	}
	if len(managers) == 0 {
		b.WriteString("# No package manifest detected\n")
	}
	for _, mgr := range managers {
		fmt.Fprintf(b, "%s  # %s\n", installHints[mgr][0], mgr)
	}
	for _, mgr := range managers {
		fmt.Fprintf(b, "%s  # %s\n", installHints[mgr][1], mgr)
	}
	b.WriteString("```\n")
}

func buildTechnologyReport(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	b.WriteString("# Technology Stack Analysis\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "Technologies, frameworks and tools detected in %s.\n\n", meta.name())
	fmt.Fprintf(&b, "Confidence levels: 🟢 high (≥ %.2f), 🟡 medium (≥ %.2f), 🔴 low.\n\n",
		detect.HighThreshold, detect.MediumThreshold)

	b.WriteString("## Detected Technologies\n")
	groups := detect.ByCategory(res.Detections)
	for _, cat := range signature.Categories {
		fmt.Fprintf(&b, "\n### %s\n\n", signature.CategoryTitles[cat])
		dets := groups[cat]
		if len(dets) == 0 {
			b.WriteString(NoTechnologies + "\n")
			continue
		}
		for _, d := range dets {
			fmt.Fprintf(&b, "- **%s** %s (Confidence: %.2f)\n", d.Name, detect.Bucket(d.Confidence).Indicator(), d.Confidence)
			fmt.Fprintf(&b, "  - Evidence: %s\n", evidence(d.Files))
		}
	}

	b.WriteString("\n## Technology Distribution\n\n")
	fmt.Fprintf(&b, "Total technologies detected: %d\n\n", len(res.Detections))
	b.WriteString("| Category | Technologies |\n|---|---|\n")
	for _, cat := range signature.Categories {
		fmt.Fprintf(&b, "| %s | %d |\n", signature.CategoryTitles[cat], len(groups[cat]))
	}

	return Document{Path: TechnologyPath, Title: "Technology Stack Analysis", Content: b.String()}
}

// maxEvidence bounds the file list printed per detection.
const maxEvidence = 5

func evidence(files []string) string {
	quoted := make([]string, 0, maxEvidence)
	for i, f := range files {
		if i == maxEvidence {
			break
		}
		quoted = append(quoted, "`"+f+"`")
	}
	s := strings.Join(quoted, ", ")
	if extra := len(files) - maxEvidence; extra > 0 {
		s += fmt.Sprintf(" and %d more", extra)
	}
	return s
}

func buildDependencyReport(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	total, prod, dev := deps.Counts(res.Dependencies)

	b.WriteString("# Dependency Analysis\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "Declared dependencies of %s, read from %d manifest file(s).\n\n", meta.name(), len(res.Manifests))
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Dependencies:** %d\n", total)
	fmt.Fprintf(&b, "- **Production Dependencies:** %d\n", prod)
	fmt.Fprintf(&b, "- **Development Dependencies:** %d\n", dev)

	b.WriteString("\n## Dependencies by Package Manager\n")
	if total == 0 {
		b.WriteString("\nNo dependencies detected.\n")
	}

	var managers []string
	byManager := map[string][]deps.Dependency{}
	for _, d := range res.Dependencies {
		if _, ok := byManager[d.Manager]; !ok {
			managers = append(managers, d.Manager)
		}
		byManager[d.Manager] = append(byManager[d.Manager], d)
	}
	for _, mgr := range managers {
		fmt.Fprintf(&b, "\n### %s\n", strings.ToUpper(mgr))
		for _, kind := range []deps.Kind{deps.Production, deps.Development} {
			var list []deps.Dependency
			for _, d := range byManager[mgr] {
				if d.Kind == kind {
					list = append(list, d)
				}
			}
			if len(list) == 0 {
				continue
			}
			sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })

			title := "Production"
			if kind == deps.Development {
				title = "Development"
			}
			fmt.Fprintf(&b, "\n#### %s Dependencies (%d)\n\n", title, len(list))
			b.WriteString("| Name | Version | Constraint | Source |\n|---|---|---|---|\n")
			for _, d := range list {
				fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n", cell(d.Name), cell(d.Version), d.Constraint, cell(d.Source))
			}
		}
	}

	b.WriteString("\n## Warnings\n\n")
	if len(res.Warnings) == 0 {
		b.WriteString("All manifests parsed successfully.\n")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "- ⚠️ `%s`: %s\n", w.File, w.Message)
	}

	return Document{Path: DependencyPath, Title: "Dependency Analysis", Content: b.String()}
}

func buildArchitectureReport(res *analysis.Result, meta Meta) Document {
	var b strings.Builder
	st := res.Structure

	b.WriteString("# Architecture Documentation\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "Structural analysis of %s.\n\n", meta.name())

	b.WriteString("## Project Structure\n\n")
	if len(st.Directories) == 0 {
		b.WriteString("All files are at the repository root.\n")
	} else {
		b.WriteString("| Directory | Files | Lines | Languages |\n|---|---|---|---|\n")
		for _, d := range st.Directories {
			fmt.Fprintf(&b, "| %s/ | %d | %s | %s |\n", cell(d.Path), d.Files, thousands(d.Lines), strings.Join(d.Languages, ", "))
		}
	}

	b.WriteString("\n## Language Distribution\n\n")
	if len(res.Summary.Languages) == 0 {
		b.WriteString("No files analyzed.\n")
	} else {
		b.WriteString("| Language | Files | Lines |\n|---|---|---|\n")
		for _, l := range res.Summary.Languages {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", l.Language, l.Files, thousands(l.Lines))
		}
	}

	b.WriteString("\n## Key Components\n\n")
	if len(st.KeyFiles) == 0 {
		b.WriteString("No key components identified.\n")
	}
	for _, f := range st.KeyFiles {
		fmt.Fprintf(&b, "- **%s**: %s (%d lines)\n", f.Path, f.Language, f.Lines)
	}

	if len(st.ComponentEdges) > 0 {
		b.WriteString("\n## Component Dependencies\n\n")
		for _, e := range st.ComponentEdges {
			fmt.Fprintf(&b, "- %s → %s\n", e.From, e.To)
		}
	}

	b.WriteString("\n## Analysis Coverage\n\n")
	fmt.Fprintf(&b, "- **Files analyzed:** %d\n", res.Summary.Files)
	fmt.Fprintf(&b, "- **Binary files:** %d\n", res.Summary.Binary)
	fmt.Fprintf(&b, "- **Unreadable files:** %d\n", res.Summary.Skipped)

	return Document{Path: ArchitecturePath, Title: "Architecture Documentation", Content: b.String()}
}

func buildSummaryPage(meta Meta) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "# AI Summary of %s\n\n", meta.name())
	b.WriteString(strings.TrimSpace(meta.Summary))
	b.WriteString("\n")
	return Document{Path: SummaryPath, Title: "AI Summary", Content: b.String()}
}
