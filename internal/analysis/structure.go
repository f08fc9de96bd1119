package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/julianshen/docgenie/internal/classify"
)

// maxKeyFiles bounds the key components list.
const maxKeyFiles = 10

// keyFileWords mark files likely to be entry points or wiring.
var keyFileWords = []string{"main", "app", "server", "client", "api", "config"}

func summarize(files []classify.SourceFile) Summary {
	s := Summary{Files: len(files)}
	stats := map[string]*LanguageStat{}
	for _, f := range files {
		// Unreadable and binary files both land in the Unknown row with
		// zero lines.
		switch {
		case f.Skipped:
			s.Skipped++
		case f.Binary:
			s.Binary++
		}
		s.Lines += f.Lines
		s.Functions += len(f.Functions)
		s.Classes += len(f.Classes)

		st, ok := stats[f.Language]
		if !ok {
			st = &LanguageStat{Language: f.Language}
			stats[f.Language] = st
		}
		st.Files++
		st.Lines += f.Lines
	}

	for _, st := range stats {
		s.Languages = append(s.Languages, *st)
	}
	sort.Slice(s.Languages, func(i, j int) bool {
		a, b := s.Languages[i], s.Languages[j]
		if a.Lines != b.Lines {
			return a.Lines > b.Lines
		}
		if a.Files != b.Files {
			return a.Files > b.Files
		}
		return a.Language < b.Language
	})
	for _, st := range s.Languages {
		if st.Language != classify.Unknown {
			s.PrimaryLanguage = st.Language
			break
		}
	}
	return s
}

// topDir returns the first path segment, or "" for files at the root.
func topDir(p string) string {
	dir, _, ok := strings.Cut(p, "/")
	if !ok {
		return ""
	}
	return dir
}

func structure(files []classify.SourceFile) Structure {
	var st Structure
	dirs := map[string]*DirectoryStat{}
	dirLangs := map[string]map[string]bool{}

	for _, f := range files {
		if d := topDir(f.Path); d != "" {
			ds, ok := dirs[d]
			if !ok {
				ds = &DirectoryStat{Path: d}
				dirs[d] = ds
				dirLangs[d] = map[string]bool{}
			}
			ds.Files++
			ds.Lines += f.Lines
			if f.Language != classify.Unknown {
				dirLangs[d][f.Language] = true
			}
		}

		if isKeyFile(f.Path) && len(st.KeyFiles) < maxKeyFiles && !f.Skipped {
			st.KeyFiles = append(st.KeyFiles, fileInfo(f))
		}
		for _, c := range f.Classes {
			st.Classes = append(st.Classes, ClassRef{Name: c, File: f.Path, Language: f.Language})
		}
	}

	for name, ds := range dirs {
		for lang := range dirLangs[name] {
			ds.Languages = append(ds.Languages, lang)
		}
		sort.Strings(ds.Languages)
		st.Directories = append(st.Directories, *ds)
		st.Components = append(st.Components, name)
	}
	sort.Slice(st.Directories, func(i, j int) bool { return st.Directories[i].Path < st.Directories[j].Path })
	sort.Strings(st.Components)

	st.ComponentEdges = componentEdges(files, dirs)
	return st
}

func isKeyFile(p string) bool {
	name := strings.ToLower(path.Base(p))
	for _, w := range keyFileWords {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// componentEdges links component A to component B when a file under A
// imports a path that names B as one of its segments.
func componentEdges(files []classify.SourceFile, components map[string]*DirectoryStat) []Edge {
	seen := map[Edge]bool{}
	var edges []Edge
	for _, f := range files {
		from := topDir(f.Path)
		if from == "" {
			continue
		}
		for _, imp := range f.Imports {
			for _, seg := range importSegments(imp) {
				if seg == from {
					continue
				}
				if _, ok := components[seg]; !ok {
					continue
				}
				e := Edge{From: from, To: seg}
				if !seen[e] {
					seen[e] = true
					edges = append(edges, e)
				}
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func importSegments(imp string) []string {
	return strings.FieldsFunc(imp, func(r rune) bool {
		return r == '/' || r == '.' || r == ':' || r == '\\'
	})
}

func fileInfo(f classify.SourceFile) FileInfo {
	return FileInfo{
		Path:      f.Path,
		Language:  f.Language,
		Lines:     f.Lines,
		Functions: len(f.Functions),
		Classes:   len(f.Classes),
	}
}

func fileInfos(files []classify.SourceFile) []FileInfo {
	out := make([]FileInfo, len(files))
	for i, f := range files {
		out[i] = fileInfo(f)
	}
	return out
}
