package source

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/denormal/go-gitignore"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/deps"
)

// Filter decides which entries reach the classifier. Excluded directories,
// .gitignore rules and globs apply to every entry. Manifests are exempt from
// the extension, size and count limits so dependency data is never lost to
// them.
type Filter struct {
	dirs     map[string]bool
	exts     map[string]bool
	globs    []string
	maxSize  int64
	maxFiles int
	ignore   gitignore.GitIgnore
}

// NewFilter builds a Filter from the scan configuration. Invalid globs are
// an error.
func NewFilter(cfg config.ScanConfig) (*Filter, error) {
	f := &Filter{
		dirs:     make(map[string]bool, len(cfg.ExcludeDirs)),
		exts:     make(map[string]bool, len(cfg.ExcludeExtensions)),
		maxSize:  cfg.MaxFileSize,
		maxFiles: cfg.MaxFiles,
	}
	for _, d := range cfg.ExcludeDirs {
		f.dirs[strings.Trim(d, "/")] = true
	}
	for _, e := range cfg.ExcludeExtensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		f.exts[e] = true
	}
	for _, g := range cfg.ExcludeGlobs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid exclude glob %q", g)
		}
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// WithGitignore adds the rules of a root .gitignore file.
func (f *Filter) WithGitignore(content []byte) *Filter {
	f.ignore = gitignore.New(bytes.NewReader(content), "/", nil)
	return f
}

// Excluded reports whether p is dropped by directory, gitignore or glob rules.
func (f *Filter) Excluded(p string) bool {
	dirs := strings.Split(p, "/")
	dirs = dirs[:len(dirs)-1]
	for _, d := range dirs {
		if f.dirs[d] {
			return true
		}
	}

	if f.ignore != nil {
		// Rules such as "build/" match the directory, not the files below it.
		for i := range dirs {
			if ignored(f.ignore, strings.Join(dirs[:i+1], "/"), true) {
				return true
			}
		}
		if ignored(f.ignore, p, false) {
			return true
		}
	}

	base := path.Base(p)
	for _, g := range f.globs {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func ignored(ig gitignore.GitIgnore, rel string, isDir bool) bool {
	m := ig.Relative(rel, isDir)
	return m != nil && m.Ignore()
}

// Apply returns the kept entries sorted by path. Entries over the size limit
// and entries past the file cap are dropped unless they are manifests.
func (f *Filter) Apply(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var kept []Entry
	files := 0
	for _, e := range sorted {
		if f.Excluded(e.Path) {
			continue
		}
		if deps.IsManifest(e.Path) {
			kept = append(kept, e)
			continue
		}
		if f.exts[strings.ToLower(path.Ext(e.Path))] {
			continue
		}
		if f.maxSize > 0 && e.Size > f.maxSize {
			continue
		}
		if f.maxFiles > 0 && files >= f.maxFiles {
			continue
		}
		files++
		kept = append(kept, e)
	}
	return kept
}

// LimitLoader wraps load so that contents larger than max fail to load.
// Remote listings without sizes rely on it to enforce the size limit.
func LimitLoader(p string, max int64, load func() ([]byte, error)) func() ([]byte, error) {
	if max <= 0 {
		return load
	}
	return func() ([]byte, error) {
		data, err := load()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > max {
			return nil, fmt.Errorf("%s: %d bytes exceeds max file size %d", p, len(data), max)
		}
		return data, nil
	}
}

// UseGitignore loads the root .gitignore among entries, if any, and adds its
// rules. It reports whether one was found.
func (f *Filter) UseGitignore(entries []Entry) (bool, error) {
	for _, e := range entries {
		if e.Path != ".gitignore" {
			continue
		}
		data, err := e.Load()
		if err != nil {
			return false, fmt.Errorf("reading .gitignore: %w", err)
		}
		f.WithGitignore(data)
		return true, nil
	}
	return false, nil
}
