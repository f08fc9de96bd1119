package source

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/julianshen/docgenie/internal/integrations"
)

// Local lists files of a directory on disk. Inside a git work tree it uses
// git ls-files, which already honours .gitignore; otherwise it walks the
// directory.
type Local struct {
	dir string
	git *integrations.GitRunner
}

// NewLocal creates a Local source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir, git: integrations.NewGitRunner(dir)}
}

// Info derives metadata from the directory name and, when available, the
// git remote and current branch.
func (l *Local) Info(ctx context.Context) (RepoInfo, error) {
	abs, err := filepath.Abs(l.dir)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("resolving %s: %w", l.dir, err)
	}
	info := RepoInfo{Name: filepath.Base(abs)}
	if remote, err := l.git.RemoteURL(ctx, "origin"); err == nil {
		info.URL = remote
	}
	if branch, err := l.git.CurrentBranch(ctx); err == nil {
		info.DefaultBranch = branch
	}
	if commits, err := l.git.Log(ctx, "-1"); err == nil && len(commits) > 0 {
		info.UpdatedAt = commits[0].Date
	}
	return info, nil
}

// Entries returns every regular file below the root.
func (l *Local) Entries(ctx context.Context) ([]Entry, error) {
	st, err := os.Stat(l.dir)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", l.dir, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", l.dir)
	}

	paths, err := l.git.ListFiles(ctx)
	if err != nil {
		paths, err = walkFiles(l.dir)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]Entry, 0, len(paths))
	for _, rel := range paths {
		abs := filepath.Join(l.dir, filepath.FromSlash(rel))
		fi, err := os.Lstat(abs)
		if err != nil || !fi.Mode().IsRegular() {
			// Deleted but still tracked, or a symlink/submodule.
			continue
		}
		entries = append(entries, Entry{
			Path: filepath.ToSlash(rel),
			Size: fi.Size(),
			Load: func() ([]byte, error) { return os.ReadFile(abs) },
		})
	}
	return entries, nil
}

// walkFiles lists regular files under dir, skipping .git.
func walkFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("WARNING: skipping path %q: %v", p, err)
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return paths, nil
}
