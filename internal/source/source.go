// Package source lists the files of a repository and provides lazy loaders
// for their contents. A local checkout, a GitHub repository and a GitLab
// project are supported.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/julianshen/docgenie/internal/classify"
	"github.com/julianshen/docgenie/internal/config"
)

// Entry is one file of a repository. Load reads its contents on demand.
type Entry struct {
	Path string // slash-separated, relative to the repository root
	Size int64  // -1 when the listing does not report sizes
	Load classify.Loader
}

// RepoInfo carries repository metadata used only for rendering.
type RepoInfo struct {
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	URL           string    `json:"url,omitempty"`
	Language      string    `json:"language,omitempty"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
	DefaultBranch string    `json:"default_branch,omitempty"`
}

// Source lists the entries of one repository.
type Source interface {
	Info(ctx context.Context) (RepoInfo, error)
	Entries(ctx context.Context) ([]Entry, error)
}

// Forge identifies a hosted git service.
type Forge string

const (
	GitHub Forge = "github"
	GitLab Forge = "gitlab"
)

// ErrUnsupportedURL is returned for URLs that name neither a GitHub
// repository nor a project on the configured GitLab host.
var ErrUnsupportedURL = errors.New("unsupported repository URL")

// RepoURL is a parsed forge repository reference.
type RepoURL struct {
	Forge   Forge
	BaseURL string // scheme and host, e.g. https://gitlab.com
	Owner   string // GitHub owner, or the GitLab namespace path
	Repo    string
	Ref     string // empty means the default branch
}

// FullName returns "owner/repo".
func (u RepoURL) FullName() string {
	return u.Owner + "/" + u.Repo
}

// IsRemote reports whether target looks like a URL rather than a local path.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://")
}

// ParseRepoURL parses a GitHub or GitLab repository URL. gitlabBase is the
// configured GitLab base URL; gitlab.com is always recognized.
//
//	https://github.com/<owner>/<repo>[.git][/tree/<ref>]
//	<gitlab>/<group>[/<subgroup>...]/<project>[.git][/-/tree/<ref>]
func ParseRepoURL(raw, gitlabBase string) (RepoURL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RepoURL{}, fmt.Errorf("parsing repository URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return RepoURL{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
	base := u.Scheme + "://" + u.Host
	segs := splitPath(u.Path)

	host := strings.ToLower(u.Host)
	switch {
	case host == "github.com" || host == "www.github.com":
		if len(segs) < 2 {
			return RepoURL{}, fmt.Errorf("%w: %q needs owner and repository", ErrUnsupportedURL, raw)
		}
		ref := ""
		if len(segs) > 3 && segs[2] == "tree" {
			ref = strings.Join(segs[3:], "/")
		}
		return RepoURL{
			Forge:   GitHub,
			BaseURL: "https://github.com",
			Owner:   segs[0],
			Repo:    strings.TrimSuffix(segs[1], ".git"),
			Ref:     ref,
		}, nil

	case host == "gitlab.com" || sameHost(host, gitlabBase):
		ref := ""
		for i, s := range segs {
			if s == "-" {
				if i+2 < len(segs) && segs[i+1] == "tree" {
					ref = strings.Join(segs[i+2:], "/")
				}
				segs = segs[:i]
				break
			}
		}
		if len(segs) < 2 {
			return RepoURL{}, fmt.Errorf("%w: %q needs namespace and project", ErrUnsupportedURL, raw)
		}
		last := len(segs) - 1
		return RepoURL{
			Forge:   GitLab,
			BaseURL: base,
			Owner:   strings.Join(segs[:last], "/"),
			Repo:    strings.TrimSuffix(segs[last], ".git"),
			Ref:     ref,
		}, nil
	}
	return RepoURL{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func sameHost(host, base string) bool {
	if base == "" {
		return false
	}
	u, err := url.Parse(base)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// Open returns the Source for target: a local directory, or a GitHub or
// GitLab URL. Forge tokens are resolved from the configuration.
func Open(target string, cfg *config.Config) (Source, error) {
	if !IsRemote(target) {
		return NewLocal(target), nil
	}

	ref, err := ParseRepoURL(target, cfg.GitLab.BaseURL)
	if err != nil {
		return nil, err
	}
	switch ref.Forge {
	case GitHub:
		token, err := config.ResolveToken(cfg.GitHub, "GITHUB_TOKEN")
		if err != nil {
			return nil, fmt.Errorf("resolving GitHub token: %w", err)
		}
		if ref.Ref == "" {
			ref.Ref = cfg.GitHub.Ref
		}
		return NewGitHub(ref, GitHubOptions{
			Token:     token,
			BaseURL:   cfg.GitHub.BaseURL,
			RateLimit: cfg.GitHub.RateLimit,
		})
	default:
		token, err := config.ResolveToken(cfg.GitLab, "GITLAB_TOKEN")
		if err != nil {
			return nil, fmt.Errorf("resolving GitLab token: %w", err)
		}
		if ref.Ref == "" {
			ref.Ref = cfg.GitLab.Ref
		}
		return NewGitLab(ref, GitLabOptions{
			Token:     token,
			RateLimit: cfg.GitLab.RateLimit,
		})
	}
}
