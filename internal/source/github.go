package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/go-github/v68/github"
)

// GitHubOptions configures a GitHub source.
type GitHubOptions struct {
	Token      string
	BaseURL    string // GitHub Enterprise URL; empty means api.github.com
	RateLimit  int    // requests per second, 0 for unlimited
	HTTPClient *http.Client
}

// GitHubSource lists a repository through the GitHub REST API: one recursive
// tree request, then one blob request per loaded file.
type GitHubSource struct {
	ref      RepoURL
	client   *github.Client
	throttle *throttle
}

// NewGitHub creates a GitHub source for ref.
func NewGitHub(ref RepoURL, opts GitHubOptions) (*GitHubSource, error) {
	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github base URL: %w", err)
		}
	}
	return &GitHubSource{
		ref:      ref,
		client:   client,
		throttle: newThrottle(opts.RateLimit, githubRetryable),
	}, nil
}

// githubRetryable reports whether err is a rate limit or server error.
func githubRetryable(err error) bool {
	var rle *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &abuse) {
		return true
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode >= 500
	}
	return false
}

// Info fetches repository metadata. It also resolves the default branch
// when no ref was given.
func (s *GitHubSource) Info(ctx context.Context) (RepoInfo, error) {
	var repo *github.Repository
	err := s.throttle.do(ctx, func(ctx context.Context) error {
		var err error
		repo, _, err = s.client.Repositories.Get(ctx, s.ref.Owner, s.ref.Repo)
		return err
	})
	if err != nil {
		return RepoInfo{}, fmt.Errorf("fetching repository %s: %w", s.ref.FullName(), err)
	}
	if s.ref.Ref == "" {
		s.ref.Ref = repo.GetDefaultBranch()
	}
	return RepoInfo{
		Name:          repo.GetName(),
		Description:   repo.GetDescription(),
		URL:           repo.GetHTMLURL(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		UpdatedAt:     repo.GetUpdatedAt().Time,
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// Entries lists every blob of the tree at the configured ref.
func (s *GitHubSource) Entries(ctx context.Context) ([]Entry, error) {
	ref := s.ref.Ref
	if ref == "" {
		ref = "HEAD"
	}

	var tree *github.Tree
	err := s.throttle.do(ctx, func(ctx context.Context) error {
		var err error
		tree, _, err = s.client.Git.GetTree(ctx, s.ref.Owner, s.ref.Repo, ref, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing tree of %s@%s: %w", s.ref.FullName(), ref, err)
	}
	if tree.GetTruncated() {
		log.Printf("WARNING: tree of %s is truncated by the API; some files are not analyzed", s.ref.FullName())
	}

	var entries []Entry
	for _, te := range tree.Entries {
		if te.GetType() != "blob" {
			continue
		}
		sha := te.GetSHA()
		entries = append(entries, Entry{
			Path: te.GetPath(),
			Size: int64(te.GetSize()),
			Load: func() ([]byte, error) { return s.blob(ctx, sha) },
		})
	}
	return entries, nil
}

func (s *GitHubSource) blob(ctx context.Context, sha string) ([]byte, error) {
	var data []byte
	err := s.throttle.do(ctx, func(ctx context.Context) error {
		var err error
		data, _, err = s.client.Git.GetBlobRaw(ctx, s.ref.Owner, s.ref.Repo, sha)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", sha, err)
	}
	return data, nil
}
