package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xanzy/go-gitlab"
	"golang.org/x/time/rate"
)

// GitLabOptions configures a GitLab source.
type GitLabOptions struct {
	Token      string
	RateLimit  int // requests per second, 0 for unlimited
	HTTPClient *http.Client
}

// GitLabSource lists a project through the GitLab REST API. The tree
// listing has no sizes, so the size limit is enforced when files load.
type GitLabSource struct {
	ref      RepoURL
	pid      string
	client   *gitlab.Client
	throttle *throttle
}

// NewGitLab creates a GitLab source for ref.
func NewGitLab(ref RepoURL, opts GitLabOptions) (*GitLabSource, error) {
	clientOpts := []gitlab.ClientOptionFunc{
		gitlab.WithBaseURL(strings.TrimSuffix(ref.BaseURL, "/") + "/api/v4"),
		// Pacing and retries are handled by the throttle.
		gitlab.WithCustomLimiter(rate.NewLimiter(rate.Inf, 0)),
		gitlab.WithCustomRetryMax(0),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(opts.HTTPClient))
	}
	client, err := gitlab.NewClient(opts.Token, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLabSource{
		ref:      ref,
		pid:      ref.FullName(),
		client:   client,
		throttle: newThrottle(opts.RateLimit, gitlabRetryable),
	}, nil
}

func gitlabRetryable(err error) bool {
	var er *gitlab.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		code := er.Response.StatusCode
		return code >= 500 || code == http.StatusTooManyRequests
	}
	return false
}

// Info fetches project metadata and resolves the default branch when no ref
// was given.
func (s *GitLabSource) Info(ctx context.Context) (RepoInfo, error) {
	var p *gitlab.Project
	err := s.throttle.do(ctx, func(ctx context.Context) error {
		var err error
		p, _, err = s.client.Projects.GetProject(s.pid, &gitlab.GetProjectOptions{}, gitlab.WithContext(ctx))
		return err
	})
	if err != nil {
		return RepoInfo{}, fmt.Errorf("fetching project %s: %w", s.pid, err)
	}
	if s.ref.Ref == "" {
		s.ref.Ref = p.DefaultBranch
	}
	info := RepoInfo{
		Name:          p.Name,
		Description:   p.Description,
		URL:           p.WebURL,
		Stars:         p.StarCount,
		Forks:         p.ForksCount,
		DefaultBranch: p.DefaultBranch,
	}
	if p.LastActivityAt != nil {
		info.UpdatedAt = *p.LastActivityAt
	}
	return info, nil
}

// Entries pages through the recursive tree listing.
func (s *GitLabSource) Entries(ctx context.Context) ([]Entry, error) {
	opts := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}
	if s.ref.Ref != "" {
		opts.Ref = gitlab.Ptr(s.ref.Ref)
	}

	var entries []Entry
	for {
		var nodes []*gitlab.TreeNode
		var resp *gitlab.Response
		err := s.throttle.do(ctx, func(ctx context.Context) error {
			var err error
			nodes, resp, err = s.client.Repositories.ListTree(s.pid, opts, gitlab.WithContext(ctx))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing tree of %s: %w", s.pid, err)
		}
		for _, n := range nodes {
			if n.Type != "blob" {
				continue
			}
			p := n.Path
			entries = append(entries, Entry{
				Path: p,
				Size: -1,
				Load: func() ([]byte, error) { return s.file(ctx, p) },
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return entries, nil
}

func (s *GitLabSource) file(ctx context.Context, p string) ([]byte, error) {
	opts := &gitlab.GetRawFileOptions{}
	if s.ref.Ref != "" {
		opts.Ref = gitlab.Ptr(s.ref.Ref)
	}
	var data []byte
	err := s.throttle.do(ctx, func(ctx context.Context) error {
		var err error
		data, _, err = s.client.RepositoryFiles.GetRawFile(s.pid, p, opts, gitlab.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", p, err)
	}
	return data, nil
}
