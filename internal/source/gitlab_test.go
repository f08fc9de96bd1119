package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitLabServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v4/projects/acme/platform/widgets":
			fmt.Fprint(w, `{
				"id": 7,
				"name": "widgets",
				"description": "Widget service",
				"web_url": "https://gitlab.example/acme/platform/widgets",
				"star_count": 3,
				"forks_count": 1,
				"last_activity_at": "2024-06-02T08:30:00Z",
				"default_branch": "main"
			}`)
		case "/api/v4/projects/acme/platform/widgets/repository/tree":
			assert.Equal(t, "true", r.URL.Query().Get("recursive"))
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `[{"id":"c","name":"app.py","type":"blob","path":"src/app.py","mode":"100644"}]`)
				return
			}
			w.Header().Set("X-Next-Page", "2")
			fmt.Fprint(w, `[
				{"id":"a","name":"src","type":"tree","path":"src","mode":"040000"},
				{"id":"b","name":"requirements.txt","type":"blob","path":"requirements.txt","mode":"100644"}
			]`)
		case "/api/v4/projects/acme/platform/widgets/repository/files/src/app.py/raw":
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "import flask\n")
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"404 Not Found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGitLabInfoAndEntries(t *testing.T) {
	srv := newGitLabServer(t)
	s, err := NewGitLab(RepoURL{Forge: GitLab, BaseURL: srv.URL, Owner: "acme/platform", Repo: "widgets"}, GitLabOptions{Token: "gl-token"})
	require.NoError(t, err)
	s.throttle.backoff = time.Millisecond
	ctx := context.Background()

	info, err := s.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "widgets", info.Name)
	assert.Equal(t, "Widget service", info.Description)
	assert.Equal(t, 3, info.Stars)
	assert.Equal(t, 1, info.Forks)
	assert.Equal(t, "main", info.DefaultBranch)
	assert.Equal(t, time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC), info.UpdatedAt.UTC())

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"requirements.txt", "src/app.py"}, paths(entries))
	assert.Equal(t, int64(-1), entries[1].Size)

	data, err := entries[1].Load()
	require.NoError(t, err)
	assert.Equal(t, "import flask\n", string(data))
}

func TestGitLabMissingFile(t *testing.T) {
	srv := newGitLabServer(t)
	s, err := NewGitLab(RepoURL{Forge: GitLab, BaseURL: srv.URL, Owner: "acme/platform", Repo: "widgets", Ref: "main"}, GitLabOptions{})
	require.NoError(t, err)

	_, err = s.file(context.Background(), "nope.txt")
	assert.ErrorContains(t, err, "nope.txt")
}

func TestGitLabRetryable(t *testing.T) {
	assert.False(t, gitlabRetryable(fmt.Errorf("plain")))
}
