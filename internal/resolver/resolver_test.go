package resolver

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// fakeLister serves scripted refs snapshots keyed by candidate URL. Unknown
// candidates answer ErrNotRepository; errs overrides per URL.
type fakeLister struct {
	repos map[string]*domain.RefsSnapshot
	errs  map[string]error
	calls []string
}

func (f *fakeLister) ListRefs(_ context.Context, repoURL string) (*domain.RefsSnapshot, error) {
	f.calls = append(f.calls, repoURL)
	if err, ok := f.errs[repoURL]; ok {
		return nil, err
	}
	if snap, ok := f.repos[repoURL]; ok {
		return snap, nil
	}
	return nil, domain.ErrNotRepository
}

// forbiddenLister fails the test when any listing happens.
type forbiddenLister struct{ t *testing.T }

func (f *forbiddenLister) ListRefs(_ context.Context, repoURL string) (*domain.RefsSnapshot, error) {
	f.t.Errorf("unexpected refs listing for %s", repoURL)
	return nil, domain.ErrNotRepository
}

type fakeHead struct {
	headers http.Header
	err     error
	calls   []string
}

func (f *fakeHead) Head(_ context.Context, url string) (http.Header, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.headers, nil
}

// forbiddenHead fails the test when any HEAD request happens.
type forbiddenHead struct{ t *testing.T }

func (f *forbiddenHead) Head(_ context.Context, url string) (http.Header, error) {
	f.t.Errorf("unexpected HEAD request for %s", url)
	return nil, domain.ErrNotRepository
}

func snapshot(refs ...domain.Ref) *domain.RefsSnapshot {
	return &domain.RefsSnapshot{Refs: refs}
}

func githubHeaders() http.Header {
	return http.Header{
		"Set-Cookie": {"logged_in=no; domain=.github.com; path=/; secure"},
	}
}

func gitlabHeaders() http.Header {
	return http.Header{
		"Set-Cookie": {"_gitlab_session=abc123; path=/; httponly"},
	}
}

func newTestGuesser(lister domain.RefsLister, head domain.HeadProber) *Guesser {
	return NewGuesser(GuesserOptions{
		Lister: lister,
		Head:   head,
		Logger: utils.NewLogger(utils.LoggerOptions{Level: "error", Format: "json", Output: io.Discard}),
	})
}

func TestResolveExplicitGitReferences(t *testing.T) {
	t.Parallel()

	const subdir = "workflow_examples/ipc/cosifer_test1_cwl.wfex.stage"

	tests := []struct {
		name     string
		url      string
		expected *domain.RemoteRepo
	}{
		{
			name: "https clone URL",
			url:  "https://github.com/inab/WfExS-backend.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "https://github.com/inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "git+https clone URL",
			url:  "git+https://github.com/inab/WfExS-backend.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "https://github.com/inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "https clone URL with tag",
			url:  "https://github.com/inab/WfExS-backend.git@0.1.2",
			expected: &domain.RemoteRepo{
				RepoURL:  "https://github.com/inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
				Tag:      "0.1.2",
			},
		},
		{
			name: "https clone URL with subdirectory",
			url:  "https://github.com/inab/WfExS-backend.git#subdirectory=" + subdir,
			expected: &domain.RemoteRepo{
				RepoURL:  "https://github.com/inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
				RelPath:  subdir,
			},
		},
		{
			name: "ssh shorthand",
			url:  "ssh://git@github.com:inab/WfExS-backend.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "git@github.com:inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "git+ssh shorthand",
			url:  "git+ssh://git@github.com:inab/WfExS-backend.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "git@github.com:inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "ssh shorthand with tag",
			url:  "ssh://git@github.com:inab/WfExS-backend.git@0.1.2",
			expected: &domain.RemoteRepo{
				RepoURL:  "git@github.com:inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
				Tag:      "0.1.2",
			},
		},
		{
			name: "ssh shorthand with subdirectory",
			url:  "ssh://git@github.com:inab/WfExS-backend.git#subdirectory=" + subdir,
			expected: &domain.RemoteRepo{
				RepoURL:  "git@github.com:inab/WfExS-backend.git",
				RepoType: domain.RepoTypeGit,
				RelPath:  subdir,
			},
		},
		{
			name: "file URL",
			url:  "file:///inab/WfExS-backend/.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "file:///inab/WfExS-backend/.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "git+file URL",
			url:  "git+file:///inab/WfExS-backend/.git",
			expected: &domain.RemoteRepo{
				RepoURL:  "file:///inab/WfExS-backend/.git",
				RepoType: domain.RepoTypeGit,
			},
		},
		{
			name: "file URL with tag",
			url:  "file:///inab/WfExS-backend/.git@0.1.2",
			expected: &domain.RemoteRepo{
				RepoURL:  "file:///inab/WfExS-backend/.git",
				RepoType: domain.RepoTypeGit,
				Tag:      "0.1.2",
			},
		},
		{
			name: "file URL with subdirectory",
			url:  "file:///inab/WfExS-backend/.git#subdirectory=" + subdir,
			expected: &domain.RemoteRepo{
				RepoURL:  "file:///inab/WfExS-backend/.git",
				RepoType: domain.RepoTypeGit,
				RelPath:  subdir,
			},
		},
		{
			name:     "scheme-less URL",
			url:      "github.com/inab/WfExS-backend.git",
			expected: nil,
		},
		{
			name:     "scp-style shorthand",
			url:      "git@github.com:inab/WfExS-backend.git",
			expected: nil,
		},
		{
			name:     "git-addressed without marker",
			url:      "git+https://github.com/inab/WfExS-backend",
			expected: nil,
		},
		{
			name:     "ssh without marker",
			url:      "ssh://git@github.com:inab/WfExS-backend",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Git-addressed references resolve without any network I/O.
			g := newTestGuesser(&forbiddenLister{t}, &forbiddenHead{t})

			repo, err := g.Resolve(context.Background(), tt.url, domain.DefaultResolveOptions())
			require.NoError(t, err)

			if tt.expected == nil {
				assert.Nil(t, repo)
				return
			}
			require.NotNil(t, repo)
			assert.Equal(t, tt.expected.RepoURL, repo.RepoURL)
			assert.Equal(t, tt.expected.Tag, repo.Tag)
			assert.Equal(t, tt.expected.RelPath, repo.RelPath)
			assert.Equal(t, tt.expected.RepoType, repo.RepoType)
		})
	}
}

func TestResolveGitHubBrowseURLs(t *testing.T) {
	t.Parallel()

	refs := snapshot(
		domain.Ref{Name: "HEAD", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/main", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/feature/x", Target: "bbb222"},
	)

	tests := []struct {
		name    string
		url     string
		tag     string
		relPath string
		webURL  string
	}{
		{
			name:   "bare repository page",
			url:    "https://github.com/inab/WfExS-backend",
			tag:    "main",
			webURL: "https://github.com/inab/WfExS-backend/tree/main",
		},
		{
			name:    "blob URL",
			url:     "https://github.com/inab/WfExS-backend/blob/main/README.md",
			tag:     "main",
			relPath: "README.md",
			webURL:  "https://github.com/inab/WfExS-backend/tree/main/README.md",
		},
		{
			name:    "tree URL on slashed branch",
			url:     "https://github.com/inab/WfExS-backend/tree/feature/x/docs",
			tag:     "feature/x",
			relPath: "docs",
			webURL:  "https://github.com/inab/WfExS-backend/tree/feature/x/docs",
		},
		{
			name: "extra segments without browse marker",
			url:  "https://github.com/inab/WfExS-backend/releases",
			// No blob/tree convention, so the default branch stands.
			tag:    "main",
			webURL: "https://github.com/inab/WfExS-backend/tree/main",
		},
		{
			name:   "browse marker without ref",
			url:    "https://github.com/inab/WfExS-backend/blob",
			tag:    "main",
			webURL: "https://github.com/inab/WfExS-backend/tree/main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
				"https://github.com/inab/WfExS-backend": refs,
			}}
			g := newTestGuesser(lister, &fakeHead{headers: githubHeaders()})

			repo, err := g.Resolve(context.Background(), tt.url, domain.DefaultResolveOptions())
			require.NoError(t, err)
			require.NotNil(t, repo)

			assert.Equal(t, "https://github.com/inab/WfExS-backend", repo.RepoURL)
			assert.Equal(t, domain.RepoTypeGitHub, repo.RepoType)
			assert.Equal(t, tt.tag, repo.Tag)
			assert.Equal(t, tt.relPath, repo.RelPath)
			assert.Equal(t, tt.webURL, repo.WebURL)
		})
	}

	t.Run("probe failure with fail-open", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{})

		// Unlike the shorthand forms there is nothing trustworthy to
		// construct from an arbitrary github.com path, so fail-open
		// yields no coordinates at all.
		opts := domain.DefaultResolveOptions()
		opts.FailOK = true
		repo, err := g.Resolve(context.Background(), "https://github.com/inab/does-not-exist", opts)
		require.NoError(t, err)
		assert.Nil(t, repo)
	})
}

func TestResolveGitHubShorthand(t *testing.T) {
	t.Parallel()

	refs := snapshot(
		domain.Ref{Name: "HEAD", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/main", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/feature/x", Target: "bbb222"},
	)

	t.Run("bare owner and repository", func(t *testing.T) {
		lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
			"https://github.com/inab/WfExS-backend": refs,
		}}
		g := newTestGuesser(lister, &fakeHead{headers: githubHeaders()})

		repo, err := g.Resolve(context.Background(), "github:inab/WfExS-backend", domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://github.com/inab/WfExS-backend", repo.RepoURL)
		assert.Equal(t, domain.RepoTypeGitHub, repo.RepoType)
		assert.Equal(t, "main", repo.Tag)
		assert.Empty(t, repo.RelPath)
	})

	t.Run("segments after repository", func(t *testing.T) {
		lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
			"https://github.com/inab/WfExS-backend": refs,
		}}
		g := newTestGuesser(lister, &fakeHead{headers: githubHeaders()})

		repo, err := g.Resolve(context.Background(), "github:inab/WfExS-backend/feature/x/file.txt", domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://github.com/inab/WfExS-backend", repo.RepoURL)
		assert.Equal(t, "feature/x", repo.Tag)
		assert.Equal(t, "file.txt", repo.RelPath)
	})

	t.Run("probe failure with fail-open", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{headers: githubHeaders()})

		opts := domain.DefaultResolveOptions()
		opts.FailOK = true
		repo, err := g.Resolve(context.Background(), "github:inab/WfExS-backend/v2.0/data/out.csv", opts)
		require.NoError(t, err)
		require.NotNil(t, repo)

		// The constructed coordinates survive; the tag falls back to the
		// first remaining segment.
		assert.Equal(t, "https://github.com/inab/WfExS-backend", repo.RepoURL)
		assert.Equal(t, domain.RepoTypeGitHub, repo.RepoType)
		assert.Equal(t, "v2.0", repo.Tag)
		assert.Equal(t, "data/out.csv", repo.RelPath)
	})

	t.Run("probe failure without fail-open", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{headers: githubHeaders()})

		repo, err := g.Resolve(context.Background(), "github:inab/WfExS-backend", domain.DefaultResolveOptions())
		require.Error(t, err)
		assert.Nil(t, repo)
		assert.ErrorIs(t, err, domain.ErrRepoNotIdentified)
	})
}

func TestResolveRawContentURLs(t *testing.T) {
	t.Parallel()

	refs := snapshot(
		domain.Ref{Name: "HEAD", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/main", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/feature/x", Target: "bbb222"},
	)

	newListerGuesser := func() *Guesser {
		lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
			"https://github.com/inab/WfExS-backend.git": refs,
		}}
		return newTestGuesser(lister, &fakeHead{headers: githubHeaders()})
	}

	t.Run("file on branch", func(t *testing.T) {
		g := newListerGuesser()

		repo, err := g.Resolve(context.Background(),
			"https://raw.githubusercontent.com/inab/WfExS-backend/main/workflow_examples/somefile.cwl",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://github.com/inab/WfExS-backend.git", repo.RepoURL)
		assert.Equal(t, domain.RepoTypeGitHub, repo.RepoType)
		assert.Equal(t, "main", repo.Tag)
		assert.Equal(t, "workflow_examples/somefile.cwl", repo.RelPath)
		assert.Equal(t, "https://github.com/inab/WfExS-backend/tree/main/workflow_examples/somefile.cwl", repo.WebURL)
	})

	t.Run("percent-encoded branch segment", func(t *testing.T) {
		g := newListerGuesser()

		repo, err := g.Resolve(context.Background(),
			"https://raw.githubusercontent.com/inab/WfExS-backend/feature%2Fx/file.txt",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "feature/x", repo.Tag)
		assert.Equal(t, "file.txt", repo.RelPath)
	})

	t.Run("branch only", func(t *testing.T) {
		g := newListerGuesser()

		repo, err := g.Resolve(context.Background(),
			"https://raw.githubusercontent.com/inab/WfExS-backend/main",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "main", repo.Tag)
		assert.Empty(t, repo.RelPath)
	})

	t.Run("owner without repository", func(t *testing.T) {
		g := newTestGuesser(&forbiddenLister{t}, &forbiddenHead{t})

		repo, err := g.Resolve(context.Background(),
			"https://raw.githubusercontent.com/inab",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("probe failure with fail-open", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{headers: githubHeaders()})

		opts := domain.DefaultResolveOptions()
		opts.FailOK = true
		repo, err := g.Resolve(context.Background(),
			"https://raw.githubusercontent.com/inab/WfExS-backend/v1.0/w.cwl", opts)
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://github.com/inab/WfExS-backend.git", repo.RepoURL)
		assert.Equal(t, domain.RepoTypeGitHub, repo.RepoType)
		assert.Equal(t, "v1.0", repo.Tag)
		assert.Equal(t, "w.cwl", repo.RelPath)
	})
}

func TestResolveGenericHosts(t *testing.T) {
	t.Parallel()

	refs := snapshot(
		domain.Ref{Name: "HEAD", Target: "ccc333"},
		domain.Ref{Name: "refs/heads/main", Target: "ccc333"},
	)

	t.Run("repository with trailing path", func(t *testing.T) {
		lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
			"https://gitlab.bsc.es/inb/ipc-workflows": refs,
		}}
		g := newTestGuesser(lister, &fakeHead{headers: gitlabHeaders()})

		repo, err := g.Resolve(context.Background(),
			"https://gitlab.bsc.es/inb/ipc-workflows/main/cosifer/cosifer.cwl",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://gitlab.bsc.es/inb/ipc-workflows", repo.RepoURL)
		assert.Equal(t, domain.RepoTypeGitLab, repo.RepoType)
		assert.Equal(t, "main", repo.Tag)
		assert.Equal(t, "cosifer/cosifer.cwl", repo.RelPath)
		assert.Empty(t, repo.WebURL)
	})

	t.Run("bare repository root", func(t *testing.T) {
		lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
			"https://gitlab.bsc.es/inb/ipc-workflows": refs,
		}}
		g := newTestGuesser(lister, &fakeHead{headers: gitlabHeaders()})

		repo, err := g.Resolve(context.Background(),
			"https://gitlab.bsc.es/inb/ipc-workflows",
			domain.DefaultResolveOptions())
		require.NoError(t, err)
		require.NotNil(t, repo)

		assert.Equal(t, "https://gitlab.bsc.es/inb/ipc-workflows", repo.RepoURL)
		assert.Equal(t, "main", repo.Tag)
		assert.Empty(t, repo.RelPath)
	})

	t.Run("probe exhausted is a named failure", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{})

		repo, err := g.Resolve(context.Background(),
			"https://nowhere.example/x/y",
			domain.DefaultResolveOptions())
		require.Error(t, err)
		assert.Nil(t, repo)
		assert.ErrorIs(t, err, domain.ErrRepoNotIdentified)
		assert.EqualError(t, err, "unable to identify https://nowhere.example/x/y as a git repo")
	})

	t.Run("probe exhausted with fail-open", func(t *testing.T) {
		g := newTestGuesser(&fakeLister{}, &fakeHead{})

		opts := domain.DefaultResolveOptions()
		opts.FailOK = true
		repo, err := g.Resolve(context.Background(), "https://nowhere.example/x/y", opts)
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("probing disabled", func(t *testing.T) {
		g := newTestGuesser(&forbiddenLister{t}, &forbiddenHead{t})

		opts := domain.ResolveOptions{AllowProbe: false}
		repo, err := g.Resolve(context.Background(), "https://gitlab.bsc.es/inb/ipc-workflows", opts)
		require.NoError(t, err)
		assert.Nil(t, repo)
	})
}

func TestResolveDefaultBranchMissing(t *testing.T) {
	t.Parallel()

	// HEAD points at no listed branch: detached or empty repository.
	detached := snapshot(
		domain.Ref{Name: "HEAD", Target: "zzz999"},
		domain.Ref{Name: "refs/heads/main", Target: "aaa111"},
	)
	lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
		"https://git.example/a/b": detached,
	}}
	g := newTestGuesser(lister, &fakeHead{})

	repo, err := g.Resolve(context.Background(), "https://git.example/a/b", domain.DefaultResolveOptions())
	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrNoDefaultBranch)
	assert.EqualError(t, err, "no tag was obtained while getting default branch name from https://git.example/a/b")

	// Fail-open never softens a missing default branch.
	opts := domain.DefaultResolveOptions()
	opts.FailOK = true
	repo, err = g.Resolve(context.Background(), "https://git.example/a/b", opts)
	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrNoDefaultBranch)
}

func TestResolveIdempotence(t *testing.T) {
	t.Parallel()

	refs := snapshot(
		domain.Ref{Name: "HEAD", Target: "aaa111"},
		domain.Ref{Name: "refs/heads/main", Target: "aaa111"},
	)
	lister := &fakeLister{repos: map[string]*domain.RefsSnapshot{
		"https://gitlab.bsc.es/inb/ipc-workflows": refs,
	}}
	g := newTestGuesser(lister, &fakeHead{headers: gitlabHeaders()})

	first, err := g.Resolve(context.Background(),
		"https://gitlab.bsc.es/inb/ipc-workflows/main/file.cwl",
		domain.DefaultResolveOptions())
	require.NoError(t, err)
	require.NotNil(t, first)

	// Resolving the canonical repository URL again lands on the same
	// repository, with the default branch as the tag.
	second, err := g.Resolve(context.Background(), first.RepoURL, domain.DefaultResolveOptions())
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.RepoURL, second.RepoURL)
	assert.Equal(t, "main", second.Tag)
	assert.Empty(t, second.RelPath)
}
