package fetcher

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// GitFetcher materializes git-addressed URLs and delivers the requested
// content, a single file or a whole checkout, to the destination path.
type GitFetcher struct {
	resolver     domain.Resolver
	materializer domain.Materializer
	baseDir      string
	update       bool
	logger       *utils.Logger
}

// GitFetcherOptions contains options for creating a GitFetcher.
type GitFetcherOptions struct {
	Resolver     domain.Resolver
	Materializer domain.Materializer
	// BaseDir is where checkouts live. Empty means a fresh temporary
	// directory per fetch.
	BaseDir string
	// Update refreshes an already materialized checkout before delivery.
	Update bool
	Logger *utils.Logger
}

// NewGitFetcher creates a fetcher for git-style URLs.
func NewGitFetcher(opts GitFetcherOptions) *GitFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &GitFetcher{
		resolver:     opts.Resolver,
		materializer: opts.Materializer,
		baseDir:      opts.BaseDir,
		update:       opts.Update,
		logger:       logger.WithComponent("fetcher"),
	}
}

var _ domain.Fetcher = (*GitFetcher)(nil)

// Schemes returns the URL schemes this fetcher handles. The github
// pseudo-scheme covers owner/repo shorthands.
func (f *GitFetcher) Schemes() []string {
	return []string{"git", "git+https", "git+http", "github"}
}

// Fetch resolves the URL to a repository reference, materializes the
// checkout and hardlinks or copies the addressed content into dest.
func (f *GitFetcher) Fetch(ctx context.Context, remoteURL, dest string) (*domain.FetchResult, error) {
	if dest == "" {
		return nil, domain.ErrMissingDestination
	}

	repo, err := f.resolver.Resolve(ctx, remoteURL, domain.DefaultResolveOptions())
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("%s: %w", remoteURL, domain.ErrNotRepository)
	}

	mat, err := f.materializer.Materialize(ctx, repo, domain.MaterializeOptions{
		BaseDir: f.baseDir,
		Update:  f.update,
	})
	if err != nil {
		return nil, err
	}

	src := mat.Dir
	if repo.RelPath != "" {
		src = filepath.Join(mat.Dir, filepath.FromSlash(repo.RelPath))
	}

	info, err := os.Stat(src)
	if err != nil || (!info.Mode().IsRegular() && !info.IsDir()) {
		return nil, fmt.Errorf("%s is neither a file nor a directory", src)
	}
	kind := domain.ContentKindFile
	if info.IsDir() {
		kind = domain.ContentKindDirectory
	}

	if err := utils.EnsureDir(dest); err != nil {
		return nil, err
	}
	if err := utils.LinkOrCopy(src, dest); err != nil {
		return nil, fmt.Errorf("failed to deliver %s: %w", src, err)
	}

	f.logger.Debug().
		Str("repo", mat.RepoURL).
		Str("checkout", mat.Checkout).
		Str("dest", dest).
		Msg("Delivered git content")

	meta := map[string]any{
		"repo":      mat.RepoURL,
		"tag":       mat.Tag,
		"checkout":  mat.Checkout,
		"repo_type": string(repo.RepoType),
	}
	if repo.WebURL != "" {
		meta["web_url"] = repo.WebURL
	}
	preferred := ""
	if repo.RelPath != "" {
		meta["relpath"] = repo.RelPath
		preferred = path.Base(repo.RelPath)
	}

	return &domain.FetchResult{
		Kind: kind,
		Metadata: []domain.URIWithMetadata{{
			URI:           remoteURL,
			Metadata:      meta,
			PreferredName: preferred,
		}},
	}, nil
}
