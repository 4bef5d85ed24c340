package git

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// MaterializerOptions configures a Materializer.
type MaterializerOptions struct {
	Client Client
	Logger *utils.Logger
}

// Materializer produces local checkouts of resolved repositories.
type Materializer struct {
	client Client
	logger *utils.Logger
}

// NewMaterializer creates a Materializer backed by the given client.
func NewMaterializer(opts MaterializerOptions) *Materializer {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Materializer{
		client: client,
		logger: logger.WithComponent("git"),
	}
}

var _ domain.Materializer = (*Materializer)(nil)

// Materialize clones or reuses a checkout of the repository, checks out the
// requested tag and returns the working tree with the effective HEAD hash.
func (m *Materializer) Materialize(ctx context.Context, repo *domain.RemoteRepo, opts domain.MaterializeOptions) (*domain.MaterializedRepo, error) {
	if repo == nil || repo.RepoURL == "" {
		return nil, fmt.Errorf("%w: empty repository URL", domain.ErrInvalidURL)
	}
	logger := m.logger.WithRepo(repo.RepoURL)

	dest, err := m.checkoutDir(repo, opts)
	if err != nil {
		return nil, err
	}

	gitRepo, fresh, err := m.openOrClone(ctx, repo, dest)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("dir", dest).Bool("fresh", fresh).Msg("Materializing repository")

	if !fresh && opts.Update {
		if err := m.update(ctx, gitRepo); err != nil {
			return nil, fmt.Errorf("update %s: %w", repo.RepoURL, err)
		}
	}

	if repo.Tag != "" {
		if err := m.checkout(gitRepo, repo.Tag); err != nil {
			return nil, fmt.Errorf("checkout %s: %w", repo.RepoURL, err)
		}
	} else {
		logger.Debug().Msg("No tag supplied, staying on the default branch")
	}

	if err := m.updateSubmodules(ctx, gitRepo); err != nil {
		return nil, fmt.Errorf("submodules %s: %w", repo.RepoURL, err)
	}

	head, err := gitRepo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD of %s: %w", repo.RepoURL, err)
	}

	return &domain.MaterializedRepo{
		RepoURL:  repo.RepoURL,
		Tag:      repo.Tag,
		Checkout: head.Hash().String(),
		RelPath:  repo.RelPath,
		Dir:      dest,
	}, nil
}

// checkoutDir picks the working tree location: an explicit directory, a
// content-addressed directory under the base, or a fresh temporary one.
func (m *Materializer) checkoutDir(repo *domain.RemoteRepo, opts domain.MaterializeOptions) (string, error) {
	if opts.Dir != "" {
		return opts.Dir, nil
	}
	if opts.BaseDir == "" {
		return os.MkdirTemp("", "wfexs-repo-*")
	}
	repoDir := filepath.Join(opts.BaseDir, hashID(repo.RepoURL))
	if err := utils.EnsureDir(repoDir); err != nil {
		return "", err
	}
	return filepath.Join(repoDir, hashID(repo.Tag)), nil
}

// hashID keys checkout directories by content, so distinct URLs and tags
// never collide regardless of the characters they contain.
func hashID(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (m *Materializer) openOrClone(ctx context.Context, repo *domain.RemoteRepo, dest string) (*git.Repository, bool, error) {
	gitRepo, err := m.client.PlainOpen(dest)
	if err == nil {
		return gitRepo, false, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, false, fmt.Errorf("open %s: %w", dest, err)
	}

	cloneOpts := &git.CloneOptions{
		URL: utils.ASCIIHostURL(repo.RepoURL),
		// When a tag is known the clone stays bare-tree until the
		// explicit checkout below.
		NoCheckout: repo.Tag != "",
	}
	gitRepo, err = m.client.PlainCloneContext(ctx, dest, false, cloneOpts)
	if err != nil {
		return nil, false, domain.NewFetchError(repo.RepoURL, 0, err)
	}
	return gitRepo, true, nil
}

// update pulls the checked-out branch. Detached checkouts (tags, hashes)
// have nothing to pull and are left alone.
func (m *Materializer) update(ctx context.Context, gitRepo *git.Repository) error {
	head, err := gitRepo.Head()
	if err != nil {
		return err
	}
	if !head.Name().IsBranch() {
		m.logger.Debug().Msg("Detached checkout, skipping pull")
		return nil
	}
	wt, err := gitRepo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: originRemote, Force: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// checkout moves the working tree to tag, which may name a local branch, a
// remote branch, a tag or any other resolvable revision. Remote branches get
// a local counterpart so later pulls have something to fast-forward. A tag
// that resolves to nothing is tolerated: the miss is logged and the working
// tree stays on the default branch.
func (m *Materializer) checkout(gitRepo *git.Repository, tag string) error {
	wt, err := gitRepo.Worktree()
	if err != nil {
		return err
	}

	branchRef := plumbing.NewBranchReferenceName(tag)
	if _, err := gitRepo.Reference(branchRef, false); err == nil {
		return wt.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true})
	}

	if hash, err := gitRepo.ResolveRevision(plumbing.Revision(originRemote + "/" + tag)); err == nil {
		return wt.Checkout(&git.CheckoutOptions{
			Hash:   *hash,
			Branch: branchRef,
			Create: true,
			Force:  true,
		})
	}

	if hash, err := gitRepo.ResolveRevision(plumbing.Revision(tag)); err == nil {
		return wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
	}

	// CheckoutOptions without a branch falls back to refs/heads/master, so
	// the default branch has to be named through HEAD.
	head, err := gitRepo.Head()
	if err != nil {
		return err
	}
	m.logger.Info().
		Str("tag", tag).
		Str("branch", head.Name().Short()).
		Msg("No such branch or tag, staying on the default branch")
	return wt.Checkout(&git.CheckoutOptions{Branch: head.Name(), Force: true})
}

func (m *Materializer) updateSubmodules(ctx context.Context, gitRepo *git.Repository) error {
	wt, err := gitRepo.Worktree()
	if err != nil {
		return err
	}
	subs, err := wt.Submodules()
	if err != nil {
		return err
	}
	for _, sub := range subs {
		err := sub.UpdateContext(ctx, &git.SubmoduleUpdateOptions{
			Init:              true,
			RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		})
		if err != nil {
			return fmt.Errorf("submodule %s: %w", sub.Config().Name, err)
		}
	}
	return nil
}
