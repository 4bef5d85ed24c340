package resolver

import (
	"context"
	"strings"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// probeResult is what a successful probe yields: the repository root
// coordinates (tag preset to the default branch), the path segments after
// the root, and the branch names advertised by the remote in listing order.
type probeResult struct {
	root      *domain.RemoteRepo
	remaining []string
	branches  []string
}

// findRepoInURL walks the URL's path right to left until a prefix answers a
// remote refs listing. The walk does not stop at the first success: the
// shortest successful prefix is the repository root, so later successes
// overwrite earlier ones. Provider classification runs once, at the first
// success. Failed candidates are remembered for the duration of the call so
// duplicate prefixes are not listed twice.
func (g *Guesser) findRepoInURL(ctx context.Context, u *utils.SplitURL) (*probeResult, error) {
	segments := strings.Split(u.Path, "/")

	var (
		rootURL       string
		defaultBranch string
		haveDefault   bool
		branches      []string
		remaining     []string
		repoType      domain.RepoType
		found         bool
	)

	tried := make(map[string]bool)
	for pos := len(segments); pos >= 1; pos-- {
		prefix := strings.Join(segments[:pos], "/")
		if prefix == "" {
			prefix = "/"
		}
		candidate := u.WithPath(prefix).String()
		if tried[candidate] {
			continue
		}

		snapshot, err := g.listRefs(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Not a repository here (or unreachable); try a shorter prefix.
			tried[candidate] = true
			continue
		}

		found = true
		rootURL = candidate
		branches = snapshot.Branches()
		defaultBranch, haveDefault = snapshot.DefaultBranch()
		remaining = segments[pos:]

		if repoType == "" {
			repoType = g.classifyProvider(ctx, candidate)
		}
	}

	if !found {
		return nil, domain.NewGuessError(u.String(), domain.ErrRepoNotIdentified)
	}
	if !haveDefault {
		return nil, domain.NewGuessError(u.String(), domain.ErrNoDefaultBranch)
	}

	return &probeResult{
		root: &domain.RemoteRepo{
			RepoURL:  rootURL,
			Tag:      defaultBranch,
			RepoType: repoType,
		},
		remaining: remaining,
		branches:  branches,
	}, nil
}

// listRefs applies the per-attempt probe timeout around one refs listing. A
// timed-out candidate counts as "not a repository here", so the walk moves
// on to shorter prefixes instead of aborting.
func (g *Guesser) listRefs(ctx context.Context, repoURL string) (*domain.RefsSnapshot, error) {
	if g.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.probeTimeout)
		defer cancel()
	}
	return g.lister.ListRefs(ctx, repoURL)
}
