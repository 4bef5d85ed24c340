package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// ListerOptions configures a Lister.
type ListerOptions struct {
	Client Client
	Logger *utils.Logger
}

// Lister answers remote refs listings for repository probing.
type Lister struct {
	client Client
	logger *utils.Logger
}

// NewLister creates a Lister backed by the given client.
func NewLister(opts ListerOptions) *Lister {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Lister{
		client: client,
		logger: logger.WithComponent("git"),
	}
}

var _ domain.RefsLister = (*Lister)(nil)

// ListRefs lists the refs advertised by repoURL as a snapshot.
func (l *Lister) ListRefs(ctx context.Context, repoURL string) (*domain.RefsSnapshot, error) {
	refs, err := l.client.ListRemote(ctx, utils.ASCIIHostURL(repoURL))
	if err != nil {
		l.logger.Debug().Str("url", repoURL).Err(err).Msg("Refs listing failed")
		return nil, mapListError(repoURL, err)
	}
	return snapshotFromRefs(refs), nil
}

// mapListError folds the transport's "nothing to list here" answers into
// ErrNotRepository, keeping genuine I/O failures distinguishable.
func mapListError(repoURL string, err error) error {
	if errors.Is(err, transport.ErrRepositoryNotFound) || errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return fmt.Errorf("%s: %w", repoURL, domain.ErrNotRepository)
	}
	return fmt.Errorf("list refs %s: %w", repoURL, err)
}

// snapshotFromRefs converts advertised references into a snapshot, keeping
// the listing order. Symbolic refs (HEAD -> refs/heads/x) are peeled to the
// hash of the listed target, so snapshot targets always compare by commit.
func snapshotFromRefs(refs []*plumbing.Reference) *domain.RefsSnapshot {
	byName := make(map[string]string, len(refs))
	for _, ref := range refs {
		if ref.Type() == plumbing.HashReference {
			byName[ref.Name().String()] = ref.Hash().String()
		}
	}

	snap := &domain.RefsSnapshot{Refs: make([]domain.Ref, 0, len(refs))}
	for _, ref := range refs {
		target := ref.Hash().String()
		if ref.Type() == plumbing.SymbolicReference {
			if hash, ok := byName[ref.Target().String()]; ok {
				target = hash
			} else {
				// Target not in the listing (unborn branch); keep the
				// ref name, which matches nothing by hash.
				target = ref.Target().String()
			}
		}
		snap.Refs = append(snap.Refs, domain.Ref{
			Name:   ref.Name().String(),
			Target: target,
		})
	}
	return snap
}
