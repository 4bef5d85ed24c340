package git

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Client defines the interface for Git operations
type Client interface {
	// PlainCloneContext clones a repository into path.
	PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error)
	// PlainOpen opens an existing repository at path.
	PlainOpen(path string) (*git.Repository, error)
	// ListRemote advertises the refs of a remote without cloning it.
	ListRemote(ctx context.Context, url string) ([]*plumbing.Reference, error)
}
