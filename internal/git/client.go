package git

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

const originRemote = "origin"

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

var _ Client = (*RealClient)(nil)

// PlainCloneContext calls git.PlainCloneContext
func (c *RealClient) PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, path, isBare, o)
}

// PlainOpen calls git.PlainOpen
func (c *RealClient) PlainOpen(path string) (*git.Repository, error) {
	return git.PlainOpen(path)
}

// ListRemote lists the refs of url through an anonymous in-memory remote,
// the library equivalent of ls-remote.
func (c *RealClient) ListRemote(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: originRemote,
		URLs: []string{url},
	})
	return remote.ListContext(ctx, &git.ListOptions{})
}
