package mocks

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/mock"

	gitclient "github.com/dcl10/WfExS-backend/internal/git"
)

// MockClient mocks the git Client interface
type MockClient struct {
	mock.Mock
}

var _ gitclient.Client = (*MockClient)(nil)

// PlainCloneContext mocks the git clone operation
func (m *MockClient) PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error) {
	args := m.Called(ctx, path, isBare, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.Repository), args.Error(1)
}

// PlainOpen mocks opening an existing working tree
func (m *MockClient) PlainOpen(path string) (*git.Repository, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.Repository), args.Error(1)
}

// ListRemote mocks the remote refs listing
func (m *MockClient) ListRemote(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*plumbing.Reference), args.Error(1)
}
