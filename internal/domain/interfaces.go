package domain

import (
	"context"
	"net/http"
)

// Resolver turns a workflow-reference URL into repository coordinates.
type Resolver interface {
	// Resolve classifies and resolves a URL. A nil result with a nil error
	// means "not a repository reference at all".
	Resolve(ctx context.Context, rawURL string, opts ResolveOptions) (*RemoteRepo, error)
}

// RefsLister lists the refs advertised by a remote repository.
type RefsLister interface {
	// ListRefs returns the refs snapshot for a candidate repository root.
	// It returns ErrNotRepository (possibly wrapped) when the remote exists
	// but is not a git repository, distinct from other I/O failures.
	ListRefs(ctx context.Context, repoURL string) (*RefsSnapshot, error)
}

// HeadProber issues an HTTP HEAD request and exposes the response headers.
// Used only for provider fingerprinting; failures are non-fatal to resolution.
type HeadProber interface {
	Head(ctx context.Context, url string) (http.Header, error)
}

// Materializer produces a local checkout of a resolved repository.
type Materializer interface {
	// Materialize clones or updates the repository and checks out the tag,
	// returning the working tree location and the effective checkout hash.
	Materialize(ctx context.Context, repo *RemoteRepo, opts MaterializeOptions) (*MaterializedRepo, error)
}

// Fetcher delivers the content behind a URL scheme to a local destination.
type Fetcher interface {
	// Schemes returns the URL schemes this fetcher handles.
	Schemes() []string
	// Fetch retrieves remoteURL and places its content at dest.
	Fetch(ctx context.Context, remoteURL string, dest string) (*FetchResult, error)
}
