package domain

import "strings"

// RepoType classifies the hosting provider or transport of a resolved repository.
type RepoType string

const (
	// RepoTypeGit means the URL itself is git-addressed; no provider guessing was needed.
	RepoTypeGit RepoType = "git"
	// RepoTypeGitHub is a repository hosted on github.com.
	RepoTypeGitHub RepoType = "github"
	// RepoTypeGitLab is a repository hosted on a GitLab instance.
	RepoTypeGitLab RepoType = "gitlab"
	// RepoTypeBitBucket is a repository hosted on a Bitbucket instance.
	RepoTypeBitBucket RepoType = "bitbucket"
	// RepoTypeRaw means the remote answered a refs listing but the provider is unknown.
	// This is a valid, actionable result, not an error.
	RepoTypeRaw RepoType = "raw"
	// RepoTypeOther is reserved for providers recognized by custom fingerprint rules.
	RepoTypeOther RepoType = "other"
)

// RemoteRepo is the result of resolving a workflow-reference URL: the canonical
// repository locator plus the checkout coordinates inside it.
//
// RepoURL never carries an "@tag" suffix or a fragment; those are always
// extracted into Tag and RelPath. Tag is percent-decoded exactly once, during
// extraction. An empty Tag means "use the provider's default branch"; an empty
// RelPath means "the whole repository is the target".
type RemoteRepo struct {
	RepoURL  string   `json:"repo_url" yaml:"repo_url"`
	Tag      string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	RelPath  string   `json:"rel_path,omitempty" yaml:"rel_path,omitempty"`
	RepoType RepoType `json:"repo_type,omitempty" yaml:"repo_type,omitempty"`
	// WebURL is a browsable URL for the same resource, when derivable.
	// It is informational only; resolution logic never reads it.
	WebURL string `json:"web_url,omitempty" yaml:"web_url,omitempty"`
}

// Ref is a single entry of a remote refs listing.
type Ref struct {
	// Name is the fully-qualified ref name, e.g. "refs/heads/main" or "HEAD".
	Name string
	// Target is an opaque pointer token (commit hash) used only for equality.
	Target string
}

const (
	headRefName     = "HEAD"
	refsHeadsPrefix = "refs/heads/"
)

// RefsSnapshot is the outcome of one remote refs listing. It lives only for
// the duration of a single probe call and is never persisted.
//
// Refs preserves the listing order of the remote; consumers must not assume
// any ordering beyond "first match wins".
type RefsSnapshot struct {
	Refs []Ref
}

// Lookup returns the target of the named ref.
func (s *RefsSnapshot) Lookup(name string) (string, bool) {
	for _, r := range s.Refs {
		if r.Name == name {
			return r.Target, true
		}
	}
	return "", false
}

// Branches returns branch names (refs/heads/ stripped) in listing order.
func (s *RefsSnapshot) Branches() []string {
	var branches []string
	for _, r := range s.Refs {
		if strings.HasPrefix(r.Name, refsHeadsPrefix) {
			branches = append(branches, strings.TrimPrefix(r.Name, refsHeadsPrefix))
		}
	}
	return branches
}

// DefaultBranch returns the first branch whose target equals HEAD's target.
// It reports false when HEAD is missing or points at no listed branch
// (detached or empty repository).
func (s *RefsSnapshot) DefaultBranch() (string, bool) {
	head, ok := s.Lookup(headRefName)
	if !ok {
		return "", false
	}
	for _, r := range s.Refs {
		if strings.HasPrefix(r.Name, refsHeadsPrefix) && r.Target == head {
			return strings.TrimPrefix(r.Name, refsHeadsPrefix), true
		}
	}
	return "", false
}

// MaterializedRepo describes a repository checkout produced on local disk.
type MaterializedRepo struct {
	RepoURL string `json:"repo" yaml:"repo"`
	Tag     string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Checkout is the effective commit hash of HEAD after clone/checkout.
	Checkout string `json:"checkout" yaml:"checkout"`
	RelPath  string `json:"relpath,omitempty" yaml:"relpath,omitempty"`
	// Dir is the local working tree; not part of the serialized descriptor.
	Dir string `json:"-" yaml:"-"`
}

// ContentKind tells whether fetched content is a single file or a directory tree.
type ContentKind string

const (
	ContentKindFile      ContentKind = "file"
	ContentKindDirectory ContentKind = "dir"
)

// URIWithMetadata pairs a fetched URI with provenance metadata gathered while
// fetching it.
type URIWithMetadata struct {
	URI           string         `json:"uri"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	PreferredName string         `json:"preferred_name,omitempty"`
}

// FetchResult is what a scheme fetcher returns after delivering content to a
// local destination.
type FetchResult struct {
	Kind     ContentKind
	Metadata []URIWithMetadata
}
