package domain

// ResolveOptions carries the caller-selectable policies of one resolution.
type ResolveOptions struct {
	// AllowProbe permits network probing of ambiguous hosts. When false,
	// URLs that cannot be resolved by pure string extraction yield nil.
	AllowProbe bool
	// FailOK softens "no prefix answered a refs listing" into a nil result
	// instead of an error. It never softens a missing default branch.
	FailOK bool
}

// DefaultResolveOptions returns ResolveOptions with default values.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{AllowProbe: true}
}

// MaterializeOptions controls where and how a repository is checked out.
type MaterializeOptions struct {
	// Dir is an explicit destination working tree. When empty, a directory
	// under BaseDir keyed by repository URL and tag is used; when BaseDir is
	// also empty, a temporary directory is created.
	Dir string
	// BaseDir is the root under which per-repo checkout directories live.
	BaseDir string
	// Update pulls and re-checks-out when the destination already holds a clone.
	Update bool
}
