package resolver

import (
	"strings"

	"github.com/dcl10/WfExS-backend/internal/utils"
)

// Shape identifies which of the recognized URL forms a workflow reference
// has. Classification is ordered and first-match-wins; Resolve dispatches on
// the result with an exhaustive switch.
type Shape string

const (
	// ShapeOpaque is anything without a scheme, including scp-style
	// "git@host:path" shorthands. Never a resolvable reference.
	ShapeOpaque Shape = "opaque"
	// ShapeExplicitGit is a git-addressed URL whose path carries the ".git"
	// marker; resolvable by pure string extraction.
	ShapeExplicitGit Shape = "explicit-git"
	// ShapeGitNoMarker is a git-addressed URL without a ".git" marker in the
	// path; rejected without probing.
	ShapeGitNoMarker Shape = "git-no-marker"
	// ShapeGitHubShorthand is the "github:" pseudo-scheme.
	ShapeGitHubShorthand Shape = "github-shorthand"
	// ShapeGitHubWeb is a github.com browse URL, bare or /blob/ or /tree/.
	ShapeGitHubWeb Shape = "github-web"
	// ShapeRawGitHub is a raw.githubusercontent.com content URL.
	ShapeRawGitHub Shape = "raw-github"
	// ShapeGenericHost is any other scheme://host URL; only probing can tell
	// whether it points into a repository.
	ShapeGenericHost Shape = "generic-host"
)

const (
	gitProtoPrefix  = "git+"
	gitMarker       = ".git"
	githubScheme    = "github"
	githubNetloc    = "github.com"
	rawGithubNetloc = "raw.githubusercontent.com"

	blobMarker = "blob"
	treeMarker = "tree"
)

// Schemes a git client dereferences directly, with or without a "git+"
// prefix. De-facto set understood by pip and the git CLI.
var gitAddressedSchemes = map[string]bool{
	"git":  true,
	"ssh":  true,
	"file": true,
}

// isGitAddressed reports whether scheme names a git-addressed transport.
func isGitAddressed(scheme string) bool {
	return gitAddressedSchemes[scheme] || strings.HasPrefix(scheme, gitProtoPrefix)
}

// ClassifyShape maps split URL components onto the shape deciding the
// resolution path. The ".git" marker is checked before host recognition, so
// "https://github.com/o/r.git" stays explicitly git-addressed while
// "https://github.com/o/r" needs the probe.
func ClassifyShape(u *utils.SplitURL) Shape {
	switch {
	case u.Scheme == "":
		return ShapeOpaque
	case isGitAddressed(u.Scheme):
		if strings.Contains(u.Path, gitMarker) {
			return ShapeExplicitGit
		}
		return ShapeGitNoMarker
	case (u.Scheme == "http" || u.Scheme == "https") && strings.Contains(u.Path, gitMarker):
		// Plain http(s) clone URL with the customary "git+" prefix elided.
		return ShapeExplicitGit
	case u.Scheme == githubScheme:
		return ShapeGitHubShorthand
	case u.Netloc == githubNetloc:
		return ShapeGitHubWeb
	case u.Netloc == rawGithubNetloc:
		return ShapeRawGitHub
	}
	return ShapeGenericHost
}
