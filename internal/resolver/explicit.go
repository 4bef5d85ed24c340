package resolver

import (
	"strings"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

const subdirectoryKey = "subdirectory"

// extractExplicit resolves a git-addressed URL by pure string manipulation,
// no network. The supported forms are the pip-style references
// [git+]scheme://host/path.git[@tag][#subdirectory=rel/path].
//
// Callers must have established the ".git" marker via ClassifyShape; the
// extractor itself does not re-check it.
func extractExplicit(u *utils.SplitURL) *domain.RemoteRepo {
	scheme := strings.TrimPrefix(u.Scheme, gitProtoPrefix)

	gitPath := u.Path
	tag := ""
	if i := strings.Index(gitPath, "@"); i >= 0 {
		gitPath, tag = gitPath[:i], gitPath[i+1:]
	}

	relPath := utils.FirstFragmentValue(u.Fragment, subdirectoryKey)

	var repoURL string
	if scheme == "ssh" {
		// Restore the user@host:path clone shorthand. The splitter put
		// everything up to the first "/" into the netloc, so plain
		// concatenation yields "git@host:owner/repo.git" again.
		repoURL = u.Netloc + gitPath
	} else {
		rebuilt := &utils.SplitURL{Scheme: scheme, Netloc: u.Netloc, Path: gitPath}
		repoURL = rebuilt.String()
	}

	return &domain.RemoteRepo{
		RepoURL:  repoURL,
		Tag:      tag,
		RelPath:  relPath,
		RepoType: domain.RepoTypeGit,
	}
}
