package resolver

import (
	"strings"

	"github.com/dcl10/WfExS-backend/internal/utils"
)

// SegmentTagPath splits the path segments left over after repository-root
// discovery into a checkout tag and a path inside the repository.
//
// Segments are percent-decoded once and joined with "/". Known branches are
// tried in listing order: the first branch equal to the joined candidate, or
// forming a "/"-terminated prefix of it, wins. When branch names contain "/"
// and one is a prefix of another the outcome depends on listing order; this
// is a known ambiguity, not resolved here. With no branch match the first
// segment is taken as the tag and the rest as the path.
func SegmentTagPath(remaining []string, branches []string) (tag string, relPath string) {
	if len(remaining) == 0 {
		return "", ""
	}

	decoded := make([]string, len(remaining))
	for i, seg := range remaining {
		decoded[i] = utils.UnquotePlus(seg)
	}
	candidate := strings.Join(decoded, "/")

	for _, branch := range branches {
		if candidate == branch {
			return branch, ""
		}
		if strings.HasPrefix(candidate, branch+"/") {
			return branch, candidate[len(branch)+1:]
		}
	}

	if len(decoded) == 1 {
		return decoded[0], ""
	}
	return decoded[0], strings.Join(decoded[1:], "/")
}
