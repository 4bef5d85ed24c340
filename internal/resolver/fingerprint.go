package resolver

import (
	"context"
	"net/http"
	"strings"

	"github.com/dcl10/WfExS-backend/internal/domain"
)

// FingerprintRule recognizes a hosting provider from the response headers of
// an HTTP HEAD request against a repository root. Rules are evaluated in
// order; the first match decides the repo type.
type FingerprintRule struct {
	Name     string
	RepoType domain.RepoType
	Match    func(h http.Header) bool
}

// headerValueContains reports whether any value of the named header contains
// the substring.
func headerValueContains(h http.Header, name, substr string) bool {
	for _, v := range h.Values(name) {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}

// DefaultFingerprintRules recognizes GitLab, GitHub and Bitbucket from their
// session cookies and view headers. Header heuristics are fragile; keeping
// them as an ordered rule list lets providers be added without touching the
// probe loop.
func DefaultFingerprintRules() []FingerprintRule {
	return []FingerprintRule{
		{
			Name:     "gitlab-cookie",
			RepoType: domain.RepoTypeGitLab,
			Match: func(h http.Header) bool {
				return headerValueContains(h, "Set-Cookie", "gitlab")
			},
		},
		{
			Name:     "github-cookie",
			RepoType: domain.RepoTypeGitHub,
			Match: func(h http.Header) bool {
				return headerValueContains(h, "Set-Cookie", githubNetloc)
			},
		},
		{
			Name:     "bitbucket-view",
			RepoType: domain.RepoTypeBitBucket,
			Match: func(h http.Header) bool {
				return headerValueContains(h, "X-View-Name", "bitbucket")
			},
		},
	}
}

// classifyProvider runs one HEAD request against the repository root and the
// fingerprint rules over its headers. Every failure mode, including a missing
// prober, leaves the type at Raw; classification is best-effort metadata and
// never fails a resolution.
func (g *Guesser) classifyProvider(ctx context.Context, rootURL string) domain.RepoType {
	if g.head == nil {
		return domain.RepoTypeRaw
	}
	headers, err := g.head.Head(ctx, rootURL)
	if err != nil {
		return domain.RepoTypeRaw
	}
	for _, rule := range g.rules {
		if rule.Match(headers) {
			return rule.RepoType
		}
	}
	return domain.RepoTypeRaw
}
