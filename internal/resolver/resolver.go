// Package resolver turns heterogeneous workflow-reference URLs into
// canonical repository coordinates: repository URL, tag and relative path.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// Guesser resolves workflow-reference URLs, from plain git URLs and pip-style
// git+ schemes to GitHub browse URLs, raw-content URLs and ambiguous hosts.
// Git-addressed URLs are resolved by pure string extraction; everything else
// goes through the right-to-left refs probe.
type Guesser struct {
	lister       domain.RefsLister
	head         domain.HeadProber
	rules        []FingerprintRule
	probeTimeout time.Duration
	logger       *utils.Logger
}

// GuesserOptions contains options for creating a Guesser.
type GuesserOptions struct {
	// Lister performs the remote refs listings for probe candidates.
	Lister domain.RefsLister
	// Head issues the provider-classification HEAD request. May be nil, in
	// which case probed repositories stay RepoTypeRaw.
	Head domain.HeadProber
	// Rules override the provider fingerprint rules. Nil means defaults.
	Rules []FingerprintRule
	// ProbeTimeout bounds each refs-listing attempt. Zero applies no bound
	// beyond the caller's context.
	ProbeTimeout time.Duration
	Logger       *utils.Logger
}

// NewGuesser creates a Guesser.
func NewGuesser(opts GuesserOptions) *Guesser {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultFingerprintRules()
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Guesser{
		lister:       opts.Lister,
		head:         opts.Head,
		rules:        rules,
		probeTimeout: opts.ProbeTimeout,
		logger:       logger.WithComponent("resolver"),
	}
}

var _ domain.Resolver = (*Guesser)(nil)

// Resolve classifies rawURL by shape and resolves it. A nil result with a
// nil error means the URL is not a repository reference at all; a GuessError
// means it looked like one but could not be pinned to a repository.
func (g *Guesser) Resolve(ctx context.Context, rawURL string, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	u := utils.Split(rawURL)

	var (
		repo *domain.RemoteRepo
		err  error
	)
	switch ClassifyShape(u) {
	case ShapeOpaque, ShapeGitNoMarker:
		repo = nil
	case ShapeExplicitGit:
		repo = extractExplicit(u)
	case ShapeGitHubShorthand:
		repo, err = g.resolveGitHubShorthand(ctx, u, opts)
	case ShapeGitHubWeb:
		repo, err = g.resolveGitHubWeb(ctx, u, opts)
	case ShapeRawGitHub:
		repo, err = g.resolveRawGitHub(ctx, u, opts)
	case ShapeGenericHost:
		repo, err = g.resolveGeneric(ctx, u, opts)
	}
	if err != nil {
		return nil, err
	}
	if repo == nil {
		g.logger.Debug().Str("url", rawURL).Msg("Not a repository reference")
		return nil, nil
	}

	if repo.WebURL == "" {
		repo.WebURL = deriveWebURL(repo)
	}

	g.logger.Debug().
		Str("url", rawURL).
		Str("repo", repo.RepoURL).
		Str("repo_type", string(repo.RepoType)).
		Str("tag", repo.Tag).
		Str("rel_path", repo.RelPath).
		Msg("Derived repository coordinates")

	return repo, nil
}

// resolveGitHubShorthand handles the "github:" pseudo-scheme: the first two
// path segments name owner and repository, the rest are tag and subpath. The
// probe fills in branch names and provider type; with FailOK a refused probe
// still yields the constructed coordinates, typed GitHub.
func (g *Guesser) resolveGitHubShorthand(ctx context.Context, u *utils.SplitURL, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	if !opts.AllowProbe {
		return nil, nil
	}

	parts := strings.Split(u.Path, "/")
	split := 2
	if len(parts) < split {
		split = len(parts)
	}
	built := &utils.SplitURL{
		Scheme: "https",
		Netloc: githubNetloc,
		Path:   strings.Join(parts[:split], "/"),
	}
	remaining := parts[split:]

	repo := &domain.RemoteRepo{
		RepoURL:  built.String(),
		RepoType: domain.RepoTypeGitHub,
	}

	found, err := g.findRepoInURL(ctx, built)
	if err != nil {
		if opts.FailOK && errors.Is(err, domain.ErrRepoNotIdentified) {
			repo.Tag, repo.RelPath = SegmentTagPath(remaining, nil)
			return repo, nil
		}
		return nil, err
	}

	repo.RepoType = found.root.RepoType
	if len(remaining) > 0 {
		repo.Tag, repo.RelPath = SegmentTagPath(remaining, found.branches)
	} else {
		repo.Tag = found.root.Tag
	}
	return repo, nil
}

// resolveGitHubWeb handles github.com browse URLs. The probe finds the
// repository root; a tag/path split is attempted only below the /blob/ and
// /tree/ browse conventions, with the marker segment itself discarded.
func (g *Guesser) resolveGitHubWeb(ctx context.Context, u *utils.SplitURL, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	if !opts.AllowProbe {
		return nil, nil
	}

	found, err := g.findRepoInURL(ctx, u)
	if err != nil {
		if opts.FailOK && errors.Is(err, domain.ErrRepoNotIdentified) {
			return nil, nil
		}
		return nil, err
	}

	repo := found.root
	if len(found.remaining) > 1 && (found.remaining[0] == blobMarker || found.remaining[0] == treeMarker) {
		repo.Tag, repo.RelPath = SegmentTagPath(found.remaining[1:], found.branches)
	}
	return repo, nil
}

// resolveRawGitHub handles raw.githubusercontent.com content URLs: owner and
// repository are rebuilt into the canonical github.com clone URL, the
// remaining segments are tag and subpath. URLs naming no repository yield
// nil. With FailOK a refused probe still yields the rebuilt coordinates,
// typed GitHub.
func (g *Guesser) resolveRawGitHub(ctx context.Context, u *utils.SplitURL, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	if !opts.AllowProbe {
		return nil, nil
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) < 3 {
		// Not even owner and repository name.
		return nil, nil
	}

	ownerRepo := make([]string, 3)
	for i := range ownerRepo {
		ownerRepo[i] = utils.UnquotePlus(parts[i])
	}
	ownerRepo[2] += gitMarker
	built := &utils.SplitURL{
		Scheme: "https",
		Netloc: githubNetloc,
		Path:   strings.Join(ownerRepo, "/"),
	}
	remaining := parts[3:]

	repo := &domain.RemoteRepo{
		RepoURL:  built.String(),
		RepoType: domain.RepoTypeGitHub,
	}

	found, err := g.findRepoInURL(ctx, built)
	if err != nil {
		if opts.FailOK && errors.Is(err, domain.ErrRepoNotIdentified) {
			repo.Tag, repo.RelPath = SegmentTagPath(remaining, nil)
			return repo, nil
		}
		return nil, err
	}

	repo.RepoType = found.root.RepoType
	if len(remaining) > 0 {
		repo.Tag, repo.RelPath = SegmentTagPath(remaining, found.branches)
	} else {
		repo.Tag = found.root.Tag
	}
	return repo, nil
}

// resolveGeneric handles every other host by probing the full URL. Path
// segments below the discovered root are segmented into tag and subpath; a
// bare root keeps the default branch.
func (g *Guesser) resolveGeneric(ctx context.Context, u *utils.SplitURL, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	if !opts.AllowProbe {
		return nil, nil
	}

	found, err := g.findRepoInURL(ctx, u)
	if err != nil {
		if opts.FailOK && errors.Is(err, domain.ErrRepoNotIdentified) {
			return nil, nil
		}
		return nil, err
	}

	repo := found.root
	if len(found.remaining) > 0 {
		repo.Tag, repo.RelPath = SegmentTagPath(found.remaining, found.branches)
	}
	return repo, nil
}

// deriveWebURL returns a browsable URL for repositories resolved to
// github.com, nesting tag and path under the /tree/ convention. Other
// providers need provider-specific layouts and are left empty.
func deriveWebURL(repo *domain.RemoteRepo) string {
	if repo.RepoType != domain.RepoTypeGitHub {
		return ""
	}
	u := utils.Split(repo.RepoURL)
	if u.Hostname() != githubNetloc {
		return ""
	}
	trimmed := strings.TrimSuffix(strings.Trim(u.Path, "/"), gitMarker)
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	web := "https://" + githubNetloc + "/" + parts[0] + "/" + parts[1]
	if repo.Tag != "" {
		web += "/" + treeMarker + "/" + repo.Tag
		if repo.RelPath != "" {
			web += "/" + repo.RelPath
		}
	}
	return web
}
