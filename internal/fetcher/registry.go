package fetcher

import (
	"context"
	"sort"
	"strings"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// Registry dispatches fetches to the handler registered for a URL scheme.
type Registry struct {
	byScheme map[string]domain.Fetcher
	logger   *utils.Logger
}

// NewRegistry creates an empty scheme registry.
func NewRegistry(logger *utils.Logger) *Registry {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Registry{
		byScheme: make(map[string]domain.Fetcher),
		logger:   logger.WithComponent("registry"),
	}
}

// Register claims every scheme the fetcher announces. Schemes are matched
// case-insensitively and a later registration replaces an earlier one.
func (r *Registry) Register(f domain.Fetcher) {
	for _, scheme := range f.Schemes() {
		r.byScheme[strings.ToLower(scheme)] = f
	}
}

// Schemes returns the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	schemes := make([]string, 0, len(r.byScheme))
	for scheme := range r.byScheme {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// ForScheme returns the fetcher registered for the scheme.
func (r *Registry) ForScheme(scheme string) (domain.Fetcher, error) {
	f, ok := r.byScheme[strings.ToLower(scheme)]
	if !ok {
		return nil, domain.NewSchemeError(scheme)
	}
	return f, nil
}

// Fetch dispatches the URL to the fetcher registered for its scheme.
func (r *Registry) Fetch(ctx context.Context, rawURL, dest string) (*domain.FetchResult, error) {
	scheme := utils.Split(rawURL).Scheme
	f, err := r.ForScheme(scheme)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("scheme", scheme).
		Str("dest", dest).
		Msg("Dispatching fetch")

	return f.Fetch(ctx, rawURL, dest)
}

// ParseAndRemoveCredentials strips userinfo from the URL authority and
// returns the anonymized URL together with the removed credentials. URLs
// without an authority come back unchanged.
func ParseAndRemoveCredentials(rawURL string) (string, string) {
	u := utils.Split(rawURL)
	i := strings.LastIndex(u.Netloc, "@")
	if i < 0 {
		return rawURL, ""
	}
	creds := u.Netloc[:i]
	u.Netloc = u.Netloc[i+1:]
	return u.String(), creds
}
