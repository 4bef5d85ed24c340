// Package descriptor reads and writes the provenance sidecar that travels
// next to a materialized workflow checkout. The sidecar records where the
// content came from and which commit it was pinned to, so a consumer can
// re-materialize the same workflow later.
package descriptor

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// ErrMissingRepo indicates a descriptor without the mandatory repo field.
var ErrMissingRepo = errors.New("descriptor is missing the repo field")

// Descriptor is the serialized provenance of a materialized repository.
type Descriptor struct {
	Repo     string          `yaml:"repo" json:"repo"`
	Tag      string          `yaml:"tag,omitempty" json:"tag,omitempty"`
	Checkout string          `yaml:"checkout,omitempty" json:"checkout,omitempty"`
	RelPath  string          `yaml:"relpath,omitempty" json:"relpath,omitempty"`
	RepoType domain.RepoType `yaml:"repo_type,omitempty" json:"repo_type,omitempty"`
	WebURL   string          `yaml:"web_url,omitempty" json:"web_url,omitempty"`
}

// FromRepo builds a descriptor out of a resolution result and, when the
// content was materialized, the checkout it produced.
func FromRepo(repo *domain.RemoteRepo, mat *domain.MaterializedRepo) *Descriptor {
	d := &Descriptor{
		Repo:     repo.RepoURL,
		Tag:      repo.Tag,
		RelPath:  repo.RelPath,
		RepoType: repo.RepoType,
		WebURL:   repo.WebURL,
	}
	if mat != nil {
		d.Repo = mat.RepoURL
		d.Tag = mat.Tag
		d.Checkout = mat.Checkout
	}
	return d
}

// FromFetchMetadata rebuilds a descriptor from the metadata a fetch result
// carries. The second return is false when the metadata does not describe a
// repository, as happens for plain HTTP downloads.
func FromFetchMetadata(meta map[string]any) (*Descriptor, bool) {
	repoURL, _ := meta["repo"].(string)
	if repoURL == "" {
		return nil, false
	}

	d := &Descriptor{Repo: repoURL}
	if tag, ok := meta["tag"].(string); ok {
		d.Tag = tag
	}
	if checkout, ok := meta["checkout"].(string); ok {
		d.Checkout = checkout
	}
	if relPath, ok := meta["relpath"].(string); ok {
		d.RelPath = relPath
	}
	if repoType, ok := meta["repo_type"].(string); ok {
		d.RepoType = domain.RepoType(repoType)
	}
	if webURL, ok := meta["web_url"].(string); ok {
		d.WebURL = webURL
	}
	return d, true
}

// Validate checks the descriptor for the mandatory fields.
func (d *Descriptor) Validate() error {
	if d.Repo == "" {
		return ErrMissingRepo
	}
	return nil
}

// Write serializes the descriptor as YAML at path, creating parent
// directories as needed.
func Write(path string, d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to serialize descriptor: %w", err)
	}

	if err := utils.EnsureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

// Load reads a descriptor back from path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
