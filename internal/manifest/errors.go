package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrNoReferences indicates the manifest has no references defined
	ErrNoReferences = errors.New("manifest must contain at least one reference")

	// ErrEmptyURL indicates a reference is missing the required URL field
	ErrEmptyURL = errors.New("reference URL cannot be empty")

	// ErrInvalidFormat indicates the manifest file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("manifest must be valid YAML or JSON")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)
