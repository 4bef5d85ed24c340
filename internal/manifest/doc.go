// Package manifest provides types and utilities for loading and validating
// reference manifest files. A manifest lists workflow reference URLs with
// per-reference resolution overrides, enabling batch resolution.
//
// # Manifest Format
//
// Manifests can be written in YAML or JSON format:
//
//	references:
//	  - url: https://github.com/inab/WfExS-backend/blob/main/workflow.cwl
//	  - url: git+https://gitlab.example.org/group/project.git@v2.0
//	    fail_ok: true
//	  - url: https://somehost.example/forge/project
//	    probe: false
//	options:
//	  continue_on_error: true
//	  concurrency: 5
//
// # Usage
//
// Load a manifest file:
//
//	loader := manifest.NewLoader()
//	cfg, err := loader.Load("references.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, ref := range cfg.References {
//	    // Resolve each reference
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoReferences: manifest has no references defined
//   - ErrEmptyURL: reference is missing required URL field
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
