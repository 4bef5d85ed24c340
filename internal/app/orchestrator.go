package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/dcl10/WfExS-backend/internal/config"
	"github.com/dcl10/WfExS-backend/internal/descriptor"
	"github.com/dcl10/WfExS-backend/internal/domain"
	"github.com/dcl10/WfExS-backend/internal/fetcher"
	"github.com/dcl10/WfExS-backend/internal/git"
	"github.com/dcl10/WfExS-backend/internal/manifest"
	"github.com/dcl10/WfExS-backend/internal/resolver"
	"github.com/dcl10/WfExS-backend/internal/utils"
)

// Orchestrator coordinates resolution, materialization and content delivery
// behind the CLI commands.
type Orchestrator struct {
	config     *config.Config
	logger     *utils.Logger
	httpClient *fetcher.Client
	resolver   domain.Resolver
	registry   *fetcher.Registry
	progress   bool
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config *config.Config
	// Verbose forces the log level to debug.
	Verbose bool
	// Progress draws a progress bar on stderr during batch runs.
	Progress bool

	// Resolver and Materializer replace the wired implementations when set.
	Resolver     domain.Resolver
	Materializer domain.Materializer
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config

	// Validate config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Create logger
	logLevel := "info"
	logFormat := "pretty"
	if cfg.Logging.Level != "" {
		logLevel = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		logFormat = cfg.Logging.Format
	}
	if opts.Verbose {
		logLevel = "debug"
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  logFormat,
		Verbose: opts.Verbose,
	})

	httpClient, err := fetcher.NewClient(fetcher.ClientOptions{
		Timeout:    cfg.HTTP.Timeout,
		MaxRetries: cfg.HTTP.MaxRetries,
		UserAgent:  cfg.HTTP.UserAgent,
		ProxyURL:   cfg.HTTP.ProxyURL,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	res := opts.Resolver
	if res == nil {
		res = resolver.NewGuesser(resolver.GuesserOptions{
			Lister:       git.NewLister(git.ListerOptions{Logger: logger}),
			Head:         httpClient,
			ProbeTimeout: cfg.Resolve.ProbeTimeout,
			Logger:       logger,
		})
	}

	mater := opts.Materializer
	if mater == nil {
		mater = git.NewMaterializer(git.MaterializerOptions{Logger: logger})
	}

	workspace := utils.ExpandPath(cfg.Workspace.Directory)

	registry := fetcher.NewRegistry(logger)
	registry.Register(fetcher.NewGitFetcher(fetcher.GitFetcherOptions{
		Resolver:     res,
		Materializer: mater,
		BaseDir:      workspace,
		Update:       cfg.Workspace.Update,
		Logger:       logger,
	}))
	registry.Register(fetcher.NewHTTPFetcher(httpClient, logger))

	return &Orchestrator{
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		resolver:   res,
		registry:   registry,
		progress:   opts.Progress,
	}, nil
}

// Close releases held resources.
func (o *Orchestrator) Close() error {
	if o.httpClient != nil {
		o.httpClient.Close()
	}
	return nil
}

// BaseResolveOptions returns the resolve options the configuration implies.
// Callers layer per-invocation overrides on top.
func (o *Orchestrator) BaseResolveOptions() domain.ResolveOptions {
	return domain.ResolveOptions{
		AllowProbe: o.config.Resolve.Probe,
		FailOK:     o.config.Resolve.FailOK,
	}
}

// Schemes lists the URL schemes the fetch dispatcher accepts.
func (o *Orchestrator) Schemes() []string {
	return o.registry.Schemes()
}

// Resolve maps a raw reference to a pinned repository description.
func (o *Orchestrator) Resolve(ctx context.Context, rawURL string, opts domain.ResolveOptions) (*domain.RemoteRepo, error) {
	start := time.Now()

	repo, err := o.resolver.Resolve(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("url", rawURL).
		Dur("duration", time.Since(start)).
		Msg("Resolution finished")
	return repo, nil
}

// Fetch downloads the content a reference addresses into dest, dispatching
// on the URL scheme. When descriptorPath is not empty and the fetched
// content came from a repository, a provenance sidecar is written there.
func (o *Orchestrator) Fetch(ctx context.Context, rawURL, dest, descriptorPath string) (*domain.FetchResult, error) {
	start := time.Now()
	o.logger.Info().
		Str("url", rawURL).
		Str("dest", dest).
		Msg("Starting fetch")

	result, err := o.registry.Fetch(ctx, rawURL, dest)
	if err != nil {
		return nil, err
	}

	if descriptorPath != "" {
		if err := o.writeDescriptor(result, descriptorPath); err != nil {
			return nil, err
		}
	}

	o.logger.Info().
		Str("kind", string(result.Kind)).
		Dur("duration", time.Since(start)).
		Msg("Fetch completed")
	return result, nil
}

func (o *Orchestrator) writeDescriptor(result *domain.FetchResult, path string) error {
	if len(result.Metadata) == 0 {
		o.logger.Warn().Str("path", path).Msg("Fetch produced no metadata, skipping descriptor")
		return nil
	}
	d, ok := descriptor.FromFetchMetadata(result.Metadata[0].Metadata)
	if !ok {
		o.logger.Warn().Str("path", path).Msg("Fetched content is not a repository, skipping descriptor")
		return nil
	}

	if err := descriptor.Write(path, d); err != nil {
		return err
	}
	o.logger.Info().Str("path", path).Msg("Wrote descriptor")
	return nil
}

// BatchResult records the outcome of one manifest reference.
type BatchResult struct {
	URL      string             `json:"url" yaml:"url"`
	Repo     *domain.RemoteRepo `json:"repo,omitempty" yaml:"repo,omitempty"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration      `json:"-" yaml:"-"`
}

// refWithIndex pairs a reference with its manifest position so results come
// back in manifest order.
type refWithIndex struct {
	index int
	ref   manifest.Reference
}

// ResolveBatch resolves every reference in a manifest in parallel. The
// returned slice has one entry per reference, in manifest order.
func (o *Orchestrator) ResolveBatch(ctx context.Context, m *manifest.Config) ([]BatchResult, error) {
	if m == nil || len(m.References) == 0 {
		return nil, manifest.ErrNoReferences
	}

	concurrency := m.Options.Concurrency
	if concurrency <= 0 {
		concurrency = o.config.Batch.Concurrency
	}
	continueOnError := m.Options.ContinueOnError || o.config.Batch.ContinueOnError

	o.logger.Info().
		Int("references", len(m.References)).
		Int("concurrency", concurrency).
		Bool("continue_on_error", continueOnError).
		Msg("Starting batch resolution")

	// Results are prefilled so a cancelled run still names every reference.
	refs := make([]refWithIndex, len(m.References))
	results := make([]BatchResult, len(m.References))
	for i, ref := range m.References {
		refs[i] = refWithIndex{index: i, ref: ref}
		results[i] = BatchResult{URL: ref.URL}
	}

	var bar *progressbar.ProgressBar
	if o.progress {
		bar = utils.NewProgressBar(len(refs), utils.DescResolving)
	}

	var resultsMu sync.Mutex

	var firstError error
	var firstErrorMu sync.Mutex

	cancelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := utils.ParallelForEach(cancelCtx, refs, concurrency, func(ctx context.Context, item refWithIndex) error {
		start := time.Now()
		repo, err := o.Resolve(ctx, item.ref.URL, o.referenceOptions(item.ref))
		elapsed := time.Since(start)

		result := BatchResult{URL: item.ref.URL, Repo: repo, Duration: elapsed}
		if err != nil {
			result.Error = err.Error()
		}

		resultsMu.Lock()
		results[item.index] = result
		resultsMu.Unlock()

		if bar != nil {
			_ = bar.Add(1)
		}

		if err != nil {
			o.logger.Error().
				Err(err).
				Str("url", item.ref.URL).
				Dur("duration", elapsed).
				Msg("Reference failed")

			firstErrorMu.Lock()
			if firstError == nil {
				firstError = fmt.Errorf("%s: %w", item.ref.URL, err)
			}
			firstErrorMu.Unlock()

			if !continueOnError {
				cancel()
			}
			return err
		}

		if repo == nil {
			o.logger.Warn().Str("url", item.ref.URL).Msg("Reference not identified, tolerated by fail_ok")
		}
		return nil
	})

	if bar != nil {
		_ = bar.Finish()
	}

	if ctx.Err() != nil {
		o.logger.Warn().Msg("Batch resolution cancelled")
		return results, ctx.Err()
	}

	if !continueOnError && firstError != nil {
		o.logger.Warn().Msg("Stopping batch (continue_on_error=false)")
		return results, firstError
	}

	if err := utils.FirstError(errs); err != nil && firstError == nil {
		firstError = err
	}

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}

	o.logger.Info().
		Int("succeeded", len(refs)-failures).
		Int("failed", failures).
		Msg("Batch resolution finished")

	if firstError != nil {
		return results, fmt.Errorf("batch completed with %d/%d failures: %w", failures, len(refs), firstError)
	}
	return results, nil
}

// referenceOptions layers a reference's own settings over the run-wide
// resolve options.
func (o *Orchestrator) referenceOptions(ref manifest.Reference) domain.ResolveOptions {
	opts := o.BaseResolveOptions()
	if ref.Probe != nil {
		opts.AllowProbe = *ref.Probe
	}
	if ref.FailOK != nil {
		opts.FailOK = *ref.FailOK
	}
	return opts
}

// WriteBatchReport serializes batch results as indented JSON. An empty path
// or "-" writes to stdout.
func WriteBatchReport(path string, results []BatchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize batch report: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := utils.EnsureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}
	return nil
}
