package runner

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/cache"
	"github.com/yaklabco/detype/pkg/detype"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/fsutil"
	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/mdcode"
	"github.com/yaklabco/detype/pkg/textdiff"
)

// Runner transforms many files with one Transformer.
type Runner struct {
	Transformer *detype.Transformer

	// Cache, when set, stores outputs keyed by input text and options.
	Cache *cache.Cache

	// CacheSalt separates cache entries of different tool versions and
	// formatters.
	CacheSalt string
}

// New creates a Runner for transformer.
func New(transformer *detype.Transformer) *Runner {
	if transformer == nil {
		transformer = &detype.Transformer{}
	}
	return &Runner{Transformer: transformer}
}

// Run plans the jobs for opts and processes them concurrently. Per-file
// failures are recorded in the outcomes; the returned error is reserved for
// planning failures and cancellation.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	jobs, err := Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(jobs))}
	result.Stats.FilesDiscovered = len(jobs)
	if len(jobs) == 0 {
		return result, nil
	}

	limit := opts.Jobs
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	logger.Debug("running", logging.FieldFilesDiscovered, len(jobs), logging.FieldJobs, limit)

	// Each goroutine owns one index, so no lock is needed.
	outcomes := make([]FileOutcome, len(jobs))
	done := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(limit, len(jobs)))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.process(gctx, job, opts)
			done[i] = true
			return nil
		})
	}
	waitErr := g.Wait()

	for i, outcome := range outcomes {
		if done[i] {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	if waitErr != nil {
		return result, fmt.Errorf("run: %w", waitErr)
	}

	logger.Debug("run finished",
		logging.FieldFilesTransformed, result.Stats.FilesTransformed,
		logging.FieldFilesFailed, result.Stats.FilesFailed)
	return result, nil
}

// process transforms one file and writes its output.
func (r *Runner) process(ctx context.Context, job Job, opts Options) FileOutcome {
	logger := logging.FromContext(ctx).With(logging.FieldPath, job.Input)
	outcome := FileOutcome{Job: job}

	text, info, err := fsutil.ReadText(ctx, job.Input)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	formatterOptions, err := detype.FormatterOptionsFor(ctx, job.Input, opts.Transform.FormatterOptions)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	key := cache.NewKey(
		r.CacheSalt,
		opts.Mode.String(),
		job.Input,
		strconv.FormatBool(opts.Transform.RemoveTSComments),
		fmt.Sprint(formatterOptions),
		text,
	)
	output, hit := r.cached(ctx, key)
	if hit {
		outcome.CacheHit = true
	} else {
		output, err = r.transform(ctx, job, text, opts, formatterOptions)
		if err != nil {
			outcome.Error = err
			return outcome
		}
		if err := r.Cache.Put(ctx, key, cache.Entry{Path: job.Input, Output: output}); err != nil {
			logger.Warn("cache write failed", logging.FieldError, err)
		}
	}
	logger.Debug("transformed", logging.FieldOutput, job.Output, logging.FieldCacheHit, hit)

	if opts.Diff {
		outcome.Diff = textdiff.Compute(job.Input, job.Output, fsutil.NormalizeNewlines(text), output)
	}
	if opts.DryRun {
		return outcome
	}

	outcome.Written, err = detype.WriteOutput(ctx, info, job.Output, output)
	if err != nil {
		outcome.Error = err
	}
	return outcome
}

func (r *Runner) cached(ctx context.Context, key cache.Key) (string, bool) {
	entry, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Warn("cache read failed", logging.FieldError, err)
		return "", false
	}
	if !hit {
		return "", false
	}
	return entry.Output, true
}

func (r *Runner) transform(ctx context.Context, job Job, text string, opts Options, formatterOptions format.Options) (string, error) {
	topts := opts.Transform
	topts.FormatterOptions = formatterOptions

	switch {
	case opts.Mode == ModeMagic:
		return r.Transformer.RemoveMagicComments(ctx, text, job.Input, formatterOptions)
	case job.Kind == langdetect.KindMarkdown:
		return mdcode.Transform(ctx, text, job.Input, func(ctx context.Context, code, fileID string) (string, error) {
			return r.Transformer.Transform(ctx, code, fileID, topts)
		})
	}
	return r.Transformer.Transform(ctx, text, job.Input, topts)
}
