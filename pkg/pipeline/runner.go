package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
	"github.com/bjoernmichaelsen/ghdepup/pkg/kv"
	"github.com/bjoernmichaelsen/ghdepup/pkg/observability"
)

// Runner executes resolution runs against a tag source.
//
// The Runner keeps no per-run state. Multiple goroutines can use the same
// Runner concurrently; every call builds its own descriptors.
type Runner struct {
	Source      TagSource
	Logger      *log.Logger
	Concurrency int  // Maximum fetches in flight, DefaultConcurrency if <= 0
	Refresh     bool // Bypass cached tag lists
}

// NewRunner creates a runner for source.
// If logger is nil, log.Default() is used.
func NewRunner(source TagSource, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:      source,
		Logger:      logger,
		Concurrency: DefaultConcurrency,
	}
}

// Resolve builds the descriptors declared in store, fetches their tags and
// selects the best version of each. It stops in StateResolved or, on error,
// StateAborted; the result is returned in both cases.
func (r *Runner) Resolve(ctx context.Context, store kv.Store) (*Result, error) {
	res := r.newResult()
	if err := r.resolve(ctx, store, res); err != nil {
		return r.finish(ctx, res, StateAborted, err)
	}
	return r.finish(ctx, res, StateResolved, nil)
}

func (r *Runner) newResult() *Result {
	return &Result{
		RunID:   uuid.NewString(),
		State:   StateConfigured,
		Started: time.Now(),
	}
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func (r *Runner) concurrency() int {
	if r.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return r.Concurrency
}

// =============================================================================
// Stages
// =============================================================================

func (r *Runner) resolve(ctx context.Context, store kv.Store, res *Result) error {
	logger := r.logger()

	// Configured
	res.Descriptors = deps.BuildAll(store, deps.Options{Logger: logger.Warnf})
	if err := validateDescriptors(res.Descriptors); err != nil {
		return err
	}
	if r.Source == nil {
		return apperr.New(apperr.ErrCodeInternal, "no tag source configured")
	}
	logger.Debug("configured", "run", res.RunID, "deps", len(res.Descriptors))

	// Fetching
	res.State = StateFetching
	start := time.Now()
	if err := r.fetchAll(ctx, res.Descriptors); err != nil {
		return err
	}
	logger.Debug("fetched tags", "run", res.RunID, "deps", len(res.Descriptors), "duration", time.Since(start))

	// Resolved
	hooks := observability.Pipeline()
	for _, d := range res.Descriptors {
		d.Resolve()
		_, found := d.Best()
		hooks.OnResolved(ctx, d.Name, found)
		logger.Debug("resolved",
			"dep", d.Name,
			"project", d.Project,
			"tags", len(d.AvailableTags),
			"versions", len(d.AvailableVersions),
			"best", d.BestString(),
		)
	}
	res.State = StateResolved
	return nil
}

// validateDescriptors rejects descriptors that cannot be fetched.
func validateDescriptors(descs []*deps.Descriptor) error {
	var errs []error
	for _, d := range descs {
		if err := apperr.ValidateDependencyName(d.Name); err != nil {
			errs = append(errs, err)
		}
		if d.Project == "" {
			errs = append(errs, apperr.New(apperr.ErrCodeInvalidConfig,
				"%s: missing %s", d.Name, deps.Key(d.Name, deps.AttrProject)))
		}
	}
	return apperr.Collect(apperr.ErrCodeInvalidConfig, errs...)
}

// fetchAll fetches the tags of every descriptor concurrently and waits for
// all of them. Each goroutine owns one descriptor and one error slot.
func (r *Runner) fetchAll(ctx context.Context, descs []*deps.Descriptor) error {
	errs := make([]error, len(descs))
	sem := make(chan struct{}, r.concurrency())

	var wg sync.WaitGroup
	for i, d := range descs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = fmt.Errorf("%s (%s): %w", d.Name, d.Project, ctx.Err())
				return
			}
			defer func() { <-sem }()
			errs[i] = r.fetch(ctx, d)
		}()
	}
	wg.Wait()

	return apperr.Collect(apperr.ErrCodeFetchFailed, errs...)
}

func (r *Runner) fetch(ctx context.Context, d *deps.Descriptor) error {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, d.Name, d.Project)

	start := time.Now()
	tags, err := r.Source.FetchTags(ctx, d.Project, r.Refresh)
	hooks.OnFetchComplete(ctx, d.Name, d.Project, len(tags), time.Since(start), err)
	if err != nil {
		r.logger().Debug("fetch failed", "dep", d.Name, "project", d.Project, "err", err)
		return fmt.Errorf("%s (%s): %w", d.Name, d.Project, err)
	}

	d.SetTags(tags)
	return nil
}

// finish stamps the final state onto res and reports the run.
func (r *Runner) finish(ctx context.Context, res *Result, state State, err error) (*Result, error) {
	res.State = state
	res.Duration = time.Since(res.Started)
	observability.Pipeline().OnRunComplete(ctx, state.String(), len(res.Descriptors), res.Duration, err)

	logger := r.logger()
	if err != nil {
		logger.Debug("run aborted", "run", res.RunID, "duration", res.Duration)
		return res, err
	}
	logger.Info("run complete", "run", res.RunID, "state", state, "deps", len(res.Descriptors), "duration", res.Duration)
	return res, nil
}
