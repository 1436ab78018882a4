// Package pipeline orchestrates the resume retrieval and evaluation flow:
// scan the listing, fetch every resume body, evaluate each one, then merge
// and rank. Failures are isolated per resume and never abort the run.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/ai"
	"github.com/Boniole/test-task-candidates-scraper/internal/workua"
)

// Scanner pages through listing search results for a query.
type Scanner interface {
	Scan(ctx context.Context, query string) ([]*workua.ListingRecord, error)
}

// Fetcher retrieves the free-text body of a single resume page.
type Fetcher interface {
	FetchDetail(ctx context.Context, link string) (string, error)
}

// Config tunes the hardening knobs. Zero values reproduce the permissive
// defaults: unlimited in-flight requests and no per-call deadline.
type Config struct {
	// MaxConcurrent caps in-flight requests within one fan-out stage.
	MaxConcurrent int `mapstructure:"max-concurrent"`
	// RequestTimeout bounds each detail fetch and each evaluation call.
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

type Pipeline struct {
	scanner   Scanner
	fetcher   Fetcher
	evaluator ai.Evaluator
	logger    *zap.Logger

	maxConcurrent  int
	requestTimeout time.Duration
}

func New(scanner Scanner, fetcher Fetcher, evaluator ai.Evaluator, cfg *Config, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		scanner:   scanner,
		fetcher:   fetcher,
		evaluator: evaluator,
		logger:    logger,
	}

	if cfg != nil {
		p.maxConcurrent = cfg.MaxConcurrent
		p.requestTimeout = cfg.RequestTimeout
	}

	return p
}

// slot holds one fan-out outcome, stored at the task's submission index.
type slot[T any] struct {
	value T
	err   error
}

// fanOut runs n tasks concurrently and collects their outcomes in submission
// order. When limit is positive, at most limit tasks are in flight at once.
// All tasks run to completion; a failing task never cancels its siblings.
func fanOut[T any](ctx context.Context, n, limit int, task func(ctx context.Context, idx int) (T, error)) []slot[T] {
	slots := make([]slot[T], n)

	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			value, err := task(ctx, idx)
			slots[idx] = slot[T]{value: value, err: err}
		}(i)
	}
	wg.Wait()

	return slots
}

// Run executes the full pipeline for a position query. It never fails as a
// whole: per-resume failures degrade to missing text or a missing evaluation,
// and a total upstream outage yields an empty result.
func (p *Pipeline) Run(ctx context.Context, query string) *Result {
	records, err := p.scanner.Scan(ctx, query)
	if err != nil {
		p.logger.Warn("listing scan stopped early", zap.String("query", query), zap.Error(err))
	}

	p.logger.Info("listing scan finished", zap.String("query", query), zap.Int("records", len(records)))

	if len(records) == 0 {
		return &Result{Items: []*Resume{}}
	}

	// Stage 1: fetch every resume body. The whole batch resolves before
	// evaluation starts.
	details := fanOut(ctx, len(records), p.maxConcurrent, func(ctx context.Context, idx int) (string, error) {
		callCtx, cancel := p.callContext(ctx)
		defer cancel()
		return p.fetcher.FetchDetail(callCtx, records[idx].Link)
	})

	// Indices whose fetch succeeded; failed fetches are skipped entirely.
	fetched := make([]int, 0, len(records))
	for idx, detail := range details {
		if detail.err != nil {
			p.logger.Warn("skipping resume, detail fetch failed",
				zap.String("link", records[idx].Link),
				zap.Error(detail.err),
			)
			continue
		}
		fetched = append(fetched, idx)
	}

	// Stage 2: evaluate every fetched body, again as one full batch.
	evaluations := fanOut(ctx, len(fetched), p.maxConcurrent, func(ctx context.Context, i int) (*ai.Evaluation, error) {
		callCtx, cancel := p.callContext(ctx)
		defer cancel()
		return p.evaluator.Evaluate(callCtx, details[fetched[i]].value)
	})

	// Stage 3: assemble and rank.
	items := make([]*Resume, 0, len(fetched))
	for i, idx := range fetched {
		if err := evaluations[i].err; err != nil {
			p.logger.Warn("resume kept without evaluation",
				zap.String("link", records[idx].Link),
				zap.Bool("invalid_response", errors.Is(err, ai.ErrInvalidEvaluation)),
				zap.Error(err),
			)
		}

		resume, err := assemble(records[idx], details[idx].value, evaluations[i])
		if err != nil {
			p.logger.Warn("excluding resume, assembly failed",
				zap.String("link", records[idx].Link),
				zap.Error(err),
			)
			continue
		}
		items = append(items, resume)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score() > items[j].Score()
	})

	result := &Result{Items: items}

	p.logger.Info("pipeline finished",
		zap.String("query", query),
		zap.Int("resumes", result.Len()),
		zap.Int("scored", result.Scored()),
	)

	return result
}

var errMissingLink = errors.New("resume has no link")

// assemble builds the final entity for one listing record. A resume without
// an evaluation is kept; a resume without a link is not.
func assemble(record *workua.ListingRecord, resumeText string, evaluation slot[*ai.Evaluation]) (*Resume, error) {
	if record.Link == "" {
		return nil, errMissingLink
	}

	resume := &Resume{
		Title:      record.Title,
		Name:       record.Name,
		Age:        record.Age,
		Link:       record.Link,
		Location:   record.Location,
		Education:  record.Education,
		LastUpdate: record.LastUpdate,
		ResumeText: resumeText,
	}

	if evaluation.err == nil && evaluation.value != nil {
		average := evaluation.value.Average()
		resume.Evaluation = evaluation.value
		resume.AverageScore = &average
	}

	return resume, nil
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.requestTimeout > 0 {
		return context.WithTimeout(ctx, p.requestTimeout)
	}
	return context.WithCancel(ctx)
}
