// Package enrichment appends live job and salary data to a user query.
package enrichment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/artem13815/careerassist/pkg/jobs"
	"github.com/artem13815/careerassist/pkg/logging"
	"github.com/artem13815/careerassist/pkg/nlp"
)

const (
	DefaultJobLimit = 5

	jobsHeader   = "\n\nHere's real-time job information to incorporate in your response:\n"
	salaryFormat = "\n\nIncorporate this salary data in your response: %s typically earns between %s-%s %s with a median of %s %s."
)

// Result is the enriched query together with the data spliced into it.
// Jobs is nil when no listings were found; Salary is nil when there is no estimate.
type Result struct {
	Query   string
	Jobs    []jobs.Listing
	Salary  *jobs.SalaryEstimate
	Intents nlp.Intents
}

type Pipeline struct {
	detector nlp.IntentDetector
	searcher jobs.Searcher
	salaries jobs.SalaryEstimator
	limit    int
	timeout  time.Duration
}

type Option func(*Pipeline)

func WithJobLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

func New(detector nlp.IntentDetector, searcher jobs.Searcher, salaries jobs.SalaryEstimator, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector: detector,
		searcher: searcher,
		salaries: salaries,
		limit:    DefaultJobLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enrich never fails: provider errors are logged and treated as missing data.
func (p *Pipeline) Enrich(ctx context.Context, query, location string) Result {
	res := Result{Query: query, Intents: p.detector.Detect(query)}
	log := logging.From(ctx)

	// errgroup here only joins the two lookups; errors never leave the goroutines.
	var g errgroup.Group
	if res.Intents.JobListings && res.Intents.SearchTerm != "" && p.searcher != nil {
		term := res.Intents.SearchTerm
		g.Go(func() error {
			callCtx, cancel := p.bound(ctx)
			defer cancel()
			listings, err := p.searcher.SearchJobs(callCtx, term, location, p.limit)
			if err != nil {
				log.Warn("job search degraded", "term", term, "error", err)
				return nil
			}
			if len(listings) > p.limit {
				listings = listings[:p.limit]
			}
			if len(listings) > 0 {
				res.Jobs = listings
			}
			return nil
		})
	}
	if res.Intents.Salary && res.Intents.JobTitle != "" && p.salaries != nil {
		title := res.Intents.JobTitle
		g.Go(func() error {
			callCtx, cancel := p.bound(ctx)
			defer cancel()
			est, err := p.salaries.EstimateSalary(callCtx, title, location)
			if err != nil {
				log.Warn("salary lookup degraded", "title", title, "error", err)
				return nil
			}
			if est != nil && est.JobTitle == "" {
				est.JobTitle = title
			}
			res.Salary = est
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	b.WriteString(query)
	if len(res.Jobs) > 0 {
		b.WriteString(summarizeJobs(res.Jobs))
	}
	if res.Salary.HasMedian() {
		b.WriteString(summarizeSalary(res.Salary))
	}
	res.Query = b.String()
	return res
}

func (p *Pipeline) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func summarizeJobs(listings []jobs.Listing) string {
	var b strings.Builder
	b.WriteString(jobsHeader)
	for i, j := range listings {
		fmt.Fprintf(&b, "%d. %s at %s in %s\n", i+1, j.Title, j.Company, j.Location)
	}
	return b.String()
}

func summarizeSalary(s *jobs.SalaryEstimate) string {
	return fmt.Sprintf(salaryFormat,
		s.JobTitle, amount(s.MinSalary), amount(s.MaxSalary), s.Currency, amount(s.MedianSalary), s.Currency)
}

func amount(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
