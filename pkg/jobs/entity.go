package jobs

import "context"

// Listing is a job posting returned by the search provider. Built per request, never stored.
type Listing struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	ApplyLink string `json:"link"`
	PostedAt  string `json:"date_posted"`
}

// SalaryEstimate holds salary statistics for a job title.
// Nil amounts mean the provider did not report them.
type SalaryEstimate struct {
	JobTitle     string   `json:"job_title"`
	MinSalary    *float64 `json:"min_salary"`
	MaxSalary    *float64 `json:"max_salary"`
	MedianSalary *float64 `json:"median_salary"`
	Currency     string   `json:"currency"`
}

// HasMedian reports whether the median is present and non-zero.
func (s *SalaryEstimate) HasMedian() bool {
	return s != nil && s.MedianSalary != nil && *s.MedianSalary != 0
}

// Searcher ищет вакансии у внешнего провайдера.
type Searcher interface {
	SearchJobs(ctx context.Context, query, location string, limit int) ([]Listing, error)
}

// SalaryEstimator возвращает оценку зарплаты по должности.
// Returns nil without error when the provider has no data for the title.
type SalaryEstimator interface {
	EstimateSalary(ctx context.Context, jobTitle, location string) (*SalaryEstimate, error)
}
