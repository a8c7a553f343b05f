// Package jsearch is a client for the JSearch job API published on RapidAPI.
package jsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/jobs"
)

const (
	DefaultBaseURL = "https://jsearch.p.rapidapi.com"
	DefaultHost    = "jsearch.p.rapidapi.com"
)

type Client struct {
	apiKey       string
	host         string
	baseURL      string
	salaryRadius int
	httpDo       *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithSalaryRadius sets the search radius (km) for salary estimates.
func WithSalaryRadius(radius int) Option {
	return func(c *Client) {
		if radius > 0 {
			c.salaryRadius = radius
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		host:         DefaultHost,
		baseURL:      DefaultBaseURL,
		salaryRadius: 100,
		httpDo:       &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Data []struct {
		JobTitle     string `json:"job_title"`
		EmployerName string `json:"employer_name"`
		JobCity      string `json:"job_city"`
		JobCountry   string `json:"job_country"`
		JobApplyLink string `json:"job_apply_link"`
		PostedAtUTC  string `json:"job_posted_at_datetime_utc"`
	} `json:"data"`
}

type salaryResponse struct {
	Data []struct {
		JobTitle       string   `json:"job_title"`
		MinSalary      *float64 `json:"min_salary"`
		MaxSalary      *float64 `json:"max_salary"`
		MedianSalary   *float64 `json:"median_salary"`
		SalaryCurrency string   `json:"salary_currency"`
	} `json:"data"`
}

// SearchJobs returns at most limit postings from the last month.
func (c *Client) SearchJobs(ctx context.Context, query, location string, limit int) ([]jobs.Listing, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("date_posted", "month")
	if location != "" {
		params.Set("location", location)
	}

	var out searchResponse
	if err := c.get(ctx, "/search", params, &out); err != nil {
		return nil, goerr.Wrap(err, "job search failed", goerr.V("query", query))
	}

	listings := make([]jobs.Listing, 0, len(out.Data))
	for _, job := range out.Data {
		if limit > 0 && len(listings) >= limit {
			break
		}
		listings = append(listings, jobs.Listing{
			Title:     job.JobTitle,
			Company:   job.EmployerName,
			Location:  job.JobCity + ", " + job.JobCountry,
			ApplyLink: job.JobApplyLink,
			PostedAt:  job.PostedAtUTC,
		})
	}
	return listings, nil
}

// EstimateSalary returns the first estimate the provider reports, or nil.
func (c *Client) EstimateSalary(ctx context.Context, jobTitle, location string) (*jobs.SalaryEstimate, error) {
	params := url.Values{}
	params.Set("job_title", jobTitle)
	params.Set("location", location)
	params.Set("radius", strconv.Itoa(c.salaryRadius))

	var out salaryResponse
	if err := c.get(ctx, "/estimated-salary", params, &out); err != nil {
		return nil, goerr.Wrap(err, "salary estimate failed", goerr.V("job_title", jobTitle))
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	d := out.Data[0]
	return &jobs.SalaryEstimate{
		JobTitle:     d.JobTitle,
		MinSalary:    d.MinSalary,
		MaxSalary:    d.MaxSalary,
		MedianSalary: d.MedianSalary,
		Currency:     d.SalaryCurrency,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return goerr.New("jsearch api key is empty")
	}
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("path", path))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return goerr.New("unexpected status",
			goerr.V("path", path), goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
	}
	return nil
}
