package nlp

import (
	"os"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"go.yaml.in/yaml/v4"
)

// Intents is what the detector extracted from one query.
type Intents struct {
	JobListings bool   `json:"job_listings"`
	Salary      bool   `json:"salary"`
	SearchTerm  string `json:"search_term,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
}

// IntentDetector decides which enrichment sources a query asks for.
type IntentDetector interface {
	Detect(query string) Intents
}

// Keywords configures KeywordDetector. Matching is plain substring matching on the
// lower-cased query, so "earn" also fires on "learn".
type Keywords struct {
	JobListings []string `yaml:"job_listings"`
	Salary      []string `yaml:"salary"`
	Fillers     []string `yaml:"fillers"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		JobListings: []string{"job listings", "job openings", "find jobs", "search jobs", "open positions"},
		Salary:      []string{"salary", "pay", "compensation", "earn", "income"},
		Fillers:     []string{"what's the", "what is the", "what are the", "how much does", "how much do", "how much"},
	}
}

// LoadKeywords reads a YAML keyword file. Sections missing from the file keep their defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	raw, err := os.ReadFile(path)
	if err != nil {
		return kw, goerr.Wrap(err, "read intents file", goerr.V("path", path))
	}
	var file Keywords
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return kw, goerr.Wrap(err, "parse intents file", goerr.V("path", path))
	}
	if len(file.JobListings) > 0 {
		kw.JobListings = file.JobListings
	}
	if len(file.Salary) > 0 {
		kw.Salary = file.Salary
	}
	if file.Fillers != nil {
		kw.Fillers = file.Fillers
	}
	return kw, nil
}

type KeywordDetector struct {
	jobs    []string
	salary  []string
	fillers []string
}

func NewKeywordDetector(kw Keywords) *KeywordDetector {
	fillers := lowerAll(kw.Fillers)
	// longest first, so "how much does" wins over "how much"
	sort.SliceStable(fillers, func(i, j int) bool { return len(fillers[i]) > len(fillers[j]) })
	return &KeywordDetector{
		jobs:    lowerAll(kw.JobListings),
		salary:  lowerAll(kw.Salary),
		fillers: fillers,
	}
}

func (d *KeywordDetector) Detect(query string) Intents {
	q := strings.ToLower(query)
	var out Intents
	if ContainsAny(q, d.jobs) {
		out.JobListings = true
		out.SearchTerm = d.term(q, d.jobs)
	}
	if ContainsAny(q, d.salary) {
		out.Salary = true
		out.JobTitle = d.term(q, d.salary)
	}
	return out
}

// term is what is left of q once the keywords and a leading filler are gone.
// Leftovers without a single letter or digit, like "?", count as no term.
func (d *KeywordDetector) term(q string, keywords []string) string {
	t := Squash(StripAll(q, keywords))
	for _, f := range d.fillers {
		if t == f {
			return ""
		}
		if strings.HasPrefix(t, f+" ") {
			t = strings.TrimSpace(t[len(f):])
			break
		}
	}
	if !HasWord(t) {
		return ""
	}
	return t
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
