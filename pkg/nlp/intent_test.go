package nlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordDetector(t *testing.T) {
	d := NewKeywordDetector(DefaultKeywords())

	tests := []struct {
		name  string
		query string
		want  Intents
	}{
		{
			name:  "job listings",
			query: "find jobs data analyst",
			want:  Intents{JobListings: true, SearchTerm: "data analyst"},
		},
		{
			name:  "salary keyword only stripped",
			query: "what's the salary for a nurse",
			want:  Intents{Salary: true, JobTitle: "for a nurse"},
		},
		{
			name:  "every occurrence removed",
			query: "Find Jobs for welders, find jobs near me",
			want:  Intents{JobListings: true, SearchTerm: "for welders, near me"},
		},
		{
			name:  "both intents",
			query: "open positions and salary for plumber",
			want:  Intents{JobListings: true, Salary: true, SearchTerm: "and salary for plumber", JobTitle: "open positions and for plumber"},
		},
		{
			name:  "longest filler wins",
			query: "how much does a nurse earn",
			want:  Intents{Salary: true, JobTitle: "a nurse"},
		},
		{
			name:  "keyword only",
			query: "salary?",
			want:  Intents{Salary: true},
		},
		{
			name:  "punctuation after filler",
			query: "How much salary?!",
			want:  Intents{Salary: true},
		},
		{
			name:  "no intent",
			query: "How should I prepare for an interview?",
			want:  Intents{},
		},
		{
			name:  "substring match",
			query: "where can I learn go",
			want:  Intents{Salary: true, JobTitle: "where can i l go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.query))
		})
	}
}

func TestFillerWithoutRemainder(t *testing.T) {
	d := NewKeywordDetector(DefaultKeywords())
	got := d.Detect("what is the pay")
	assert.True(t, got.Salary)
	assert.Empty(t, got.JobTitle)
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("job_listings:\n  - vacancies\n  - Hiring\nfillers: []\n"), 0o600))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"vacancies", "Hiring"}, kw.JobListings)
	assert.Equal(t, DefaultKeywords().Salary, kw.Salary)
	assert.Empty(t, kw.Fillers)

	got := NewKeywordDetector(kw).Detect("Hiring now: what's the go developer market")
	assert.True(t, got.JobListings)
	assert.Equal(t, "now: what's the go developer market", got.SearchTerm)
}

func TestLoadKeywordsErrors(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("salary: [unterminated"), 0o600))
	_, err = LoadKeywords(path)
	assert.Error(t, err)
}
