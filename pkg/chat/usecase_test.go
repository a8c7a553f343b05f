package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/careerassist/pkg/conversation"
	"github.com/artem13815/careerassist/pkg/enrichment"
	"github.com/artem13815/careerassist/pkg/jobs"
	"github.com/artem13815/careerassist/pkg/llm"
	"github.com/artem13815/careerassist/pkg/nlp"
)

type stubGate struct {
	ok    bool
	err   error
	calls atomic.Int32
}

func (g *stubGate) IsCareerRelated(ctx context.Context, query string) (bool, error) {
	g.calls.Add(1)
	return g.ok, g.err
}

type stubJobs struct {
	listings  []jobs.Listing
	searchErr error
	estimate  *jobs.SalaryEstimate
	calls     atomic.Int32
}

func (s *stubJobs) SearchJobs(ctx context.Context, query, location string, limit int) ([]jobs.Listing, error) {
	s.calls.Add(1)
	return s.listings, s.searchErr
}

func (s *stubJobs) EstimateSalary(ctx context.Context, jobTitle, location string) (*jobs.SalaryEstimate, error) {
	s.calls.Add(1)
	return s.estimate, nil
}

type fixture struct {
	gate  *stubGate
	jobs  *stubJobs
	store *conversation.Store
	svc   UseCase
	calls atomic.Int32
}

func newFixture(t *testing.T, model llm.ChatModel) *fixture {
	t.Helper()
	f := &fixture{gate: &stubGate{ok: true}, jobs: &stubJobs{}, store: conversation.NewStore()}
	if model == nil {
		model = llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
			f.calls.Add(1)
			return "advice for: " + req.Messages[len(req.Messages)-1].Content, nil
		})
	}
	pipeline := enrichment.New(nlp.NewKeywordDetector(nlp.DefaultKeywords()), f.jobs, f.jobs)
	f.svc = NewService(f.gate, pipeline, f.store, model, nlp.NewTokenCounter(), Config{Model: "gpt-4-turbo", MaxTokens: 1000})
	return f
}

func transcript(t *testing.T, s *conversation.Store, userID string) conversation.Transcript {
	t.Helper()
	tr, err := s.GetOrInit(context.Background(), userID)
	require.NoError(t, err)
	return tr
}

func TestRefusalSkipsEverything(t *testing.T) {
	f := newFixture(t, nil)
	f.gate.ok = false

	reply, err := f.svc.HandleMessage(context.Background(), "u", "find jobs astronaut, what's the weather?", "")
	require.NoError(t, err)
	assert.Equal(t, RefusalText, reply.Response)
	assert.Nil(t, reply.Jobs)
	assert.Nil(t, reply.Salary)
	assert.Zero(t, f.jobs.calls.Load())
	assert.Zero(t, f.calls.Load())
	assert.Len(t, transcript(t, f.store, "u"), 1)
}

func TestHandleMessageStoresEnrichedQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.jobs.listings = []jobs.Listing{{Title: "Data Analyst", Company: "Acme", Location: "Austin, US"}}

	reply, err := f.svc.HandleMessage(context.Background(), "u", "find jobs data analyst", "Austin")
	require.NoError(t, err)
	require.Len(t, reply.Jobs, 1)
	assert.Nil(t, reply.Salary)
	assert.Contains(t, reply.Response, "1. Data Analyst at Acme in Austin, US")

	tr := transcript(t, f.store, "u")
	require.Len(t, tr, 3)
	assert.Equal(t, llm.RoleUser, tr[1].Role)
	assert.True(t, strings.HasPrefix(tr[1].Content, "find jobs data analyst\n\nHere's real-time job information"))
	assert.Equal(t, llm.RoleAssistant, tr[2].Role)
	assert.Equal(t, reply.Response, tr[2].Content)
}

func TestModelReceivesSettings(t *testing.T) {
	var got llm.Request
	f := newFixture(t, llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		got = req
		return "ok", nil
	}))
	_, err := f.svc.HandleMessage(context.Background(), "", "How do I prepare for a behavioral interview?", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4-turbo", got.Model)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, got.Messages[0].Role)

	assert.Len(t, transcript(t, f.store, DefaultUserID), 3)
}

func TestJobProviderFailureStillAnswers(t *testing.T) {
	f := newFixture(t, nil)
	f.jobs.searchErr = errors.New("rapidapi 503")

	reply, err := f.svc.HandleMessage(context.Background(), "u", "find jobs nurse", "")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Response)
	assert.Nil(t, reply.Jobs)
}

func TestSalaryDataReturned(t *testing.T) {
	f := newFixture(t, nil)
	median := 78000.0
	f.jobs.estimate = &jobs.SalaryEstimate{MedianSalary: &median, Currency: "USD"}

	reply, err := f.svc.HandleMessage(context.Background(), "u", "what's the salary for a nurse", "")
	require.NoError(t, err)
	require.NotNil(t, reply.Salary)
	assert.Equal(t, "for a nurse", reply.Salary.JobTitle)
}

func TestValidation(t *testing.T) {
	f := newFixture(t, nil)
	for _, msg := range []string{"", "   \n"} {
		_, err := f.svc.HandleMessage(context.Background(), "u", msg, "")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	}
	assert.Zero(t, f.gate.calls.Load())
}

func TestMessageTokenLimit(t *testing.T) {
	f := &fixture{gate: &stubGate{ok: true}, store: conversation.NewStore()}
	words := tokenFunc(func(s string) int { return len(strings.Fields(s)) })
	svc := NewService(f.gate, nil, f.store, nil, words, Config{MaxMessageTokens: 3})

	_, err := svc.HandleMessage(context.Background(), "u", "one two three four", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.gate.calls.Load())
}

type tokenFunc func(string) int

func (f tokenFunc) Count(s string) int { return f(s) }

func TestClassifierFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.gate.err = errors.New("openai 500")

	_, err := f.svc.HandleMessage(context.Background(), "u", "resume tips", "")
	assert.ErrorIs(t, err, ErrClassification)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Zero(t, f.calls.Load())
}

func TestGenerationFailureLeavesHistory(t *testing.T) {
	boom := errors.New("model overloaded")
	f := newFixture(t, llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "", boom
	}))

	_, err := f.svc.HandleMessage(context.Background(), "u", "resume tips", "")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Len(t, transcript(t, f.store, "u"), 1)
}

func TestGenerationTimeout(t *testing.T) {
	f := &fixture{gate: &stubGate{ok: true}, jobs: &stubJobs{}, store: conversation.NewStore()}
	model := llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	pipeline := enrichment.New(nlp.NewKeywordDetector(nlp.DefaultKeywords()), f.jobs, f.jobs)
	svc := NewService(f.gate, pipeline, f.store, model, nil, Config{Timeout: 20 * time.Millisecond})

	_, err := svc.HandleMessage(context.Background(), "u", "resume tips", "")
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(err))
}

func TestConcurrentMessagesSameUser(t *testing.T) {
	f := newFixture(t, nil)
	var wg sync.WaitGroup
	for _, q := range []string{"how do I ask for a raise", "how do I write a resume"} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, err := f.svc.HandleMessage(context.Background(), "same", q, "")
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	tr := transcript(t, f.store, "same")
	require.Len(t, tr, 5)
	for i := 1; i < len(tr); i += 2 {
		assert.Equal(t, llm.RoleUser, tr[i].Role)
		assert.Equal(t, "advice for: "+tr[i].Content, tr[i+1].Content)
	}
}

func TestWaitingForBusyConversationTimesOut(t *testing.T) {
	inside := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f := newFixture(t, llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		once.Do(func() { close(inside) })
		<-release
		return "done", nil
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.svc.HandleMessage(context.Background(), "u", "resume tips", "")
	}()
	<-inside

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.svc.HandleMessage(ctx, "u", "interview tips", "")
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(err))
	assert.ErrorIs(t, f.svc.Reset(ctx, "u"), context.DeadlineExceeded)

	close(release)
	<-done
	assert.Len(t, transcript(t, f.store, "u"), 3)
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.HandleMessage(context.Background(), "u", "resume tips", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(context.Background(), "u"))
	tr := transcript(t, f.store, "u")
	require.Len(t, tr, 1)
	assert.Equal(t, llm.RoleSystem, tr[0].Role)

	require.NoError(t, f.svc.Reset(context.Background(), ""))
	assert.Len(t, transcript(t, f.store, DefaultUserID), 1)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(failure(ErrGeneration, context.DeadlineExceeded, "slow")))
}
