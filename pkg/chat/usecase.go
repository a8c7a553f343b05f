// Package chat answers career questions end to end: gate, enrich, remember, generate.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/classifier"
	"github.com/artem13815/careerassist/pkg/conversation"
	"github.com/artem13815/careerassist/pkg/enrichment"
	"github.com/artem13815/careerassist/pkg/jobs"
	"github.com/artem13815/careerassist/pkg/llm"
	"github.com/artem13815/careerassist/pkg/logging"
)

const (
	DefaultUserID = "default_user"

	RefusalText = "I can only answer questions related to jobs, careers, and professional development. Please ask me something about job searching, resume writing, interviews, career growth, or workplace skills."
)

// Reply is what one chat turn returns. Jobs and Salary are nil when there is nothing to show.
type Reply struct {
	Response string               `json:"response"`
	Jobs     []jobs.Listing       `json:"job_data"`
	Salary   *jobs.SalaryEstimate `json:"salary_data"`
}

// UseCase описывает сценарии карьерного чата.
type UseCase interface {
	HandleMessage(ctx context.Context, userID, query, location string) (Reply, error)
	Reset(ctx context.Context, userID string) error
}

type Enricher interface {
	Enrich(ctx context.Context, query, location string) enrichment.Result
}

// TokenCounter limits message size when maxTokens > 0.
type TokenCounter interface {
	Count(text string) int
}

type Config struct {
	Model     string
	MaxTokens int
	// Timeout bounds the advice model call; zero leaves only the request context.
	Timeout time.Duration
	// MaxMessageTokens rejects longer messages; zero disables the check.
	MaxMessageTokens int
}

type service struct {
	gate     classifier.Gate
	enricher Enricher
	store    *conversation.Store
	model    llm.ChatModel
	tokens   TokenCounter
	cfg      Config
}

func NewService(gate classifier.Gate, enricher Enricher, store *conversation.Store, model llm.ChatModel, tokens TokenCounter, cfg Config) UseCase {
	return &service{gate: gate, enricher: enricher, store: store, model: model, tokens: tokens, cfg: cfg}
}

func (s *service) HandleMessage(ctx context.Context, userID, query, location string) (Reply, error) {
	if strings.TrimSpace(query) == "" {
		return Reply{}, goerr.Wrap(ErrValidation, "message is required")
	}
	if s.cfg.MaxMessageTokens > 0 && s.tokens != nil {
		if n := s.tokens.Count(query); n > s.cfg.MaxMessageTokens {
			return Reply{}, goerr.Wrap(ErrValidation, "message is too long",
				goerr.V("tokens", n), goerr.V("limit", s.cfg.MaxMessageTokens))
		}
	}
	if userID == "" {
		userID = DefaultUserID
	}
	ctx, log := logging.WithUser(ctx, userID)

	ok, err := s.gate.IsCareerRelated(ctx, query)
	if err != nil {
		return Reply{}, failure(ErrClassification, err, "could not classify message")
	}
	if !ok {
		log.Info("off-topic message refused")
		return Reply{Response: RefusalText}, nil
	}

	enriched := s.enricher.Enrich(ctx, query, location)
	log.Debug("message enriched",
		"job_intent", enriched.Intents.JobListings, "salary_intent", enriched.Intents.Salary,
		"jobs", len(enriched.Jobs), "salary", enriched.Salary != nil)

	response, err := s.store.Exchange(ctx, userID, enriched.Query, s.generate)
	if err != nil {
		return Reply{}, failure(ErrGeneration, err, "could not generate reply", goerr.V("model", s.cfg.Model))
	}

	reply := Reply{Response: response, Salary: enriched.Salary}
	if len(enriched.Jobs) > 0 {
		reply.Jobs = enriched.Jobs
	}
	return reply, nil
}

func (s *service) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		userID = DefaultUserID
	}
	ctx, log := logging.WithUser(ctx, userID)
	if _, err := s.store.Reset(ctx, userID); err != nil {
		return goerr.Wrap(err, "could not reset conversation")
	}
	log.Info("conversation reset")
	return nil
}

func (s *service) generate(ctx context.Context, t conversation.Transcript) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.model.Complete(ctx, llm.Request{
		Model:     s.cfg.Model,
		Messages:  t,
		MaxTokens: s.cfg.MaxTokens,
	})
}
