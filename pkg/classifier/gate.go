// Package classifier decides whether a query is about jobs and careers.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/llm"
)

const (
	systemPrompt = "You determine if a query is related to jobs, careers, professional development, job searching, interviews, resumes, or workplace issues. Respond with only 'yes' or 'no'."
	userPrompt   = "Is this query related to jobs, careers, or professional development? Query: '%s'"
)

// Gate проверяет, относится ли вопрос к карьерной тематике.
type Gate interface {
	IsCareerRelated(ctx context.Context, query string) (bool, error)
}

type service struct {
	model     llm.ChatModel
	modelName string
	maxTokens int
	timeout   time.Duration
}

// NewService builds a Gate on top of a chat model. A zero timeout means the caller's
// context is the only bound.
func NewService(model llm.ChatModel, modelName string, maxTokens int, timeout time.Duration) Gate {
	return &service{model: model, modelName: modelName, maxTokens: maxTokens, timeout: timeout}
}

// IsCareerRelated is true only for an exact "yes". Anything else the model says is a no.
func (s *service) IsCareerRelated(ctx context.Context, query string) (bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.model.Complete(ctx, llm.Request{
		Model: s.modelName,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf(userPrompt, query)},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return false, goerr.Wrap(err, "classifier call failed", goerr.V("model", s.modelName))
	}
	return strings.ToLower(strings.TrimSpace(reply)) == "yes", nil
}
