package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/careerassist/pkg/llm"
)

// careerModel answers like a well-behaved classifier model.
func careerModel(t *testing.T) llm.ChatModel {
	return llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		require.Len(t, req.Messages, 2)
		assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 10, req.MaxTokens)
		q := req.Messages[1].Content
		if strings.Contains(q, "raise") {
			return " Yes\n", nil
		}
		return "No.", nil
	})
}

func TestIsCareerRelated(t *testing.T) {
	gate := NewService(careerModel(t), "gpt-3.5-turbo", 10, time.Second)

	ok, err := gate.IsCareerRelated(context.Background(), "What's the best way to negotiate a raise?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.IsCareerRelated(context.Background(), "What's the weather today?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptQuotesQuery(t *testing.T) {
	var got string
	model := llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		got = req.Messages[1].Content
		return "yes", nil
	})
	_, err := NewService(model, "m", 10, 0).IsCareerRelated(context.Background(), "resume tips")
	require.NoError(t, err)
	assert.Equal(t, "Is this query related to jobs, careers, or professional development? Query: 'resume tips'", got)
}

func TestAmbiguousReplyIsFalse(t *testing.T) {
	for _, reply := range []string{"", "yes, definitely", "maybe", "y", "YES!"} {
		model := llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
			return reply, nil
		})
		ok, err := NewService(model, "m", 10, 0).IsCareerRelated(context.Background(), "q")
		require.NoError(t, err)
		assert.False(t, ok, reply)
	}
}

func TestProviderErrorPropagates(t *testing.T) {
	boom := errors.New("rate limited")
	model := llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		return "", boom
	})
	_, err := NewService(model, "m", 10, 0).IsCareerRelated(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestTimeout(t *testing.T) {
	model := llm.ChatModelFunc(func(ctx context.Context, req llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := NewService(model, "m", 10, 20*time.Millisecond).IsCareerRelated(context.Background(), "q")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
