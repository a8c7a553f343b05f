package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/artem13815/careerassist/pkg/llm"
)

const (
	// MaxEntries is the most a transcript holds after any append.
	MaxEntries = 12
	// keepTail is how many recent entries survive truncation next to the system message.
	keepTail = 10
)

// DefaultSystemPrompt seeds every new transcript.
var DefaultSystemPrompt = strings.TrimSpace(`
You are CareerAssist, a specialized AI assistant that only answers questions related to jobs, careers, professional development, resume writing, interview preparation, and job searching.

If a user asks a question that is not related to careers or professional topics, politely inform them that you can only provide information about career-related topics.

When providing advice, use current job market knowledge and best practices in career development.`)

var ErrInvalidRole = errors.New("invalid message role")

// Transcript is one user's history. Entry 0 is the system message whenever it is non-empty.
type Transcript []llm.Message

// Clone returns an independent copy.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// truncate keeps entry 0 and the last keepTail entries once the transcript grows past MaxEntries.
func truncate(t Transcript) Transcript {
	if len(t) <= MaxEntries {
		return t
	}
	out := make(Transcript, 0, 1+keepTail)
	out = append(out, t[0])
	out = append(out, t[len(t)-keepTail:]...)
	return out
}

// Repository persists transcript snapshots. Load returns nil, nil for an unknown user.
type Repository interface {
	Load(ctx context.Context, userID string) (Transcript, error)
	Save(ctx context.Context, userID string, t Transcript) error
}

// GenerateFunc produces the assistant reply for a candidate transcript.
type GenerateFunc func(ctx context.Context, t Transcript) (string, error)
