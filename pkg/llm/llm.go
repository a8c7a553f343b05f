package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a chat transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes a single chat completion call.
type Request struct {
	Model     string
	Messages  []Message
	MaxTokens int
}

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ChatModelFunc adapts a plain function to ChatModel.
type ChatModelFunc func(ctx context.Context, req Request) (string, error)

func (f ChatModelFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
