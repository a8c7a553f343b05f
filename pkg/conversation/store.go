// Package conversation keeps bounded per-user chat transcripts.
package conversation

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/semaphore"

	"github.com/artem13815/careerassist/pkg/llm"
	"github.com/artem13815/careerassist/pkg/logging"
)

// Store maps user ids to transcripts. Mutations for one user are serialized;
// different users never wait on each other beyond the map lookup.
// Entries are never evicted, so memory grows with the number of distinct users.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	system  string
	repo    Repository
}

type entry struct {
	sem        *semaphore.Weighted
	loaded     bool
	transcript Transcript
}

type Option func(*Store)

// WithRepository mirrors every committed transcript to repo. The in-memory copy stays authoritative.
func WithRepository(repo Repository) Option {
	return func(s *Store) { s.repo = repo }
}

func WithSystemPrompt(prompt string) Option {
	return func(s *Store) {
		if prompt != "" {
			s.system = prompt
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{entries: make(map[string]*entry), system: DefaultSystemPrompt}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrInit returns a copy of the user's transcript, creating it if needed.
func (s *Store) GetOrInit(ctx context.Context, userID string) (Transcript, error) {
	e, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer e.unlock()
	return e.transcript.Clone(), nil
}

// Append adds one entry and applies truncation.
func (s *Store) Append(ctx context.Context, userID string, role llm.Role, content string) (Transcript, error) {
	switch role {
	case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
	default:
		return nil, goerr.Wrap(ErrInvalidRole, "append rejected", goerr.V("role", role))
	}
	e, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer e.unlock()

	e.transcript = truncate(append(e.transcript, llm.Message{Role: role, Content: content}))
	s.persist(ctx, userID, e)
	return e.transcript.Clone(), nil
}

// Reset drops everything but the system message. Calling it twice is the same as once.
func (s *Store) Reset(ctx context.Context, userID string) (Transcript, error) {
	e, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer e.unlock()

	e.transcript = Transcript{e.transcript[0]}
	s.persist(ctx, userID, e)
	return e.transcript.Clone(), nil
}

// Exchange appends the user entry, asks generate for a reply and appends it as the
// assistant entry. The user's lock is held for the whole exchange, so concurrent
// exchanges for one user land as whole (user, assistant) pairs. If generate fails
// the transcript is left exactly as it was.
func (s *Store) Exchange(ctx context.Context, userID, userContent string, generate GenerateFunc) (string, error) {
	e, err := s.lock(ctx, userID)
	if err != nil {
		return "", err
	}
	defer e.unlock()

	candidate := truncate(append(e.transcript.Clone(), llm.Message{Role: llm.RoleUser, Content: userContent}))
	reply, err := generate(ctx, candidate.Clone())
	if err != nil {
		return "", err
	}
	e.transcript = truncate(append(candidate, llm.Message{Role: llm.RoleAssistant, Content: reply}))
	s.persist(ctx, userID, e)
	return reply, nil
}

// lock waits for the user's entry until ctx is done and returns it initialised.
// A snapshot that failed to load is retried on the next lock; until then the
// entry is served from memory and never written back.
func (s *Store) lock(ctx context.Context, userID string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		s.entries[userID] = e
	}
	s.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, goerr.Wrap(err, "conversation is busy", goerr.V("user_id", userID))
	}
	if e.loaded {
		return e, nil
	}

	seed := Transcript{{Role: llm.RoleSystem, Content: s.system}}
	if e.transcript == nil {
		e.transcript = seed
	}
	stored, err := s.restore(ctx, userID)
	if err != nil {
		logging.From(ctx).Error("failed to load transcript snapshot", "user_id", userID, "error", err)
		return e, nil
	}
	if stored == nil {
		stored = seed
	}
	// keep whatever was said while the snapshot was unreachable
	e.transcript = truncate(append(stored, e.transcript[1:]...))
	e.loaded = true
	return e, nil
}

func (e *entry) unlock() { e.sem.Release(1) }

// restore returns the stored transcript, or nil when there is none worth keeping.
func (s *Store) restore(ctx context.Context, userID string) (Transcript, error) {
	if s.repo == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(t) == 0 || t[0].Role != llm.RoleSystem {
		return nil, nil
	}
	return truncate(t), nil
}

func (s *Store) persist(ctx context.Context, userID string, e *entry) {
	if s.repo == nil || !e.loaded {
		return
	}
	if err := s.repo.Save(ctx, userID, e.transcript.Clone()); err != nil {
		logging.From(ctx).Error("failed to save transcript snapshot", "user_id", userID, "error", err)
	}
}
