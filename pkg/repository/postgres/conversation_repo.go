package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/m-mizutani/goerr/v2"

	"github.com/artem13815/careerassist/pkg/conversation"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConversationRepository хранит снапшоты переписки в таблице conversations.
// The table is created by the storage migrations.
type ConversationRepository struct {
	db querier
}

// NewConversationRepository accepts a *pgxpool.Pool.
func NewConversationRepository(db querier) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Load(ctx context.Context, userID string) (conversation.Transcript, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT messages FROM conversations WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "select conversation", goerr.V("user_id", userID))
	}
	var t conversation.Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, goerr.Wrap(err, "decode conversation", goerr.V("user_id", userID))
	}
	return t, nil
}

func (r *ConversationRepository) Save(ctx context.Context, userID string, t conversation.Transcript) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return goerr.Wrap(err, "encode conversation")
	}
	_, err = r.db.Exec(ctx, `
INSERT INTO conversations (user_id, messages, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at
`, userID, raw)
	if err != nil {
		return goerr.Wrap(err, "upsert conversation", goerr.V("user_id", userID))
	}
	return nil
}
