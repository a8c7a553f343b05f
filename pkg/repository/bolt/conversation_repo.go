// Package bolt stores transcript snapshots in a local bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/artem13815/careerassist/pkg/conversation"
)

var bucketConversations = []byte("conversations")

type ConversationRepository struct {
	db *bolt.DB
}

// Open creates the file and its parent directory if needed.
func Open(path string) (*ConversationRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "create bolt directory", goerr.V("path", path))
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, goerr.Wrap(err, "open bolt", goerr.V("path", path))
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketConversations)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "create bucket")
	}
	return &ConversationRepository{db: db}, nil
}

func (r *ConversationRepository) Close() error { return r.db.Close() }

func (r *ConversationRepository) Load(ctx context.Context, userID string) (conversation.Transcript, error) {
	var t conversation.Transcript
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketConversations).Get([]byte(userID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &t)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "load conversation", goerr.V("user_id", userID))
	}
	return t, nil
}

func (r *ConversationRepository) Save(ctx context.Context, userID string, t conversation.Transcript) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return goerr.Wrap(err, "encode conversation")
	}
	err = r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConversations).Put([]byte(userID), raw)
	})
	if err != nil {
		return goerr.Wrap(err, "save conversation", goerr.V("user_id", userID))
	}
	return nil
}
