package services

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MegaGrindStone/jester-web-ui/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltDB implements the Store interface using a BoltDB backend, for deployments that want session
// histories to survive process restarts. Each session's messages live in their own bucket, keyed
// by a big-endian sequence number so iteration order is insertion order.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates a new BoltDB instance with the specified file path. The database file is
// created with 0600 permissions if it doesn't exist.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	return BoltDB{db: db}, nil
}

// Close releases the underlying database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}

func messageBucketName(sessionID string) []byte {
	return []byte(fmt.Sprintf("session-%s", sessionID))
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Messages retrieves all messages associated with the specified session ID in insertion order.
func (b BoltDB) Messages(_ context.Context, sessionID string) ([]models.Message, error) {
	var messages []models.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(messageBucketName(sessionID))
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, v []byte) error {
			var message models.Message
			if err := json.Unmarshal(v, &message); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			messages = append(messages, message)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AddMessage stores a new message in the specified session's bucket, creating the bucket on first
// use. It generates a unique ID for the message by combining a sequence number with the message's
// original ID, and returns the new ID.
func (b BoltDB) AddMessage(_ context.Context, sessionID string, message models.Message) (string, error) {
	var newID string
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(messageBucketName(sessionID))
		if err != nil {
			return fmt.Errorf("failed to create message bucket: %w", err)
		}

		seq, err := bkt.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		newID = fmt.Sprintf("%d-%s", seq, message.ID)
		message.ID = newID

		v, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		return bkt.Put(sequenceKey(seq), v)
	})

	return newID, err
}

// ClearMessages removes the specified session's message bucket. Clearing a session that has no
// stored messages is a no-op.
func (b BoltDB) ClearMessages(_ context.Context, sessionID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket(messageBucketName(sessionID))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}
