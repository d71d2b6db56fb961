package mailbox

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	messageBucket = "messages"
	invalidBucket = "invalid"
	failureBucket = "failures"
)

// Cache defines the interface for local message persistence. The
// retrieval path uses it to avoid refetching messages; batch runs use
// it to persist diagnostic buckets for later inspection.
type Cache interface {
	// Get retrieves a cached message by ID; ok is false on a miss.
	Get(id string) (msg Message, ok bool, err error)

	// Put stores a fetched message.
	Put(msg Message) error

	// SaveInvalid records messages that failed the dialect precondition.
	SaveInvalid(msgs []Message) error

	// SaveFailures records messages whose extraction raised an
	// unexpected error.
	SaveFailures(failures []Failure) error

	// ListInvalid returns all recorded invalid messages.
	ListInvalid() ([]Message, error)

	// ListFailures returns all recorded extraction failures.
	ListFailures() ([]Failure, error)

	// Close closes the cache.
	Close() error
}

// BoltCache implements the Cache interface using BoltDB.
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache creates a new BoltCache instance.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{messageBucket, invalidBucket, failureBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltCache{db: db}, nil
}

// Get retrieves a cached message by ID.
func (b *BoltCache) Get(id string) (Message, bool, error) {
	var msg Message
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(messageBucket)).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &msg)
	})
	if err != nil {
		return Message{}, false, fmt.Errorf("reading message %s: %w", id, err)
	}
	return msg, found, nil
}

// Put stores a fetched message.
func (b *BoltCache) Put(msg Message) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshaling message: %w", err)
		}
		return tx.Bucket([]byte(messageBucket)).Put([]byte(msg.ID), data)
	})
}

// SaveInvalid records messages that failed the dialect precondition,
// keyed by message ID so reruns overwrite earlier entries.
func (b *BoltCache) SaveInvalid(msgs []Message) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invalidBucket))
		for _, msg := range msgs {
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshaling invalid message: %w", err)
			}
			if err := bucket.Put([]byte(msg.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveFailures records extraction failures alongside their error text.
func (b *BoltCache) SaveFailures(failures []Failure) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(failureBucket))
		for _, f := range failures {
			data, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("marshaling failure: %w", err)
			}
			if err := bucket.Put([]byte(f.Message.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListInvalid returns all recorded invalid messages.
func (b *BoltCache) ListInvalid() ([]Message, error) {
	msgs := make([]Message, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(invalidBucket)).ForEach(func(k, v []byte) error {
			var msg Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("unmarshaling invalid message: %w", err)
			}
			msgs = append(msgs, msg)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListFailures returns all recorded extraction failures.
func (b *BoltCache) ListFailures() ([]Failure, error) {
	failures := make([]Failure, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(failureBucket)).ForEach(func(k, v []byte) error {
			var f Failure
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("unmarshaling failure: %w", err)
			}
			failures = append(failures, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return failures, nil
}

// Close closes the cache.
func (b *BoltCache) Close() error {
	return b.db.Close()
}

// NopCache disables caching: every Get misses, writes are discarded.
type NopCache struct{}

func (NopCache) Get(string) (Message, bool, error) { return Message{}, false, nil }
func (NopCache) Put(Message) error                 { return nil }
func (NopCache) SaveInvalid([]Message) error       { return nil }
func (NopCache) SaveFailures([]Failure) error      { return nil }
func (NopCache) ListInvalid() ([]Message, error)   { return nil, nil }
func (NopCache) ListFailures() ([]Failure, error)  { return nil, nil }
func (NopCache) Close() error                      { return nil }
