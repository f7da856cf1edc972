package session

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var sessionBucket = []byte("sessions")

type boltEntry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BoltStore keeps tokens in a local bbolt file so sessions survive restarts
// of a single instance.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open session file %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create session bucket")
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

func (b *BoltStore) Get(_ context.Context, id string) (string, error) {
	var entry boltEntry
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(sessionBucket).Get([]byte(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return "", errors.Wrap(err, "read session")
	}
	if !found {
		return "", ErrNotFound
	}
	if !entry.ExpiresAt.IsZero() && !b.now().Before(entry.ExpiresAt) {
		_ = b.Delete(context.Background(), id)
		return "", ErrNotFound
	}
	return entry.Token, nil
}

func (b *BoltStore) Set(_ context.Context, id, token string, ttl time.Duration) error {
	entry := boltEntry{Token: token}
	if ttl > 0 {
		entry.ExpiresAt = b.now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(id), raw)
	})
}

func (b *BoltStore) Delete(_ context.Context, id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(id))
	})
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
