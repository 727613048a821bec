// Package session keeps the signed-in user of this terminal on local disk so
// it survives a restart, the way a browser keeps it in local storage.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Key is the record the session is stored under.
const Key = "pos_user"

var bucket = []byte("session")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repository.SessionRepository = (*Store)(nil)

// Store is a single-record session store backed by bbolt.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored session, or nil when nobody is signed in. A record
// that no longer decodes is treated as signed out.
func (s *Store) Get() (*entity.Session, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(Key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess entity.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		zap.S().Warnw("discarding unreadable session record", "error", err)
		return nil, nil
	}
	return &sess, nil
}

// Save replaces the stored session.
func (s *Store) Save(sess *entity.Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(Key), data)
	})
}

// Delete removes the stored session. Deleting nothing is not an error.
func (s *Store) Delete() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(Key))
	})
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
