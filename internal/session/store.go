package session

import (
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
	userKey       = []byte("user")
)

// Store persists the session (bearer token + user snapshot) across process
// restarts in a small bolt database.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if needed) the session database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("session.OpenStore: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close() //nolint:errcheck // open failed, best-effort close
		return nil, fmt.Errorf("session.OpenStore: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the token and the user snapshot in a single transaction.
func (s *Store) Save(token string, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.Save: marshal user: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}
		return b.Put(userKey, data)
	})
	if err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	return nil
}

// Load restores the persisted token and user snapshot. A missing entry comes
// back as the zero value; a user snapshot that fails to parse is treated as
// absent rather than an error.
func (s *Store) Load() (string, *domain.User, error) {
	var token string
	var user *domain.User
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if t := b.Get(tokenKey); t != nil {
			token = string(t)
		}
		if data := b.Get(userKey); data != nil {
			var u domain.User
			if json.Unmarshal(data, &u) == nil {
				user = &u
			}
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("session.Load: %w", err)
	}
	return token, user, nil
}

// Clear removes both entries in a single transaction.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(userKey)
	})
	if err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}
