package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"github.com/Wherlan/Emotisense/pkg/models"
)

const sessionKeyPrefix = "session/"

// BadgerStore persists sessions as JSON rows in an embedded badger
// database. Each mutation runs as a read-modify-write inside a single
// badger transaction, which serializes writes per session row.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(path, "badger"))
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func (s *BadgerStore) Create(session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.ID), data)
	})
}

func (s *BadgerStore) Get(id string) (*models.Session, error) {
	var session models.Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// mutate loads a session row, applies fn, and writes it back within one
// transaction.
func (s *BadgerStore) mutate(id string, fn func(*models.Session) error) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}

		var session models.Session
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return err
		}

		if err := fn(&session); err != nil {
			return err
		}

		data, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		return txn.Set(sessionKey(id), data)
	})

	if err == badger.ErrKeyNotFound {
		return ErrSessionNotFound
	}
	return err
}

func (s *BadgerStore) UpdateStatus(id string, status models.SessionStatus, progress int) error {
	return s.mutate(id, func(session *models.Session) error {
		return applyStatus(session, status, progress)
	})
}

func (s *BadgerStore) SetMetadata(id string, md models.VideoMetadata) error {
	return s.mutate(id, func(session *models.Session) error {
		session.Metadata = &md
		return nil
	})
}

func (s *BadgerStore) SetError(id string, category, message string) error {
	return s.mutate(id, func(session *models.Session) error {
		session.ErrorCategory = category
		session.Error = message
		return nil
	})
}

func (s *BadgerStore) SaveReport(id string, report *models.Report) error {
	return s.mutate(id, func(session *models.Session) error {
		session.Report = report
		return nil
	})
}

func (s *BadgerStore) List(limit int, status models.SessionStatus, userID string) ([]*models.Session, error) {
	var sessions []*models.Session

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session models.Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				return err
			}
			if matchesFilter(&session, status, userID) {
				sessions = append(sessions, &session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *BadgerStore) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(sessionKey(id)); err != nil {
			return err
		}
		return txn.Delete(sessionKey(id))
	})
	if err == badger.ErrKeyNotFound {
		return ErrSessionNotFound
	}
	return err
}

func (s *BadgerStore) Stats() (*Stats, error) {
	sessions, err := s.List(0, "", "")
	if err != nil {
		return nil, err
	}
	return computeStats(sessions), nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
