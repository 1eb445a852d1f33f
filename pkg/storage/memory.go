package storage

import (
	"sort"
	"sync"

	"github.com/Wherlan/Emotisense/pkg/models"
)

// MemoryStore keeps sessions in a mutex-guarded map. It backs tests and
// single-process setups where persistence across restarts is not needed.
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *MemoryStore) Create(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

func (s *MemoryStore) mutate(id string, fn func(*models.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	return fn(session)
}

func (s *MemoryStore) UpdateStatus(id string, status models.SessionStatus, progress int) error {
	return s.mutate(id, func(session *models.Session) error {
		return applyStatus(session, status, progress)
	})
}

func (s *MemoryStore) SetMetadata(id string, md models.VideoMetadata) error {
	return s.mutate(id, func(session *models.Session) error {
		session.Metadata = &md
		return nil
	})
}

func (s *MemoryStore) SetError(id string, category, message string) error {
	return s.mutate(id, func(session *models.Session) error {
		session.ErrorCategory = category
		session.Error = message
		return nil
	})
}

func (s *MemoryStore) SaveReport(id string, report *models.Report) error {
	return s.mutate(id, func(session *models.Session) error {
		session.Report = report
		return nil
	})
}

func (s *MemoryStore) List(limit int, status models.SessionStatus, userID string) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*models.Session
	for _, session := range s.sessions {
		if matchesFilter(session, status, userID) {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Stats() (*Stats, error) {
	sessions, err := s.List(0, "", "")
	if err != nil {
		return nil, err
	}
	return computeStats(sessions), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
