package storage

import (
	"errors"
	"time"

	"github.com/Wherlan/Emotisense/pkg/models"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid session status transition")
)

// Stats summarizes the store for the health endpoint.
type Stats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	FailedSessions    int     `json:"failed_sessions"`
	SuccessRate       float64 `json:"success_rate"`
}

// SessionStore persists sessions. Implementations must allow concurrent
// reads and serialize writes per session so status and progress updates
// are never lost. Writes against a deleted session return
// ErrSessionNotFound.
type SessionStore interface {
	Create(session *models.Session) error
	Get(id string) (*models.Session, error)
	UpdateStatus(id string, status models.SessionStatus, progress int) error
	SetMetadata(id string, md models.VideoMetadata) error
	SetError(id string, category, message string) error
	SaveReport(id string, report *models.Report) error
	List(limit int, status models.SessionStatus, userID string) ([]*models.Session, error)
	Delete(id string) error
	Stats() (*Stats, error)
	Close() error
}

// applyStatus mutates a session's status in place, enforcing the state
// machine. A negative progress leaves the current progress untouched.
func applyStatus(s *models.Session, status models.SessionStatus, progress int) error {
	if !models.CanTransition(s.Status, status) {
		return ErrInvalidTransition
	}
	s.Status = status
	if progress >= 0 {
		s.Progress = progress
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func matchesFilter(s *models.Session, status models.SessionStatus, userID string) bool {
	if status != "" && s.Status != status {
		return false
	}
	if userID != "" && s.UserID != userID {
		return false
	}
	return true
}

func computeStats(sessions []*models.Session) *Stats {
	st := &Stats{}
	for _, s := range sessions {
		st.TotalSessions++
		switch s.Status {
		case models.StatusCompleted:
			st.CompletedSessions++
		case models.StatusFailed:
			st.FailedSessions++
		}
	}
	if st.TotalSessions > 0 {
		st.SuccessRate = float64(st.CompletedSessions) / float64(st.TotalSessions) * 100
	}
	return st
}
