package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Wherlan/Emotisense/pkg/models"
	"github.com/Wherlan/Emotisense/pkg/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const progressPollInterval = 500 * time.Millisecond

type progressMessage struct {
	SessionID string               `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
	Progress  int                  `json:"progress"`
	Report    *models.Report       `json:"report,omitempty"`
	Error     string               `json:"error,omitempty"`
	Category  string               `json:"error_category,omitempty"`
}

// ProgressHandler streams a session's pipeline progress over a
// websocket. It polls the store and pushes a message whenever status or
// progress changes, closing the connection once the session reaches a
// terminal state.
func (h *Handlers) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	lastStatus := models.SessionStatus("")
	lastProgress := -1

	for {
		session, err := h.store.Get(sessionID)
		if err != nil {
			if errors.Is(err, storage.ErrSessionNotFound) {
				conn.WriteJSON(map[string]string{"error": "session not found"})
			}
			return
		}

		if session.Status != lastStatus || session.Progress != lastProgress {
			msg := progressMessage{
				SessionID: session.ID,
				Status:    session.Status,
				Progress:  session.Progress,
			}
			if session.Status == models.StatusCompleted {
				msg.Report = session.Report
			}
			if session.Status == models.StatusFailed {
				msg.Error = session.Error
				msg.Category = session.ErrorCategory
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			lastStatus = session.Status
			lastProgress = session.Progress
		}

		if session.Status.Terminal() {
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}
