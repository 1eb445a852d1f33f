package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Wherlan/Emotisense/pkg/config"
	"github.com/Wherlan/Emotisense/pkg/extract"
	"github.com/Wherlan/Emotisense/pkg/models"
	"github.com/Wherlan/Emotisense/pkg/pipeline"
	"github.com/Wherlan/Emotisense/pkg/storage"
)

const apiVersion = "1.0.0"

type Handlers struct {
	runner *pipeline.Runner
	store  storage.SessionStore
	upload config.UploadConfig
	log    *logrus.Logger
}

func NewHandlers(runner *pipeline.Runner, store storage.SessionStore, upload config.UploadConfig, log *logrus.Logger) *Handlers {
	return &Handlers{
		runner: runner,
		store:  store,
		upload: upload,
		log:    log,
	}
}

// RootHandler lists the available endpoints.
func (h *Handlers) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "EmotiSense API - Video Emotion Analytics",
		"version": apiVersion,
		"status":  "operational",
		"endpoints": map[string]string{
			"upload":   "/api/upload",
			"status":   "/api/status/{session_id}",
			"results":  "/api/results/{session_id}",
			"sessions": "/api/sessions",
			"progress": "/ws/progress/{session_id}",
			"health":   "/health",
		},
	})
}

// UploadHandler accepts a multipart video upload, creates the session,
// and kicks off its pipeline in the background.
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxSizeBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "failed to parse upload form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "a video file is required")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if !extract.IsSupportedFormat(ext) {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("unsupported video format: %s", ext))
		return
	}

	if err := os.MkdirAll(h.upload.Dir, 0755); err != nil {
		h.log.WithError(err).Error("failed to create upload directory")
		httpError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	session := models.NewSession(header.Filename, "", r.FormValue("user_id"))
	session.FilePath = filepath.Join(h.upload.Dir, session.ID+ext)

	dst, err := os.Create(session.FilePath)
	if err != nil {
		h.log.WithError(err).Error("failed to create upload file")
		httpError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(session.FilePath)
		httpError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	dst.Close()

	if err := h.store.Create(session); err != nil {
		os.Remove(session.FilePath)
		h.log.WithError(err).Error("failed to create session")
		httpError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if err := h.runner.Start(session.ID, session.FilePath); err != nil {
		httpError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"filename":   header.Filename,
	}).Info("upload accepted, processing started")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"filename":   header.Filename,
		"status":     "processing",
		"message":    "Video uploaded successfully. Processing started.",
	})
}

func (h *Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	resp := map[string]interface{}{
		"session_id": session.ID,
		"status":     session.Status,
		"progress":   session.Progress,
		"created_at": session.CreatedAt,
	}
	if session.Error != "" {
		resp["error"] = session.Error
		resp["error_category"] = session.ErrorCategory
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResultsHandler returns the final report. While processing it answers
// 202 so clients can poll; a failed session answers 500 with the
// recorded error.
func (h *Handlers) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	switch session.Status {
	case models.StatusPending, models.StatusProcessing:
		httpError(w, http.StatusAccepted, "Analysis still in progress")
	case models.StatusFailed:
		httpError(w, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %s", session.Error))
	default:
		if session.Report == nil {
			httpError(w, http.StatusNotFound, "Results not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": session.ID,
			"report":     session.Report,
		})
	}
}

func (h *Handlers) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	status := models.SessionStatus(r.URL.Query().Get("status"))
	userID := r.URL.Query().Get("user_id")

	sessions, err := h.store.List(limit, status, userID)
	if err != nil {
		h.log.WithError(err).Error("failed to list sessions")
		httpError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// DeleteSessionHandler removes the session row and its uploaded file.
// Safe to call while the session's pipeline is running; subsequent
// pipeline writes become no-ops.
func (h *Handlers) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSession(w, r)
	if !ok {
		return
	}

	if session.FilePath != "" {
		if err := os.Remove(session.FilePath); err != nil && !os.IsNotExist(err) {
			h.log.WithError(err).Warn("failed to remove uploaded file")
		}
	}

	if err := h.store.Delete(session.ID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "Session not found")
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Session deleted successfully",
	})
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		httpError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   apiVersion,
		"stats":     stats,
	})
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	id := mux.Vars(r)["id"]
	session, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			httpError(w, http.StatusNotFound, "Session not found")
		} else {
			h.log.WithError(err).Error("failed to load session")
			httpError(w, http.StatusInternalServerError, "internal server error")
		}
		return nil, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
