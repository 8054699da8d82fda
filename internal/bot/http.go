package bot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pathakanu/chatmemo/internal/database"
	"github.com/pathakanu/chatmemo/internal/extract"
	"github.com/pathakanu/chatmemo/internal/push"
	"github.com/pathakanu/chatmemo/internal/reminder"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidBody      = "Invalid request body"
)

// Router returns the HTTP handler for the public API.
func (b *Bot) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.accessLog)

	r.HandleFunc("/api/extract-important-messages", b.handleExtract).Methods(http.MethodPost)
	r.HandleFunc("/api/send-notification", b.handleSendNotification).Methods(http.MethodPost)
	r.HandleFunc("/api/send-group-notification", b.handleSendGroupNotification).Methods(http.MethodPost)
	r.HandleFunc("/health", b.handleHealth).Methods(http.MethodGet)

	// Middleware only wraps matched routes.
	r.MethodNotAllowedHandler = b.accessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}))
	return r
}

// handleExtract runs the extraction pipeline for one chat message.
func (b *Bot) handleExtract(w http.ResponseWriter, r *http.Request) {
	var in reminder.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		b.logger.WithError(err).Debug("extract: bad request body")
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := b.extractor.Extract(r.Context(), in)
	if err != nil {
		b.writeExtractError(w, err, in.SenderID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   res.Status,
		"reminder": res.Payload(),
	})
}

func (b *Bot) writeExtractError(w http.ResponseWriter, err error, senderID string) {
	var (
		validation *reminder.ValidationError
		malformed  *extract.MalformedClassificationError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &malformed):
		b.logger.WithField("sender_id", senderID).WithError(err).Warn("extract: rejected classifier output")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		b.logger.WithField("sender_id", senderID).WithError(err).Error("extract failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type notificationRequest struct {
	Message    string `json:"message"`
	SenderID   string `json:"senderID"`
	ReceiverID string `json:"receiverID"`
}

func (b *Bot) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.Message) == "" || req.ReceiverID == "" {
		writeError(w, http.StatusBadRequest, reminder.MissingFieldsMessage)
		return
	}

	err := b.notifier.NotifyUser(r.Context(), req.SenderID, req.ReceiverID, req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Notification sent"})
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Receiver not found")
	case errors.Is(err, push.ErrNoAddress):
		writeError(w, http.StatusBadRequest, "Receiver FCM token not found")
	default:
		b.logger.WithField("receiver_id", req.ReceiverID).WithError(err).Error("send notification failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type groupNotificationRequest struct {
	GroupID    string `json:"groupId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
}

func (b *Bot) handleSendGroupNotification(w http.ResponseWriter, r *http.Request) {
	var req groupNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.GroupID == "" || req.SenderID == "" || req.SenderName == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, reminder.MissingFieldsMessage)
		return
	}

	sent, err := b.notifier.NotifyGroup(r.Context(), req.GroupID, req.SenderID, req.SenderName, req.Message)
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Group not found")
	case err != nil:
		b.logger.WithField("group_id", req.GroupID).WithError(err).Error("send group notification failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	case sent == 0:
		writeJSON(w, http.StatusOK, map[string]any{"message": "No tokens found"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sent": sent})
	}
}

func (b *Bot) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog records method, path, status and duration of every request.
func (b *Bot) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := b.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if rec.status >= http.StatusBadRequest {
			entry.Warn("request failed")
		} else {
			entry.Info("request processed")
		}
	})
}
