// Package service exposes the assistant over HTTP: the wire contract the
// console client speaks, plus health and the middleware around them.
package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"orion-console/internal/assistant"
	"orion-console/internal/conversation"
)

const maxJSONBodyBytes = 1 << 20 // 1 MiB

// askRequest is the wire request: a command plus its recent context window.
type askRequest struct {
	Message string        `json:"message"`
	History []wireMessage `json:"history"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type askResponse struct {
	Reply   string   `json:"reply"`
	Actions []string `json:"actions,omitempty"`
	Intent  string   `json:"intent,omitempty"`
	Speak   bool     `json:"speak"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type Server struct {
	assistant *assistant.Assistant
	log       *logrus.Logger
}

func NewServer(a *assistant.Assistant, log *logrus.Logger) *Server {
	return &Server{assistant: a, log: log}
}

// Routes builds the router with logging and recovery around every handler.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/assistant", s.handleAssistant).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Use(s.loggingMiddleware, s.recoverMiddleware)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON payload."})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing 'message' in payload."})
		return
	}

	history := make([]conversation.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, conversation.Message{
			Role:    conversation.Role(m.Role),
			Content: m.Content,
		})
	}

	res := s.assistant.Handle(r.Context(), req.Message, history)
	writeJSON(w, http.StatusOK, askResponse{
		Reply:   res.Reply,
		Actions: res.Actions,
		Intent:  res.Intent,
		Speak:   res.Speak,
	})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		requestID := uuid.NewString()

		next.ServeHTTP(sw, r)

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"duration":   time.Since(start).String(),
			"remote":     r.RemoteAddr,
		}).Info("request handled")
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithField("panic", rec).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error: "Assistant processing failure.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
