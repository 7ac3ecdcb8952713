package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ent0n29/medmemory/internal/memory"
	"github.com/ent0n29/medmemory/internal/policy"
)

type addMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type historyResponse struct {
	Messages []memory.Entry `json:"messages"`
	Window   int            `json:"window"`
}

type conversationParams struct {
	patient      string
	counterpart  string
	conversation string
}

func conversationFrom(r *http.Request) (conversationParams, bool) {
	p := conversationParams{
		patient:      strings.TrimSpace(chi.URLParam(r, "patient")),
		counterpart:  strings.TrimSpace(chi.URLParam(r, "counterpart")),
		conversation: strings.TrimSpace(chi.URLParam(r, "conversation")),
	}
	return p, p.patient != "" && p.counterpart != "" && p.conversation != ""
}

func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	patient := strings.TrimSpace(chi.URLParam(r, "patient"))
	counterpart := strings.TrimSpace(chi.URLParam(r, "counterpart"))
	if patient == "" || counterpart == "" {
		respondError(w, http.StatusBadRequest, "invalid_conversation", "missing patient or counterpart id")
		return
	}
	s.event("stm", "start")
	respondJSON(w, http.StatusCreated, map[string]string{
		"conversation_id": uuid.NewString(),
	})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := conversationFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_conversation", "missing conversation key")
		return
	}
	var req addMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	role := memory.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_role", "role must be user, assistant or system")
		return
	}

	if err := s.stm.Add(r.Context(), p.patient, p.counterpart, p.conversation, role, req.Content); err != nil {
		s.respondMemoryError(w, "stm.add", err)
		return
	}
	s.event("stm", "add")
	respondJSON(w, http.StatusCreated, map[string]any{"status": "stored"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := conversationFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_conversation", "missing conversation key")
		return
	}
	history, err := s.stm.History(r.Context(), p.patient, p.counterpart, p.conversation)
	if err != nil {
		s.respondMemoryError(w, "stm.history", err)
		return
	}
	s.event("stm", "history")
	respondJSON(w, http.StatusOK, historyResponse{Messages: history, Window: s.stm.Window()})
}

func (s *Server) handleLastUserQuestion(w http.ResponseWriter, r *http.Request) {
	p, ok := conversationFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_conversation", "missing conversation key")
		return
	}
	content, found, err := s.stm.LastUserQuestion(r.Context(), p.patient, p.counterpart, p.conversation)
	if err != nil {
		s.respondMemoryError(w, "stm.last_user_question", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "no_user_question", "conversation has no user turn")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	p, ok := conversationFrom(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_conversation", "missing conversation key")
		return
	}
	if err := s.stm.Clear(r.Context(), p.patient, p.counterpart, p.conversation); err != nil {
		s.respondMemoryError(w, "stm.clear", err)
		return
	}
	s.event("stm", "clear")
	s.log.Info().Str("patient", policy.MaskIdentifier(p.patient)).Msg("conversation cleared")
	respondJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	patient := strings.TrimSpace(chi.URLParam(r, "patient"))
	record, found, err := s.ltm.Get(r.Context(), patient)
	if err != nil {
		s.respondMemoryError(w, "ltm.get", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "record_not_found", "no long-term record for patient")
		return
	}
	s.event("ltm", "get")
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleSetRecord(w http.ResponseWriter, r *http.Request) {
	patient := strings.TrimSpace(chi.URLParam(r, "patient"))
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if err := s.ltm.Set(r.Context(), patient, record); err != nil {
		s.respondMemoryError(w, "ltm.set", err)
		return
	}
	s.event("ltm", "set")
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	patient := strings.TrimSpace(chi.URLParam(r, "patient"))
	patch, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	merged, err := s.ltm.Update(r.Context(), patient, patch)
	if err != nil {
		s.respondMemoryError(w, "ltm.update", err)
		return
	}
	s.event("ltm", "update")
	respondJSON(w, http.StatusOK, merged)
}

func (s *Server) handleClearRecord(w http.ResponseWriter, r *http.Request) {
	patient := strings.TrimSpace(chi.URLParam(r, "patient"))
	if err := s.ltm.Clear(r.Context(), patient); err != nil {
		s.respondMemoryError(w, "ltm.clear", err)
		return
	}
	s.event("ltm", "clear")
	s.log.Info().Str("patient", policy.MaskIdentifier(patient)).Msg("long-term record cleared")
	respondJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (memory.Record, bool) {
	var record memory.Record
	if err := decodeJSON(r, &record); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondError(w, http.StatusBadRequest, "invalid_request", "record body is required")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}
	if record == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "record must be a JSON object")
		return nil, false
	}
	return record, true
}
