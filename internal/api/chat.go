package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/services"
	"github.com/atiaron/taskflow/internal/session"
)

const defaultInteractionLimit = 50

type interactionRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// applyProfile copies the session's preferences into the pattern memory.
func (h *Handler) applyProfile(r *http.Request) session.Profile {
	if h.sessions == nil {
		return session.Profile{}
	}
	profile := h.sessions.Load(r)
	if profile.Preferences != (models.Preferences{}) {
		h.memory.SetPreferences(profile.Preferences)
	}
	return profile
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		http.Error(w, "Assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var req services.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile := h.applyProfile(r)
	if req.UserName == "" {
		req.UserName = profile.UserName
	}

	result, err := h.chat.Send(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	limit := defaultInteractionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	interactions, err := h.interactions.ListInteractions(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}
	writeJSON(w, http.StatusOK, interactions)
}

func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = models.InteractionChat
	}

	in, err := h.interactions.RecordInteraction(r.Context(), req.Type, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Load(r))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile session.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.sessions.Save(w, r, profile); err != nil {
		h.logger.WithError(err).Error("failed to save session")
		http.Error(w, "Failed to save profile", http.StatusInternalServerError)
		return
	}
	h.memory.SetPreferences(profile.Preferences)

	writeJSON(w, http.StatusOK, profile)
}
