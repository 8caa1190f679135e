package api

import (
	"encoding/json"
	"net/http"

	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/services"
)

const learnInteractionLimit = 500

type patternsResponse struct {
	Learned     bool               `json:"learned"`
	Patterns    models.PatternSet  `json:"patterns"`
	Preferences models.Preferences `json:"preferences"`
}

type promptRequest struct {
	Message string `json:"message"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) LearnPatterns(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var interactions []models.Interaction
	if h.interactions != nil {
		interactions, err = h.interactions.ListInteractions(r.Context(), learnInteractionLimit)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	h.applyProfile(r)
	patterns := h.analyzer.LearnUserPatterns(h.memory, tasks, interactions)
	prefs, _ := h.memory.Preferences()
	writeJSON(w, http.StatusOK, patternsResponse{Learned: true, Patterns: patterns, Preferences: prefs})
}

func (h *Handler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, learned := h.memory.Patterns()
	prefs, _ := h.memory.Preferences()
	writeJSON(w, http.StatusOK, patternsResponse{Learned: learned, Patterns: patterns, Preferences: prefs})
}

func (h *Handler) ResetPatterns(w http.ResponseWriter, r *http.Request) {
	h.memory.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// PreviewPrompt renders the system prompt a chat message would be sent with.
func (h *Handler) PreviewPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pending, err := h.tasks.PendingTasks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	profile := h.applyProfile(r)
	prompt := h.analyzer.BuildPersonalizedPrompt(h.memory, req.Message, services.PromptContext{
		UserName:     profile.UserName,
		PendingTasks: pending,
	})
	writeJSON(w, http.StatusOK, promptResponse{Prompt: prompt})
}
