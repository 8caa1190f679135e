package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/notify"
	"github.com/atiaron/taskflow/internal/services"
	"github.com/atiaron/taskflow/internal/session"
)

// Handler serves the /api/v1 surface.
type Handler struct {
	tasks        *services.TaskService
	interactions *services.InteractionService
	engine       *services.AchievementEngine
	unlocks      *services.UnlockState
	analyzer     *services.BehaviorAnalyzer
	memory       *services.PatternMemory
	chat         *services.ChatService
	actions      *services.NotificationActions
	sessions     *session.Store
	hub          *notify.Hub
	logger       *logger.Log
}

// Deps lists what the handlers need. Chat and Hub may be nil.
type Deps struct {
	Tasks        *services.TaskService
	Interactions *services.InteractionService
	Engine       *services.AchievementEngine
	Unlocks      *services.UnlockState
	Analyzer     *services.BehaviorAnalyzer
	Memory       *services.PatternMemory
	Chat         *services.ChatService
	Actions      *services.NotificationActions
	Sessions     *session.Store
	Hub          *notify.Hub
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		tasks:        d.Tasks,
		interactions: d.Interactions,
		engine:       d.Engine,
		unlocks:      d.Unlocks,
		analyzer:     d.Analyzer,
		memory:       d.Memory,
		chat:         d.Chat,
		actions:      d.Actions,
		sessions:     d.Sessions,
		hub:          d.Hub,
		logger:       logger.New(),
	}
}

func RegisterRoutes(r *mux.Router, d Deps) *Handler {
	h := NewHandler(d)

	r.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	r.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	r.HandleFunc("/tasks/search", h.SearchTasks).Methods("GET")
	r.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/tasks/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/tasks/{id}/complete", h.CompleteTask).Methods("POST")

	r.HandleFunc("/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/stats/progress", h.GetProgress).Methods("GET")
	r.HandleFunc("/achievements", h.ListAchievements).Methods("GET")
	r.HandleFunc("/achievements/check", h.CheckAchievements).Methods("POST")
	r.HandleFunc("/ai/usage", h.IncrementAIUsage).Methods("POST")

	r.HandleFunc("/patterns", h.GetPatterns).Methods("GET")
	r.HandleFunc("/patterns/learn", h.LearnPatterns).Methods("POST")
	r.HandleFunc("/patterns/reset", h.ResetPatterns).Methods("POST")
	r.HandleFunc("/patterns/prompt", h.PreviewPrompt).Methods("POST")

	r.HandleFunc("/chat", h.Chat).Methods("POST")
	r.HandleFunc("/interactions", h.ListInteractions).Methods("GET")
	r.HandleFunc("/interactions", h.RecordInteraction).Methods("POST")
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("POST")

	r.HandleFunc("/notifications/action", h.NotificationAction).Methods("POST")

	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.ServeWS)
	}

	return h
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.WithError(err).Error("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
