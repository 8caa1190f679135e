package api

import (
	"net/http"
	"strconv"

	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/services"
)

type statsResponse struct {
	models.UserStats
	Progress models.LevelProgress `json:"progress"`
	AIUsage  int                  `json:"aiUsage"`
}

type checkResponse struct {
	Unlocked []models.Achievement `json:"unlocked"`
}

type usageResponse struct {
	Count    int                  `json:"count"`
	Unlocked []models.Achievement `json:"unlocked"`
}

func (h *Handler) checkAchievements(r *http.Request) ([]models.Achievement, error) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		return nil, err
	}
	stats := h.engine.GetUserStats(tasks)
	unlocked := h.engine.CheckAchievements(r.Context(), h.unlocks, stats, tasks)
	if unlocked == nil {
		unlocked = []models.Achievement{}
	}
	return unlocked, nil
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	stats := h.engine.GetUserStats(tasks)
	writeJSON(w, http.StatusOK, statsResponse{
		UserStats: stats,
		Progress:  services.GetProgressToNextLevel(stats.TotalPoints),
		AIUsage:   h.engine.AIUsageCount(r.Context()),
	})
}

// GetProgress reports level progress for ?points=, or for the current total when absent.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	var points int
	if raw := r.URL.Query().Get("points"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 {
			http.Error(w, "points must be a non-negative integer", http.StatusBadRequest)
			return
		}
		points = p
	} else {
		tasks, err := h.tasks.ListTasks(r.Context())
		if err != nil {
			h.writeError(w, err)
			return
		}
		points = h.engine.GetUserStats(tasks).TotalPoints
	}

	writeJSON(w, http.StatusOK, services.GetProgressToNextLevel(points))
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Achievements(h.unlocks))
}

func (h *Handler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.checkAchievements(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Unlocked: unlocked})
}

func (h *Handler) IncrementAIUsage(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.IncrementAIUsage(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	unlocked, err := h.checkAchievements(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usageResponse{Count: count, Unlocked: unlocked})
}
