package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/models"
)

type completeTaskResponse struct {
	Task     *models.Task         `json:"task"`
	Unlocked []models.Achievement `json:"unlocked"`
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []models.Task
		err   error
	)
	if r.URL.Query().Get("pending") == "true" {
		tasks, err = h.tasks.PendingTasks(r.Context())
	} else {
		tasks, err = h.tasks.ListTasks(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.interactions != nil {
		if _, err := h.interactions.RecordInteraction(r.Context(), models.InteractionTaskCreation, task.Title); err != nil {
			h.logger.WithError(err).Warn("failed to record task creation")
		}
	}

	h.logger.Info("task created", zap.String("id", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update. A patch that completes the task answers
// like CompleteTask, with the achievements the completion unlocked.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if patch.Completed != nil && *patch.Completed {
		unlocked, err := h.checkAchievements(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, completeTaskResponse{Task: task, Unlocked: unlocked})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask marks the task done and runs an achievement check over the new state.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.CompleteTask(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	unlocked, err := h.checkAchievements(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeTaskResponse{Task: task, Unlocked: unlocked})
}

func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.FindByTitle(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
