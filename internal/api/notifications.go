package api

import (
	"encoding/json"
	"net/http"

	"github.com/atiaron/taskflow/internal/services"
)

type notificationActionRequest struct {
	Action string `json:"action"`
	TaskID string `json:"taskId"`
}

// NotificationAction handles a button press on a task notification.
func (h *Handler) NotificationAction(w http.ResponseWriter, r *http.Request) {
	var req notificationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TaskID == "" && req.Action != services.ActionOpen {
		http.Error(w, "taskId is required", http.StatusBadRequest)
		return
	}

	task, err := h.actions.Handle(r.Context(), req.Action, req.TaskID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if task == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if req.Action == services.ActionComplete {
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
