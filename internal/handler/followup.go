package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/paragonmech/leadbook/internal/model"
	"github.com/paragonmech/leadbook/internal/store"
	"github.com/paragonmech/leadbook/internal/websocket"
)

type FollowupHandler struct {
	followups *store.FollowupStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewFollowupHandler(fs *store.FollowupStore, hub *websocket.Hub, logger *slog.Logger) *FollowupHandler {
	return &FollowupHandler{followups: fs, hub: hub, logger: logger}
}

func (h *FollowupHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type followupRequest struct {
	LeadID      string    `json:"lead_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Note        string    `json:"note"`
}

func (h *FollowupHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req followupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.LeadID == "" || req.ScheduledAt.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lead_id and scheduled_at are required"})
		return
	}

	followup, err := h.followups.Schedule(req.LeadID, req.ScheduledAt, req.Note)
	if err != nil {
		h.logger.Error("schedule followup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to schedule follow-up"})
		return
	}
	if followup == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}

	h.broadcast(websocket.NewMessage("followup", "scheduled", followup.ID, nil))

	writeJSON(w, http.StatusCreated, followup)
}

func (h *FollowupHandler) ListForLead(w http.ResponseWriter, r *http.Request) {
	followups, err := h.followups.ListForLead(r.PathValue("id"))
	if err != nil {
		h.logger.Error("list followups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list follow-ups"})
		return
	}
	if followups == nil {
		followups = []model.Followup{}
	}
	writeJSON(w, http.StatusOK, followups)
}

func (h *FollowupHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found, err := h.followups.Complete(id)
	if err != nil {
		h.logger.Error("complete followup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete follow-up"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "follow-up not found"})
		return
	}

	h.broadcast(websocket.NewMessage("followup", "completed", id, nil))

	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

// Delete is idempotent: deleting an already-gone follow-up is still 204.
func (h *FollowupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.followups.Delete(id); err != nil {
		h.logger.Error("delete followup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete follow-up"})
		return
	}

	h.broadcast(websocket.NewMessage("followup", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

func (h *FollowupHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	followups, err := h.followups.ListUpcoming()
	if err != nil {
		h.logger.Error("list upcoming followups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list follow-ups"})
		return
	}
	if followups == nil {
		followups = []model.Followup{}
	}
	writeJSON(w, http.StatusOK, followups)
}
