package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paragonmech/leadbook/internal/model"
	"github.com/paragonmech/leadbook/internal/store"
	"github.com/paragonmech/leadbook/internal/websocket"
)

type LeadHandler struct {
	leads  *store.LeadStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewLeadHandler(ls *store.LeadStore, hub *websocket.Hub, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{leads: ls, hub: hub, logger: logger}
}

func (h *LeadHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type leadRequest struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Status  string  `json:"status"`
	Source  string  `json:"source"`
	Value   float64 `json:"value"`
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Company = strings.TrimSpace(req.Company)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Company == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, company, and email are required"})
		return
	}
	if req.Value < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must not be negative"})
		return
	}
	if req.Status == "" {
		req.Status = model.StatusNew
	}
	if req.Source == "" {
		req.Source = model.SourceOther
	}

	lead, err := h.leads.Create(req.Name, req.Company, req.Email, req.Phone, req.Status, req.Source, req.Value)
	if err != nil {
		h.logger.Error("create lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create lead"})
		return
	}

	h.broadcast(websocket.NewMessage("lead", "created", lead.ID, nil))

	writeJSON(w, http.StatusCreated, lead)
}

// List serves both the full collection and filtered views: ?status= narrows
// to one pipeline status, ?q= matches name, company, email, or phone.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")

	var leads []model.Lead
	var err error
	if query == "" && (status == "" || status == "all") {
		leads, err = h.leads.List()
	} else {
		leads, err = h.leads.Search(query, status)
	}
	if err != nil {
		h.logger.Error("list leads", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get lead"})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.LeadUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if upd.Value != nil && *upd.Value < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must not be negative"})
		return
	}

	lead, err := h.leads.Update(r.PathValue("id"), upd)
	if err != nil {
		h.logger.Error("update lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update lead"})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}

	h.broadcast(websocket.NewMessage("lead", "updated", lead.ID, nil))

	writeJSON(w, http.StatusOK, lead)
}

// Delete is idempotent: deleting an already-gone lead is still 204.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.leads.Delete(id); err != nil {
		h.logger.Error("delete lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete lead"})
		return
	}

	h.broadcast(websocket.NewMessage("lead", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

type noteRequest struct {
	Body string `json:"body"`
}

func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "note body is required"})
		return
	}

	leadID := r.PathValue("id")
	note, err := h.leads.AddNote(leadID, req.Body)
	if err != nil {
		h.logger.Error("add note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add note"})
		return
	}
	if note == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}

	h.broadcast(websocket.NewMessage("lead", "updated", leadID, nil))

	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote is benign when the lead or note is already gone.
func (h *LeadHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	leadID := r.PathValue("id")
	removed, err := h.leads.DeleteNote(leadID, r.PathValue("note_id"))
	if err != nil {
		h.logger.Error("delete note", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete note"})
		return
	}

	if removed {
		h.broadcast(websocket.NewMessage("lead", "updated", leadID, nil))
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leads.Stats()
	if err != nil {
		h.logger.Error("lead stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
