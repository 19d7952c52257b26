package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vanishmail/internal/application/mailbox"
	"github.com/vanishmail/internal/pkg/validate"
	"github.com/vanishmail/internal/transport/http/middleware"
)

// MessageHandler handles inbox/outbox endpoints.
type MessageHandler struct {
	svc mailbox.Service
}

func NewMessageHandler(svc mailbox.Service) *MessageHandler { return &MessageHandler{svc: svc} }

func (h *MessageHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	msgs, err := h.svc.ListInbox(r.Context(), u.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", msgs)
}

func (h *MessageHandler) ListOutbox(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	msgs, err := h.svc.ListOutbox(r.Context(), u.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", msgs)
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	m, err := h.svc.GetMessage(r.Context(), u.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", m)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req mailbox.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	m, err := h.svc.Send(r.Context(), u.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "message sent", m)
}

// Inbound ingests a message delivered to a disposable address, typically
// posted by the MX bridge.
func (h *MessageHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	var req mailbox.InboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	m, err := h.svc.Inbound(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "message accepted", m)
}
