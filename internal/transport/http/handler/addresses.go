package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vanishmail/internal/application/mailbox"
	"github.com/vanishmail/internal/transport/http/middleware"
)

// AddressHandler handles disposable-address endpoints.
type AddressHandler struct {
	svc mailbox.Service
}

func NewAddressHandler(svc mailbox.Service) *AddressHandler { return &AddressHandler{svc: svc} }

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.CreateAddress(r.Context(), u.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "address created", a)
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	addrs, err := h.svc.ListAddresses(r.Context(), u.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", addrs)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.DeleteAddress(r.Context(), u.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "address deleted", nil)
}
