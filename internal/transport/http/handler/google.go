package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/vanishmail/internal/application/auth"
	"github.com/vanishmail/internal/infrastructure/google"
	"github.com/vanishmail/internal/pkg/token"
)

const stateCookie = "oauth_state"

// GoogleHandler runs the federated-login redirect flow. The only server-side
// state is the CSRF token, round-tripped through a short-lived cookie.
type GoogleHandler struct {
	oauth       *google.OAuth
	verifier    *google.Verifier
	svc         auth.Service
	frontendURL string
}

func NewGoogleHandler(oauth *google.OAuth, verifier *google.Verifier, svc auth.Service, frontendURL string) *GoogleHandler {
	return &GoogleHandler{oauth: oauth, verifier: verifier, svc: svc, frontendURL: frontendURL}
}

func (h *GoogleHandler) Begin(w http.ResponseWriter, r *http.Request) {
	state, err := token.NewState()
	if err != nil {
		httpError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusUnauthorized, "invalid oauth state")
		return
	}

	idToken, err := h.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "google login failed")
		return
	}
	profile, err := h.verifier.Verify(r.Context(), idToken)
	if err != nil {
		httpError(w, err)
		return
	}
	if !profile.EmailVerified {
		writeError(w, http.StatusUnauthorized, "google account email not verified")
		return
	}

	res, err := h.svc.FederatedLogin(r.Context(), auth.FederatedProfile{
		Sub:         profile.Sub,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	})
	if err != nil {
		httpError(w, err)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/auth/callback?token="+url.QueryEscape(res.Token), http.StatusFound)
}
