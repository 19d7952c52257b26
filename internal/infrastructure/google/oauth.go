package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanishmail/internal/config"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// OAuth wraps the authorization-code redirect flow. The flow is stateless on
// the server: the only per-request state is the CSRF token round-tripped via
// a short-lived cookie.
type OAuth struct {
	cfg *oauth2.Config
}

func NewOAuth(cfg *config.Config) *OAuth {
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     googleoauth.Endpoint,
	}}
}

// AuthCodeURL returns the Google consent URL for the given CSRF state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and returns the raw
// id_token, which the caller verifies with Verifier.
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("token response missing id_token")
	}
	return idToken, nil
}
