package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vanishmail/internal/application/auth"
	"github.com/vanishmail/internal/application/mailbox"
	"github.com/vanishmail/internal/config"
	"github.com/vanishmail/internal/transport/http/handler"
	appmiddleware "github.com/vanishmail/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handler.SetDevMode(cfg.AppEnv == "development")

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:   deps.UserRepo,
		SignupOTPs: deps.SignupOTPs,
		ResetOTPs:  deps.ResetOTPs,
		Mailer:     deps.Mailer,
		Signer:     deps.JWTProvider,
		Events:     deps.Events,
		OTPTTL:     cfg.OTPTTL,
	})
	mailboxSvc := mailbox.NewService(mailbox.ServiceDeps{
		AddressRepo: deps.AddressRepo,
		MessageRepo: deps.MessageRepo,
		BodyStore:   deps.BodyStore,
		Sender:      deps.Mailer,
		MailDomain:  cfg.MailDomain,
		AddressTTL:  cfg.AddressTTL,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	googleH := handler.NewGoogleHandler(deps.OAuth, deps.Verifier, authSvc, cfg.FrontendURL)
	addressH := handler.NewAddressHandler(mailboxSvc)
	messageH := handler.NewMessageHandler(mailboxSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider, deps.UserRepo)

	r.Get("/health", healthH.Ping)

	r.Route("/auth", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/signup/request-otp", authH.RequestSignupOTP)
		r.With(sensitiveRL.Limit).Post("/signup/verify-otp", authH.VerifySignupOTP)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.Get("/google", googleH.Begin)
		r.Get("/google/callback", googleH.Callback)
		r.With(sensitiveRL.Limit).Post("/forgot-password", authH.ForgotPassword)
		r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyResetOTP)
		r.With(sensitiveRL.Limit).Post("/reset-password", authH.ResetPassword)

		r.With(authMw).Get("/me", authH.Me)
	})

	// Inbound delivery from the MX bridge.
	r.Post("/inbound", messageH.Inbound)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Post("/addresses", addressH.Create)
		r.Get("/addresses", addressH.List)
		r.Delete("/addresses/{id}", addressH.Delete)

		r.Get("/messages/inbox", messageH.ListInbox)
		r.Get("/messages/outbox", messageH.ListOutbox)
		r.Get("/messages/{id}", messageH.Get)
		r.Post("/messages/send", messageH.Send)
	})

	return r
}
