package http

import (
	"github.com/vanishmail/internal/infrastructure/dynamo"
	"github.com/vanishmail/internal/infrastructure/google"
	jwtinfra "github.com/vanishmail/internal/infrastructure/jwt"
	s3infra "github.com/vanishmail/internal/infrastructure/s3"
	"github.com/vanishmail/internal/infrastructure/smtp"
	"github.com/vanishmail/internal/infrastructure/sns"
	"github.com/vanishmail/internal/otp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	AddressRepo *dynamo.AddressRepo
	MessageRepo *dynamo.MessageRepo
	BodyStore   *s3infra.Store
	Mailer      smtp.Mailer
	Events      sns.Publisher // optional; nil disables event fan-out
	JWTProvider *jwtinfra.Provider
	SignupOTPs  *otp.Ledger
	ResetOTPs   *otp.Ledger
	OAuth       *google.OAuth
	Verifier    *google.Verifier
}
