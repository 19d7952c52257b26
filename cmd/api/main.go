package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vanishmail/internal/config"
	"github.com/vanishmail/internal/infrastructure/dynamo"
	"github.com/vanishmail/internal/infrastructure/google"
	jwtinfra "github.com/vanishmail/internal/infrastructure/jwt"
	s3infra "github.com/vanishmail/internal/infrastructure/s3"
	"github.com/vanishmail/internal/infrastructure/smtp"
	"github.com/vanishmail/internal/infrastructure/sns"
	"github.com/vanishmail/internal/otp"
	transporthttp "github.com/vanishmail/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// S3 store for raw message bodies.
	s3Client := s3infra.NewClient(cfg)
	bodyStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	// SNS event publisher (optional — graceful fallback).
	var events sns.Publisher
	if cfg.SNSTopicARN != "" {
		if p, perr := sns.NewPublisher(cfg); perr == nil {
			events = p
		} else {
			log.Printf("WARN: SNS publisher not available: %v", perr)
		}
	}

	// One ledger per OTP purpose; both swept on an independent timer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signupOTPs := otp.NewLedger()
	resetOTPs := otp.NewLedger()
	signupOTPs.StartSweep(ctx, cfg.OTPSweepInterval)
	resetOTPs.StartSweep(ctx, cfg.OTPSweepInterval)

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		AddressRepo: dynamo.NewAddressRepo(dynamoClient, cfg.DynamoTables.Addresses),
		MessageRepo: dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		BodyStore:   bodyStore,
		Mailer:      mailer,
		Events:      events,
		JWTProvider: jwtProvider,
		SignupOTPs:  signupOTPs,
		ResetOTPs:   resetOTPs,
		OAuth:       google.NewOAuth(cfg),
		Verifier:    google.NewVerifier(cfg.GoogleClientID),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
