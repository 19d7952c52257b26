package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanishmail/internal/domain"
	"github.com/vanishmail/internal/pkg/id"
	"github.com/vanishmail/internal/pkg/mailaddr"
)

const (
	localPartLen   = 10
	previewLen     = 140
	defaultListCap = 50
)

type SendRequest struct {
	AddressID string `json:"address_id" validate:"required"`
	To        string `json:"to" validate:"required,email"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

type InboundRequest struct {
	To      string `json:"to" validate:"required,email"`
	From    string `json:"from" validate:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body" validate:"required"`
}

// MessageView is a Message plus its full body for single-message reads.
type MessageView struct {
	domain.Message
	Body string `json:"body"`
}

type Service interface {
	CreateAddress(ctx context.Context, userID string) (*domain.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
	Send(ctx context.Context, userID string, req SendRequest) (*domain.Message, error)
	Inbound(ctx context.Context, req InboundRequest) (*domain.Message, error)
	ListInbox(ctx context.Context, userID string) ([]domain.Message, error)
	ListOutbox(ctx context.Context, userID string) ([]domain.Message, error)
	GetMessage(ctx context.Context, userID, messageID string) (*MessageView, error)
}

type addressStore interface {
	Put(ctx context.Context, a *domain.Address) error
	Get(ctx context.Context, addressID string) (*domain.Address, error)
	GetByAddress(ctx context.Context, address string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Delete(ctx context.Context, addressID string) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	Get(ctx context.Context, messageID string) (*domain.Message, error)
	ListByUser(ctx context.Context, userID, direction string, limit int32) ([]domain.Message, error)
}

type bodyStore interface {
	PutBody(ctx context.Context, key, body string) error
	GetBody(ctx context.Context, key string) (string, error)
}

type messageSender interface {
	SendMessage(from, to, subject, body string) error
}

type service struct {
	addresses  addressStore
	messages   messageStore
	bodies     bodyStore
	sender     messageSender
	mailDomain string
	addressTTL time.Duration
}

type ServiceDeps struct {
	AddressRepo addressStore
	MessageRepo messageStore
	BodyStore   bodyStore
	Sender      messageSender
	MailDomain  string
	AddressTTL  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		addresses:  deps.AddressRepo,
		messages:   deps.MessageRepo,
		bodies:     deps.BodyStore,
		sender:     deps.Sender,
		mailDomain: deps.MailDomain,
		addressTTL: deps.AddressTTL,
	}
}

// CreateAddress mints a fresh disposable address for the user. Collisions on
// the random local part are retried a few times before giving up.
func (s *service) CreateAddress(ctx context.Context, userID string) (*domain.Address, error) {
	for attempt := 0; attempt < 3; attempt++ {
		local, err := mailaddr.RandomLocalPart(localPartLen)
		if err != nil {
			return nil, err
		}
		addr := local + "@" + s.mailDomain
		if _, err := s.addresses.GetByAddress(ctx, addr); err == nil {
			continue
		}
		now := time.Now().UTC()
		a := &domain.Address{
			AddressID: id.New(),
			UserID:    userID,
			Address:   addr,
			ExpiresAt: now.Add(s.addressTTL).Unix(),
			CreatedAt: now,
		}
		if err := s.addresses.Put(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("could not allocate a unique address: %w", domain.ErrConflict)
}

func (s *service) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	a, err := s.addresses.Get(ctx, addressID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return fmt.Errorf("address belongs to another user: %w", domain.ErrForbidden)
	}
	return s.addresses.Delete(ctx, addressID)
}

// Send dispatches an outbound message from one of the user's disposable
// addresses and records it in the outbox. The body is stored in S3 first so
// a relay failure never leaves a dangling record.
func (s *service) Send(ctx context.Context, userID string, req SendRequest) (*domain.Message, error) {
	a, err := s.addresses.Get(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("address belongs to another user: %w", domain.ErrForbidden)
	}
	if a.Expired(time.Now()) {
		return nil, fmt.Errorf("address expired: %w", domain.ErrBadRequest)
	}

	m := &domain.Message{
		MessageID: id.New(),
		UserID:    userID,
		Address:   a.Address,
		Direction: domain.DirectionOutbound,
		From:      a.Address,
		To:        mailaddr.Canonical(req.To),
		Subject:   req.Subject,
		Preview:   preview(req.Body),
		BodyKey:   "out/" + a.Address + "/" + id.New(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bodies.PutBody(ctx, m.BodyKey, req.Body); err != nil {
		return nil, err
	}
	if err := s.sender.SendMessage(m.From, m.To, m.Subject, req.Body); err != nil {
		return nil, fmt.Errorf("relay message: %w", err)
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Inbound files a received message into the inbox of whichever live address
// it targets. Mail to unknown or expired addresses is dropped.
func (s *service) Inbound(ctx context.Context, req InboundRequest) (*domain.Message, error) {
	to := mailaddr.Canonical(req.To)
	a, err := s.addresses.GetByAddress(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("no such address: %w", domain.ErrNotFound)
	}
	if a.Expired(time.Now()) {
		slog.Debug("dropping mail to expired address", "address", to)
		return nil, fmt.Errorf("address expired: %w", domain.ErrNotFound)
	}

	m := &domain.Message{
		MessageID: id.New(),
		UserID:    a.UserID,
		Address:   a.Address,
		Direction: domain.DirectionInbound,
		From:      mailaddr.Canonical(req.From),
		To:        a.Address,
		Subject:   req.Subject,
		Preview:   preview(req.Body),
		BodyKey:   "in/" + a.Address + "/" + id.New(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bodies.PutBody(ctx, m.BodyKey, req.Body); err != nil {
		return nil, err
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListInbox(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messages.ListByUser(ctx, userID, domain.DirectionInbound, defaultListCap)
}

func (s *service) ListOutbox(ctx context.Context, userID string) ([]domain.Message, error) {
	return s.messages.ListByUser(ctx, userID, domain.DirectionOutbound, defaultListCap)
}

func (s *service) GetMessage(ctx context.Context, userID, messageID string) (*MessageView, error) {
	m, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, fmt.Errorf("message belongs to another user: %w", domain.ErrForbidden)
	}
	body, err := s.bodies.GetBody(ctx, m.BodyKey)
	if err != nil {
		return nil, err
	}
	return &MessageView{Message: *m, Body: body}, nil
}

func preview(body string) string {
	if len(body) <= previewLen {
		return body
	}
	return body[:previewLen]
}
