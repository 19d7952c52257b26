package domain

import "time"

// Message directions relative to the mailbox owner.
const (
	DirectionInbound  = "in"
	DirectionOutbound = "out"
)

// Message is a single inbox/outbox entry. The full body lives in S3 under
// BodyKey; the record only carries a short preview for list views.
type Message struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	Address   string    `json:"address" dynamodbav:"address"`
	Direction string    `json:"direction" dynamodbav:"direction"`
	From      string    `json:"from" dynamodbav:"from_addr"`
	To        string    `json:"to" dynamodbav:"to_addr"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Preview   string    `json:"preview" dynamodbav:"preview"`
	BodyKey   string    `json:"-" dynamodbav:"body_key"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
