package domain

import "time"

// Address is a disposable email address owned by a user. Expired addresses
// stop receiving inbound mail; DynamoDB TTL on expires_at evicts them.
type Address struct {
	AddressID string    `json:"id" dynamodbav:"address_id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	Address   string    `json:"address" dynamodbav:"address"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

func (a *Address) Expired(now time.Time) bool {
	return now.Unix() > a.ExpiresAt
}
