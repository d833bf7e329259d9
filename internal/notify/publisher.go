package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher broadcasts ledger events over a Redis channel so other
// services (sync, push notifications) can react. Publishing is
// fire-and-forget: a failed publish is logged and the chat reply is
// never delayed or failed because of it.
type Publisher struct {
	client  *redis.Client
	channel string
}

const publishTimeout = 3 * time.Second

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

type entryEvent struct {
	Type   string    `json:"type"`
	Kind   string    `json:"kind"`
	UserID string    `json:"user_id"`
	Amount int64     `json:"amount"`
	At     time.Time `json:"at"`
}

// EntryCreated announces a newly recorded entry. It returns immediately;
// the publish happens on its own goroutine.
func (p *Publisher) EntryCreated(kind, userID string, amount int64) {
	event := entryEvent{
		Type:   "entry_created",
		Kind:   kind,
		UserID: userID,
		Amount: amount,
		At:     time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("⚠️ [NOTIFY] marshal event: %v", err)
			return
		}
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			log.Printf("⚠️ [NOTIFY] publish %s for user %s: %v", event.Kind, event.UserID, err)
		}
	}()
}
