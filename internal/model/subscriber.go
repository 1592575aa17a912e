package model

// Subscriber is the read-only snapshot of a billing subscriber supplied by
// the eligible-subscriber source for one run. ChatID is the chat destination
// the bot delivers to.
type Subscriber struct {
	ChatID        int64 `json:"chat_id" db:"chat_id"`
	NotifyEnabled bool  `json:"notify_enabled" db:"notify_enabled"`
}
