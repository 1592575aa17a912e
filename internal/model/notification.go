package model

// Payload holds the already-rendered notification content produced by the
// billing gateway. The core dispatches it; it never inspects or re-renders it.
type Payload struct {
	Text string `json:"text"`
}

// DeliveryRecord is durable evidence that a payload was delivered to a chat.
// MessageID is the chat-side reference used later to retract the message.
// Records are write-once, delete-once: created by the send stage, reaped by
// the cleanup stage once their retention window elapses.
type DeliveryRecord struct {
	ChatID    int64 `json:"chat_id" db:"chat_id"`
	MessageID int64 `json:"message_id" db:"message_id"`
	SentAt    int64 `json:"sent_at" db:"sent_at"`
}

// RunReport summarizes one pipeline run for the observability topic.
type RunReport struct {
	RunID      string `json:"run_id"`
	Trigger    string `json:"trigger"`
	Attempted  int    `json:"attempted"`
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
	FinishedAt int64  `json:"finished_at"`
}
