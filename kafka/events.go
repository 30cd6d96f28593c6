package kafka

import "time"

// Event types emitted by the ledger.
const (
	EventTypeReservationCommitted = "reservation.committed"
	EventTypeReservationReleased  = "reservation.released"
	EventTypeItemDeleted          = "item.deleted"
	EventTypeAssemblyDeleted      = "assembly.deleted"
)

// Kafka topics.
const (
	TopicReservations = "stockroom-reservations"
	TopicDeletions    = "stockroom-deletions"
)

// ReservationEvent announces a committed or released reservation.
type ReservationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	ItemID        string    `json:"item_id"`
	RequesterID   string    `json:"requester_id"`
	Quantity      int64     `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
}

// DeletionEvent announces a removed item or assembly, including how many
// dependent records its cascade took with it.
type DeletionEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	RecordID  string    `json:"record_id"`
	Cascaded  int64     `json:"cascaded"`
	Timestamp time.Time `json:"timestamp"`
}
