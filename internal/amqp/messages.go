package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"gastos/internal/sheets"

	"github.com/google/uuid"
)

// EventKind tells the consumer which store operation to replay.
type EventKind string

const (
	EventAppend  EventKind = "append"
	EventRewrite EventKind = "rewrite"
)

// RowEvent is a self-contained description of one successful write. An
// append carries the single new record; a rewrite carries the full table.
type RowEvent struct {
	ID        string          `json:"id"`
	Kind      EventKind       `json:"kind"`
	Table     string          `json:"table"`
	Records   []sheets.Record `json:"records"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewAppendEvent(table string, rec sheets.Record) *RowEvent {
	return &RowEvent{
		ID:        uuid.NewString(),
		Kind:      EventAppend,
		Table:     table,
		Records:   []sheets.Record{rec},
		Timestamp: time.Now(),
	}
}

func NewRewriteEvent(table string, recs []sheets.Record) *RowEvent {
	if recs == nil {
		recs = []sheets.Record{}
	}
	return &RowEvent{
		ID:        uuid.NewString(),
		Kind:      EventRewrite,
		Table:     table,
		Records:   recs,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RowEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RowEventFromJSON decodes an event. Unknown kinds decode fine and are
// left to the consumer to drop.
func RowEventFromJSON(data []byte) (*RowEvent, error) {
	var ev RowEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.Table == "" {
		return nil, errors.New("row event without table")
	}
	return &ev, nil
}
