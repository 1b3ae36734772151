package enums

import "strings"

// EventOp is the operation kind carried by a Hasura event trigger.
type EventOp string

const (
	EventOpInsert EventOp = "INSERT"
	EventOpUpdate EventOp = "UPDATE"
	EventOpDelete EventOp = "DELETE"
	EventOpManual EventOp = "MANUAL"
)

func (o EventOp) IsValid() bool {
	switch o {
	case EventOpInsert, EventOpUpdate, EventOpDelete, EventOpManual:
		return true
	}
	return false
}

// Normalize upper-cases the raw op so lowercase producers still match.
func (o EventOp) Normalize() EventOp {
	return EventOp(strings.ToUpper(strings.TrimSpace(string(o))))
}
