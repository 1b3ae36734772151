package mutationevent

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
)

// CommentTable is the only table whose inserts produce notifications.
const CommentTable = "Comment"

// EventPayload is the body Hasura posts for a database event trigger.
type EventPayload struct {
	ID string `json:"id"`
	// CreatedAt is kept verbatim; Hasura omits the zone offset on some versions.
	CreatedAt    string       `json:"created_at"`
	Event        ChangeEvent  `json:"event"`
	DeliveryInfo DeliveryInfo `json:"delivery_info"`
	Trigger      Trigger      `json:"trigger"`
	Table        Table        `json:"table"`
}

// ChangeEvent carries the row snapshots of one committed mutation. Old is
// null for inserts; New is null for deletes.
type ChangeEvent struct {
	Op               enums.EventOp     `json:"op"`
	Data             RowData           `json:"data"`
	SessionVariables map[string]string `json:"session_variables,omitempty"`
	TraceContext     *TraceContext     `json:"trace_context,omitempty"`
}

type RowData struct {
	Old json.RawMessage `json:"old"`
	New json.RawMessage `json:"new"`
}

type TraceContext struct {
	TraceID string `json:"trace_id"`
	SpanID  string `json:"span_id"`
}

// DeliveryInfo is the upstream redelivery bookkeeping; it is logged, never acted on.
type DeliveryInfo struct {
	MaxRetries   int `json:"max_retries"`
	CurrentRetry int `json:"current_retry"`
}

type Trigger struct {
	Name string `json:"name"`
}

type Table struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// IsCommentInsert reports whether the event is the one kind the dispatcher acts on.
func (p *EventPayload) IsCommentInsert() bool {
	if p == nil {
		return false
	}
	return p.Event.Op.Normalize() == enums.EventOpInsert && p.Table.Name == CommentTable
}

// CommentRow is the `new` snapshot of a Comment row.
type CommentRow struct {
	ID        uuid.UUID       `json:"id"`
	PageID    uuid.UUID       `json:"pageId"`
	UserID    uuid.UUID       `json:"userId"`
	ParentID  *uuid.UUID      `json:"parentId"`
	Content   json.RawMessage `json:"content"`
	CreatedAt *time.Time      `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt"`
	DeletedAt *time.Time      `json:"deletedAt"`
}
