package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Dispute is a conflict record opened by one party against another over a
// settled transaction. Party ids are profile ids, resolved by the caller.
type Dispute struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	TransactionID   uuid.UUID      `db:"transaction_id" json:"transaction_id"`
	ComplainantID   uuid.UUID      `db:"complainant_id" json:"complainant_id"`
	ComplainantRole string         `db:"complainant_role" json:"complainant_role"`
	DefendantID     uuid.UUID      `db:"defendant_id" json:"defendant_id"`
	DefendantRole   string         `db:"defendant_role" json:"defendant_role"`
	Reason          string         `db:"reason" json:"reason"`
	Evidences       pq.StringArray `db:"evidences" json:"evidences"`
	Status          string         `db:"status" json:"status"`
	Resolution      *string        `db:"resolution" json:"resolution,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ResolvedAt      *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
}
