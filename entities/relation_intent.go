package entities

import (
	"github.com/google/uuid"
)

const (
	IntentFollow     = "follow"
	IntentUnfollow   = "unfollow"
	IntentFavorite   = "favorite"
	IntentUnfavorite = "unfavorite"

	IntentStatusPending = "pending"
	IntentStatusDone    = "done"
	IntentStatusAborted = "aborted"
)

// RelationIntent is the write-ahead record of a paired mutation performed
// outside a database transaction. Pending rows are replayed by the reconciler.
type RelationIntent struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Op       string    `gorm:"type:varchar(16);not null" json:"op"`
	ActorID  uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	TargetID uuid.UUID `gorm:"type:uuid;not null" json:"target_id"`
	Status   string    `gorm:"type:varchar(16);index;not null" json:"status"`
	Attempts int       `gorm:"not null;default:0" json:"attempts"`
	LastErr  string    `gorm:"type:text" json:"last_err,omitempty"`

	Timestamp
}
