package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"

	// AuditActionRedemptionAttempt is written immediately before a treasury
	// send so that a crash between the send and the commit is detectable
	// during reconciliation.
	AuditActionRedemptionAttempt AuditAction = "REDEMPTION_ATTEMPT"
)

// AuditLog rows land in "audit_logs" via gorm's default naming; TableName
// here is data, the name of the audited table.
type AuditLog struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TableName string      `gorm:"type:varchar(50);not null" json:"table_name"`
	RecordID  uuid.UUID   `gorm:"index" json:"record_id"`
	Action    AuditAction `json:"action"`
	OldData   *string     `gorm:"type:jsonb" json:"old_data,omitempty"`
	NewData   *string     `gorm:"type:jsonb" json:"new_data,omitempty"`
	ChangedBy *string     `json:"changed_by,omitempty"`
	ChangedAt time.Time   `gorm:"autoCreateTime" json:"changed_at"`
}
