package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// LogAudit creates an audit log entry for any change in the system
func (s *AuditService) LogAudit(tableName string, recordID uuid.UUID, action models.AuditAction, oldData, newData interface{}, changedBy *string) error {
	var oldDataJSON, newDataJSON *string

	if oldData != nil {
		jsonBytes, err := json.Marshal(oldData)
		if err != nil {
			return fmt.Errorf("failed to marshal old data: %w", err)
		}
		strJSON := string(jsonBytes)
		oldDataJSON = &strJSON
	}

	if newData != nil {
		jsonBytes, err := json.Marshal(newData)
		if err != nil {
			return fmt.Errorf("failed to marshal new data: %w", err)
		}
		strJSON := string(jsonBytes)
		newDataJSON = &strJSON
	}

	auditLog := &models.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldDataJSON,
		NewData:   newDataJSON,
		ChangedBy: changedBy,
	}

	if err := s.db.Create(auditLog).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create audit log")
	}

	return nil
}

// LogRedemptionAttempt writes the durable intent record immediately before a
// treasury send. If a crash lands between the send and the redemption
// commit, this row is the evidence that funds may have moved: an attempt
// with no matching redemption row flags the card for manual review.
func (s *AuditService) LogRedemptionAttempt(cardID uuid.UUID, shiftID string, detail interface{}) error {
	detailMap := map[string]interface{}{
		"shift_id": shiftID,
		"detail":   detail,
	}
	return s.LogAudit(models.GiftCard{}.TableName(), cardID, models.AuditActionRedemptionAttempt, nil, detailMap, nil)
}

// GetAuditLogs retrieves audit logs for a record
func (s *AuditService) GetAuditLogs(recordID uuid.UUID) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := s.db.Where("record_id = ?", recordID).
		Order("changed_at DESC").
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit logs")
	}

	return logs, nil
}
