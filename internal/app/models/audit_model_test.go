package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestAuditLogSchema(t *testing.T) {
	parsed, err := schema.Parse(&AuditLog{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	// Rows land in "audit_logs" by default naming; TableName stays a data
	// field naming the audited table.
	assert.Equal(t, "audit_logs", parsed.Table)
	require.NotNil(t, parsed.LookUpField("TableName"))

	log := AuditLog{TableName: GiftCard{}.TableName()}
	assert.Equal(t, "gift_cards", log.TableName)
}
