package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TreasuryWallet is the admin-configured custodial wallet used to fund
// outbound redemption payments. The signing key is never stored here; it is
// read from the runtime environment by the treasury service.
type TreasuryWallet struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Asset     string         `json:"asset"`
	Network   string         `json:"network"`
	Address   string         `json:"address"`
	IsPrimary bool           `gorm:"index" json:"is_primary"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (TreasuryWallet) TableName() string {
	return "treasury_wallets"
}

type TreasuryWalletCreateRequest struct {
	Asset     string `json:"asset" validate:"required,max=16"`
	Network   string `json:"network" validate:"required,max=32"`
	Address   string `json:"address" validate:"required,max=128"`
	IsPrimary bool   `json:"is_primary"`
}

// TreasuryBalance is a point-in-time balance snapshot for one asset on one
// network, with a best-effort USD valuation.
type TreasuryBalance struct {
	Asset      string          `json:"asset"`
	Network    string          `json:"network"`
	Balance    decimal.Decimal `json:"balance"`
	USDValue   decimal.Decimal `json:"usd_value"`
	PricedFrom string          `json:"priced_from"` // "stable", "oracle" or "raw"
}

// TreasurySendResult is the outcome of a treasury transfer. Success is only
// reported after the transaction is mined; Success=false always means no
// funds moved or inclusion was never confirmed.
type TreasurySendResult struct {
	Success    bool             `json:"success"`
	TxHash     string           `json:"tx_hash,omitempty"`
	NetworkFee *decimal.Decimal `json:"network_fee,omitempty"`
	Error      string           `json:"error,omitempty"`
}
