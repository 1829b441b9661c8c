package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RedemptionStatus string

const (
	RedemptionStatusProcessing    RedemptionStatus = "PROCESSING"
	RedemptionStatusCompleted     RedemptionStatus = "COMPLETED"
	RedemptionStatusFailed        RedemptionStatus = "FAILED"
	RedemptionStatusSendFailed    RedemptionStatus = "SEND_FAILED"
	RedemptionStatusCancelled     RedemptionStatus = "CANCELLED"
	RedemptionStatusPendingManual RedemptionStatus = "PENDING_MANUAL"
)

// Redemption records one redemption attempt that reached the treasury send
// stage. A row with a populated TreasuryTxHash exists only after the on-chain
// send succeeded; pre-send failures never produce a row.
type Redemption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GiftCardID uuid.UUID `gorm:"index" json:"gift_card_id"`

	ValueUSD      decimal.Decimal `gorm:"type:decimal(18,2)" json:"value_usd"`
	SettleCoin    string          `json:"settle_coin"`
	SettleNetwork string          `json:"settle_network"`
	SettleAddress string          `json:"settle_address"`
	SettleMemo    *string         `json:"settle_memo,omitempty"`

	DepositCoin           string           `json:"deposit_coin"`
	DepositNetwork        string           `json:"deposit_network"`
	DepositAmount         decimal.Decimal  `gorm:"type:decimal(36,18)" json:"deposit_amount"`
	EstimatedSettleAmount decimal.Decimal  `gorm:"type:decimal(36,18)" json:"estimated_settle_amount"`
	ActualSettleAmount    *decimal.Decimal `gorm:"type:decimal(36,18)" json:"actual_settle_amount,omitempty"`

	ShiftID        *string          `gorm:"index" json:"shift_id,omitempty"`
	Status         RedemptionStatus `gorm:"index" json:"status"`
	TreasuryTxHash *string          `json:"treasury_tx_hash,omitempty"`
	SettleTxHash   *string          `json:"settle_tx_hash,omitempty"`
	ErrorMessage   *string          `json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

type RedeemRequest struct {
	Code          string  `json:"code" validate:"required,max=50"`
	Password      *string `json:"password,omitempty"`
	SettleCoin    string  `json:"settle_coin" validate:"required,max=16"`
	SettleNetwork string  `json:"settle_network" validate:"required,max=32"`
	SettleAddress string  `json:"settle_address" validate:"required,max=128"`
	SettleMemo    *string `json:"settle_memo,omitempty" validate:"omitempty,max=64"`
	// QuoteID from a preview is accepted but not reused: the redeem flow
	// always prices against a fresh quote so the solvency gate sees a
	// decision-time deposit amount. Preview quotes self-expire unused.
	QuoteID *string `json:"quote_id,omitempty"`
}

type RedeemResponse struct {
	RedemptionID    uuid.UUID       `json:"redemption_id"`
	ShiftID         string          `json:"shift_id"`
	DepositAddress  string          `json:"deposit_address"`
	DepositCoin     string          `json:"deposit_coin"`
	DepositNetwork  string          `json:"deposit_network"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	SettleCoin      string          `json:"settle_coin"`
	TreasuryTxHash  string          `json:"treasury_tx_hash"`
}

// ManualRedemptionRequest is the admin-initiated path for payouts the
// platform cannot auto-send (e.g. non-EVM treasuries). The card is marked
// redeemed up front and the payout is executed off-system; cancelling before
// payment reactivates the card.
type ManualRedemptionRequest struct {
	Code          string  `json:"code" validate:"required,max=50"`
	SettleCoin    string  `json:"settle_coin" validate:"required,max=16"`
	SettleNetwork string  `json:"settle_network" validate:"required,max=32"`
	SettleAddress string  `json:"settle_address" validate:"required,max=128"`
	SettleMemo    *string `json:"settle_memo,omitempty" validate:"omitempty,max=64"`
}

type RedeemQuoteRequest struct {
	Code          string `json:"code" validate:"required,max=50"`
	SettleCoin    string `json:"settle_coin" validate:"required,max=16"`
	SettleNetwork string `json:"settle_network" validate:"required,max=32"`
}

type RedeemQuoteResponse struct {
	ValueUSD         decimal.Decimal `json:"value_usd"`
	SettleCoin       string          `json:"settle_coin"`
	SettleNetwork    string          `json:"settle_network"`
	EstimatedReceive decimal.Decimal `json:"estimated_receive"`
	QuoteID          string          `json:"quote_id"`
	ExpiresAt        time.Time       `json:"expires_at"`
}
