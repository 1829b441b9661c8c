package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift statuses as reported by the exchange. Statuses are owned entirely by
// the exchange side; this system only ever reads them.
type ShiftStatus string

const (
	ShiftStatusWaiting    ShiftStatus = "waiting"
	ShiftStatusPending    ShiftStatus = "pending"
	ShiftStatusProcessing ShiftStatus = "processing"
	ShiftStatusReview     ShiftStatus = "review"
	ShiftStatusSettling   ShiftStatus = "settling"
	ShiftStatusSettled    ShiftStatus = "settled"
	ShiftStatusRefunded   ShiftStatus = "refunded"
	ShiftStatusExpired    ShiftStatus = "expired"
	ShiftStatusFailed     ShiftStatus = "failed"
)

// IsComplete reports whether the shift settled successfully.
func (s ShiftStatus) IsComplete() bool {
	return s == ShiftStatusSettled
}

// IsFailed reports whether the shift terminally failed and will never settle.
func (s ShiftStatus) IsFailed() bool {
	return s == ShiftStatusFailed || s == ShiftStatusExpired || s == ShiftStatusRefunded
}

type SideShiftQuoteRequest struct {
	DepositCoin    string `json:"depositCoin"`
	DepositNetwork string `json:"depositNetwork"`
	SettleCoin     string `json:"settleCoin"`
	SettleNetwork  string `json:"settleNetwork"`
	SettleAmount   string `json:"settleAmount"`
	AffiliateID    string `json:"affiliateId,omitempty"`
}

// SideShiftQuote is a time-boxed fixed-rate price lock. A quote is single
// use; creating a shift from an expired quote id fails at the exchange.
type SideShiftQuote struct {
	ID             string          `json:"id"`
	DepositCoin    string          `json:"depositCoin"`
	DepositNetwork string          `json:"depositNetwork"`
	SettleCoin     string          `json:"settleCoin"`
	SettleNetwork  string          `json:"settleNetwork"`
	DepositAmount  decimal.Decimal `json:"depositAmount"`
	SettleAmount   decimal.Decimal `json:"settleAmount"`
	Rate           decimal.Decimal `json:"rate"`
	ExpiresAt      time.Time       `json:"expiresAt"`
}

type SideShiftCreateShiftRequest struct {
	QuoteID       string `json:"quoteId"`
	SettleAddress string `json:"settleAddress"`
	SettleMemo    string `json:"settleMemo,omitempty"`
	AffiliateID   string `json:"affiliateId,omitempty"`
}

type SideShiftDeposit struct {
	Amount     decimal.Decimal `json:"amount"`
	TxHash     string          `json:"txHash,omitempty"`
	SettleHash string          `json:"settleHash,omitempty"`
}

// SideShiftShift is a conversion order bound to a quote. The deposit address
// is where the treasury pays; the exchange forwards the converted amount to
// the user's settle address.
type SideShiftShift struct {
	ID             string             `json:"id"`
	QuoteID        string             `json:"quoteId,omitempty"`
	DepositCoin    string             `json:"depositCoin"`
	DepositNetwork string             `json:"depositNetwork"`
	DepositAddress string             `json:"depositAddress"`
	DepositMemo    string             `json:"depositMemo,omitempty"`
	SettleCoin     string             `json:"settleCoin"`
	SettleNetwork  string             `json:"settleNetwork"`
	SettleAddress  string             `json:"settleAddress"`
	SettleAmount   *decimal.Decimal   `json:"settleAmount,omitempty"`
	Status         ShiftStatus        `json:"status"`
	Deposits       []SideShiftDeposit `json:"deposits,omitempty"`
	ExpiresAt      *time.Time         `json:"expiresAt,omitempty"`
	CreatedAt      *time.Time         `json:"createdAt,omitempty"`
}

// SideShiftPair carries the exchange's limits for a deposit/settle pair.
type SideShiftPair struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Rate decimal.Decimal `json:"rate"`
}

type SideShiftErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
