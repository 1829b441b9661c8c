package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GiftCardStatus string

const (
	GiftCardStatusPending   GiftCardStatus = "PENDING"
	GiftCardStatusActive    GiftCardStatus = "ACTIVE"
	GiftCardStatusRedeemed  GiftCardStatus = "REDEEMED"
	GiftCardStatusExpired   GiftCardStatus = "EXPIRED"
	GiftCardStatusCancelled GiftCardStatus = "CANCELLED"
)

// IsTerminal reports whether no further status transition is allowed.
func (s GiftCardStatus) IsTerminal() bool {
	return s == GiftCardStatusRedeemed || s == GiftCardStatusExpired || s == GiftCardStatusCancelled
}

type GiftCard struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code         string          `gorm:"uniqueIndex" json:"code"`
	SecretCode   *string         `gorm:"uniqueIndex" json:"secret_code,omitempty"`
	ValueUSD     decimal.Decimal `gorm:"type:decimal(18,2)" json:"value_usd"`
	PasswordHash *string         `json:"-"`
	Status       GiftCardStatus  `gorm:"index" json:"status"`

	RedeemedAt      *time.Time       `json:"redeemed_at,omitempty"`
	RedeemedCoin    *string          `json:"redeemed_coin,omitempty"`
	RedeemedNetwork *string          `json:"redeemed_network,omitempty"`
	RedeemedAmount  *decimal.Decimal `gorm:"type:decimal(36,18)" json:"redeemed_amount,omitempty"`
	RedeemedAddress *string          `json:"redeemed_address,omitempty"`

	ExpiresAt *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (GiftCard) TableName() string {
	return "gift_cards"
}

// HasPassword reports whether the card is password protected.
func (g *GiftCard) HasPassword() bool {
	return g.PasswordHash != nil && *g.PasswordHash != ""
}

// IsExpired reports whether the card is past its expiry time.
func (g *GiftCard) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}

type GiftCardCreateRequest struct {
	ValueUSD   decimal.Decimal `json:"value_usd" validate:"required,gt=0"`
	Password   *string         `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	WithSecret bool            `json:"with_secret"`
	Activate   bool            `json:"activate"`
}

// GiftCardRedemptionMeta is the redemption metadata stamped onto a card when
// it transitions to REDEEMED.
type GiftCardRedemptionMeta struct {
	Coin    string
	Network string
	Amount  decimal.Decimal
	Address string
}

// GiftCardCheckResponse is the public, non-sensitive view of a card returned
// by the check endpoint before a redemption is attempted.
type GiftCardCheckResponse struct {
	Code              string          `json:"code"`
	ValueUSD          decimal.Decimal `json:"value_usd"`
	Status            GiftCardStatus  `json:"status"`
	PasswordProtected bool            `json:"password_protected"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
}
