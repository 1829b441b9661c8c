package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"github.com/starixlabs/starix-core/internal/app/pkg"
	"github.com/starixlabs/starix-core/internal/infrastructures"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type GiftCardService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewGiftCardService(db *gorm.DB, validator *infrastructures.Validator) *GiftCardService {
	return &GiftCardService{
		db:        db,
		validator: validator,
	}
}

// CreateGiftCard issues a new card. Cards start PENDING and activate on
// purchase-payment confirmation; admin tooling may activate immediately.
func (s *GiftCardService) CreateGiftCard(req *models.GiftCardCreateRequest) (*models.GiftCard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code, err := pkg.GenerateCardCode()
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to generate card code")
	}

	card := &models.GiftCard{
		Code:      code,
		ValueUSD:  req.ValueUSD,
		Status:    models.GiftCardStatusPending,
		ExpiresAt: req.ExpiresAt,
	}

	if req.Activate {
		card.Status = models.GiftCardStatusActive
	}

	if req.WithSecret {
		secret, err := pkg.GenerateSecretCode()
		if err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to generate secret code")
		}
		card.SecretCode = &secret
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to hash card password")
		}
		hashStr := string(hash)
		card.PasswordHash = &hashStr
	}

	if err := s.db.Create(card).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create gift card")
	}

	return card, nil
}

func (s *GiftCardService) GetGiftCard(cardId string) (*models.GiftCard, error) {
	cardUUID, err := uuid.Parse(cardId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid card ID format")
	}

	var card models.GiftCard
	err = s.db.Where("id = ?", cardUUID).First(&card).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Gift card not found").WithCode(errors.CodeCardNotFound)
		}
		return nil, errors.NewInternalServerError(err, "Failed to get gift card")
	}

	return &card, nil
}

// FindByAnyCode looks a card up by its primary or secret code,
// case-insensitively with surrounding whitespace ignored.
func (s *GiftCardService) FindByAnyCode(code string) (*models.GiftCard, error) {
	normalized := pkg.NormalizeCardCode(code)
	if normalized == "" {
		return nil, errors.NewBadRequestError("Card code is required").WithCode(errors.CodeValidationError)
	}

	var card models.GiftCard
	err := s.db.Where("code = ? OR secret_code = ?", normalized, normalized).First(&card).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Gift card not found").WithCode(errors.CodeCardNotFound)
		}
		return nil, errors.NewInternalServerError(err, "Failed to get gift card")
	}

	return &card, nil
}

// CheckCard is the public pre-redemption preview: non-sensitive card fields
// only, no password required.
func (s *GiftCardService) CheckCard(code string) (*models.GiftCardCheckResponse, error) {
	card, err := s.FindByAnyCode(code)
	if err != nil {
		return nil, err
	}

	return &models.GiftCardCheckResponse{
		Code:              card.Code,
		ValueUSD:          card.ValueUSD,
		Status:            card.Status,
		PasswordProtected: card.HasPassword(),
		ExpiresAt:         card.ExpiresAt,
	}, nil
}

// VerifyPassword checks a supplied password against the card's hash.
func (s *GiftCardService) VerifyPassword(card *models.GiftCard, password string) bool {
	if !card.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(*card.PasswordHash), []byte(password)) == nil
}

// ActivateCard transitions a card PENDING -> ACTIVE on purchase-payment
// confirmation. The update is conditional so a double confirmation is a
// no-op error rather than a status overwrite.
func (s *GiftCardService) ActivateCard(cardId string) (*models.GiftCard, error) {
	cardUUID, err := uuid.Parse(cardId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid card ID format")
	}

	result := s.db.Model(&models.GiftCard{}).
		Where("id = ? AND status = ?", cardUUID, models.GiftCardStatusPending).
		Update("status", models.GiftCardStatusActive)
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to activate gift card")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError("Gift card is not pending activation")
	}

	return s.GetGiftCard(cardId)
}

// CancelCard cancels a non-terminal card.
func (s *GiftCardService) CancelCard(cardId string) (*models.GiftCard, error) {
	card, err := s.GetGiftCard(cardId)
	if err != nil {
		return nil, err
	}

	if card.Status.IsTerminal() {
		return nil, errors.NewConflictError(fmt.Sprintf("Gift card is already %s", card.Status))
	}

	result := s.db.Model(&models.GiftCard{}).
		Where("id = ? AND status IN ?", card.ID, []models.GiftCardStatus{models.GiftCardStatusPending, models.GiftCardStatusActive}).
		Update("status", models.GiftCardStatusCancelled)
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to cancel gift card")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError("Gift card status changed, cancel aborted")
	}

	return s.GetGiftCard(cardId)
}

// MarkExpired transitions a card to EXPIRED. Conditional on a non-terminal
// status so a concurrent redemption commit is never overwritten.
func (s *GiftCardService) MarkExpired(cardId uuid.UUID) error {
	result := s.db.Model(&models.GiftCard{}).
		Where("id = ? AND status IN ?", cardId, []models.GiftCardStatus{models.GiftCardStatusPending, models.GiftCardStatusActive}).
		Update("status", models.GiftCardStatusExpired)
	if result.Error != nil {
		return errors.NewInternalServerError(result.Error, "Failed to expire gift card")
	}
	return nil
}

// ExpireDue sweeps all cards past their expiry into EXPIRED.
func (s *GiftCardService) ExpireDue() (int64, error) {
	result := s.db.Model(&models.GiftCard{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]models.GiftCardStatus{models.GiftCardStatusPending, models.GiftCardStatusActive}, time.Now()).
		Update("status", models.GiftCardStatusExpired)
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to expire gift cards")
	}
	return result.RowsAffected, nil
}

// MarkRedeemed performs the redemption commit as a single conditional
// update: the card flips to REDEEMED only if it is still exactly ACTIVE.
// Returns false when another attempt won the race; the caller must treat
// that as "already redeemed", never as success.
func (s *GiftCardService) MarkRedeemed(cardId uuid.UUID, meta models.GiftCardRedemptionMeta) (bool, error) {
	now := time.Now()
	result := s.db.Model(&models.GiftCard{}).
		Where("id = ? AND status = ?", cardId, models.GiftCardStatusActive).
		Updates(map[string]interface{}{
			"status":           models.GiftCardStatusRedeemed,
			"redeemed_at":      now,
			"redeemed_coin":    meta.Coin,
			"redeemed_network": meta.Network,
			"redeemed_amount":  meta.Amount,
			"redeemed_address": meta.Address,
		})
	if result.Error != nil {
		return false, errors.NewInternalServerError(result.Error, "Failed to mark gift card redeemed")
	}
	return result.RowsAffected == 1, nil
}

// Reactivate returns a card to ACTIVE and clears redemption metadata. Only
// used by the admin cancel path for manual redemptions where no treasury
// funds have moved.
func (s *GiftCardService) Reactivate(cardId uuid.UUID) error {
	result := s.db.Model(&models.GiftCard{}).
		Where("id = ?", cardId).
		Updates(map[string]interface{}{
			"status":           models.GiftCardStatusActive,
			"redeemed_at":      nil,
			"redeemed_coin":    nil,
			"redeemed_network": nil,
			"redeemed_amount":  nil,
			"redeemed_address": nil,
		})
	if result.Error != nil {
		return errors.NewInternalServerError(result.Error, "Failed to reactivate gift card")
	}
	return nil
}

func (s *GiftCardService) ListGiftCards(pagination *models.PaginationRequest, status *models.GiftCardStatus) (*models.Pagination[[]models.GiftCard], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	countQuery := s.db.Model(&models.GiftCard{})
	if status != nil {
		countQuery = countQuery.Where("status = ?", *status)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count gift cards")
	}

	var cards []models.GiftCard
	query := s.db.Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Limit(pagination.Limit).Offset(offset).Find(&cards).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list gift cards")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.GiftCard]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      cards,
	}, nil
}
