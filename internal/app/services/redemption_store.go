package services

import (
	"github.com/google/uuid"
	"github.com/starixlabs/starix-core/internal/app/errors"
	"github.com/starixlabs/starix-core/internal/app/models"
	"gorm.io/gorm"
)

// RedemptionStore persists redemption rows. Split behind an interface so the
// orchestrator's step gating can be exercised without a database.
type RedemptionStore interface {
	Create(r *models.Redemption) error
	Get(id uuid.UUID) (*models.Redemption, error)
	Update(r *models.Redemption) error
	ListProcessing() ([]models.Redemption, error)
	List(pagination *models.PaginationRequest, status *models.RedemptionStatus) (*models.Pagination[[]models.Redemption], error)
}

type gormRedemptionStore struct {
	db *gorm.DB
}

func NewRedemptionStore(db *gorm.DB) RedemptionStore {
	return &gormRedemptionStore{db: db}
}

func (s *gormRedemptionStore) Create(r *models.Redemption) error {
	if err := s.db.Create(r).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create redemption")
	}
	return nil
}

func (s *gormRedemptionStore) Get(id uuid.UUID) (*models.Redemption, error) {
	var redemption models.Redemption
	err := s.db.Where("id = ?", id).First(&redemption).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Redemption not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get redemption")
	}
	return &redemption, nil
}

func (s *gormRedemptionStore) Update(r *models.Redemption) error {
	if err := s.db.Save(r).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to update redemption")
	}
	return nil
}

func (s *gormRedemptionStore) ListProcessing() ([]models.Redemption, error) {
	var redemptions []models.Redemption
	if err := s.db.Where("status = ?", models.RedemptionStatusProcessing).
		Order("created_at ASC").
		Find(&redemptions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list processing redemptions")
	}
	return redemptions, nil
}

func (s *gormRedemptionStore) List(pagination *models.PaginationRequest, status *models.RedemptionStatus) (*models.Pagination[[]models.Redemption], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	countQuery := s.db.Model(&models.Redemption{})
	if status != nil {
		countQuery = countQuery.Where("status = ?", *status)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count redemptions")
	}

	var redemptions []models.Redemption
	query := s.db.Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Limit(pagination.Limit).Offset(offset).Find(&redemptions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list redemptions")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Redemption]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      redemptions,
	}, nil
}
