package store

import (
	"invest-tracker/models"

	"gorm.io/gorm"
)

type HoldingStore struct {
	db *gorm.DB
}

func NewHoldingStore(db *gorm.DB) *HoldingStore {
	return &HoldingStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *HoldingStore) WithTx(tx *gorm.DB) *HoldingStore {
	return &HoldingStore{db: tx}
}

func (s *HoldingStore) Create(holding *models.Holding) error {
	return s.db.Create(holding).Error
}

func (s *HoldingStore) ByPortfolio(portfolioID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("portfolio_id = ?", portfolioID).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *HoldingStore) ByID(id uint) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.First(&holding, id).Error; err != nil {
		return nil, err
	}
	return &holding, nil
}

func (s *HoldingStore) BySymbol(portfolioID uint, symbol string) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (s *HoldingStore) Update(id uint, fields map[string]interface{}) error {
	return s.db.Model(&models.Holding{}).Where("id = ?", id).
		Updates(fields).Error
}

func (s *HoldingStore) Delete(id uint) error {
	return s.db.Delete(&models.Holding{}, id).Error
}
