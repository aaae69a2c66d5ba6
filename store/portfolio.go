package store

import (
	"invest-tracker/models"

	"gorm.io/gorm"
)

type PortfolioStore struct {
	db *gorm.DB
}

func NewPortfolioStore(db *gorm.DB) *PortfolioStore {
	return &PortfolioStore{db: db}
}

func (s *PortfolioStore) Create(portfolio *models.Portfolio) error {
	return s.db.Create(portfolio).Error
}

func (s *PortfolioStore) ByUser(userID uint) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := s.db.Where("user_id = ?", userID).Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}

func (s *PortfolioStore) ByID(id uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.db.First(&portfolio, id).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (s *PortfolioStore) Rename(id uint, name string) error {
	return s.db.Model(&models.Portfolio{}).Where("id = ?", id).
		Update("name", name).Error
}

// Delete removes the portfolio together with its holdings and ledger.
func (s *PortfolioStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.Holding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Portfolio{}, id).Error
	})
}
