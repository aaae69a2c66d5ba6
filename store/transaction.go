package store

import (
	"invest-tracker/models"

	"gorm.io/gorm"
)

type TransactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *TransactionStore) WithTx(tx *gorm.DB) *TransactionStore {
	return &TransactionStore{db: tx}
}

func (s *TransactionStore) Create(trans *models.Transaction) error {
	return s.db.Create(trans).Error
}

// ByPortfolio returns the full ledger for a portfolio, most recent first.
func (s *TransactionStore) ByPortfolio(portfolioID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Where("portfolio_id = ?", portfolioID).
		Order("date DESC").Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) ByStock(stockID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Where("stock_id = ?", stockID).Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *TransactionStore) ByID(id uint) (*models.Transaction, error) {
	var trans models.Transaction
	if err := s.db.First(&trans, id).Error; err != nil {
		return nil, err
	}
	return &trans, nil
}

func (s *TransactionStore) Delete(id uint) error {
	return s.db.Delete(&models.Transaction{}, id).Error
}
