package store

import (
	"invest-tracker/models"

	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *UserStore) ByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Update(id uint, name, email string) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "email": email}).Error
}

func (s *UserStore) Delete(id uint) error {
	return s.db.Delete(&models.User{}, id).Error
}
