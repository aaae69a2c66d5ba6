package service

import (
	"errors"
	"fmt"
	"strings"

	"invest-tracker/models"
	"invest-tracker/store"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned on a failed login without revealing
// whether the email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	users *store.UserStore
}

func NewUserService(users *store.UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates a user if the email is not taken.
func (s *UserService) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, validationf("name and email are required")
	}
	if password == "" {
		return nil, validationf("password is required")
	}

	if _, err := s.users.ByEmail(email); err == nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Password: string(hashed)}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns a user by identity.
func (s *UserService) Get(userID uint) (*models.User, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, translate(err, "user", userID)
	}
	return user, nil
}

// UpdateProfile changes name and email, keeping email unique.
func (s *UserService) UpdateProfile(userID uint, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, validationf("name and email are required")
	}

	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if email != user.Email {
		if _, err := s.users.ByEmail(email); err == nil {
			return nil, fmt.Errorf("user %s: %w", email, ErrDuplicate)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := s.users.Update(userID, name, email); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// DeleteAccount removes the user record.
func (s *UserService) DeleteAccount(userID uint) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}
	return s.users.Delete(userID)
}
