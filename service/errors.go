package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound covers missing users, portfolios, holdings and
	// transactions looked up by identity.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate covers unique-constraint collisions: user email,
	// portfolio name per user.
	ErrDuplicate = errors.New("already exists")

	// ErrNoData is returned by analytics on an empty ledger or by
	// per-stock performance when neither holding nor transactions exist.
	ErrNoData = errors.New("no data available")
)

// ValidationError reports malformed input: non-positive quantity or
// price, blank names, unknown transaction types.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientQuantityError is returned when a sell exceeds the held
// quantity. It carries the shortfall context for the caller's message.
type InsufficientQuantityError struct {
	Symbol    string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("cannot sell %d shares of %s, only %d available",
		e.Requested, e.Symbol, e.Available)
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

// translate maps store-level record-not-found onto ErrNotFound so
// callers never depend on gorm errors.
func translate(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return err
}
