package contracts

import (
	"errors"
	"strings"
)

const (
	ErrorCategoryAPI     = "api"
	ErrorCategoryLedger  = "ledger"
	ErrorCategoryStorage = "storage"
	ErrorCategoryNotify  = "notify"
)

func normalizeErrorCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case ErrorCategoryLedger:
		return ErrorCategoryLedger
	case ErrorCategoryStorage:
		return ErrorCategoryStorage
	case ErrorCategoryNotify:
		return ErrorCategoryNotify
	default:
		return ErrorCategoryAPI
	}
}

func WrapCategorizedError(category string, err error) error {
	if err == nil {
		return nil
	}
	var existing *CategorizedError
	if errors.As(err, &existing) {
		return &CategorizedError{
			Category: normalizeErrorCategory(existing.Category),
			Err:      existing.Err,
		}
	}
	return &CategorizedError{
		Category: normalizeErrorCategory(category),
		Err:      err,
	}
}

func ErrorCategory(err error) string {
	var classified *CategorizedError
	if errors.As(err, &classified) {
		return normalizeErrorCategory(classified.Category)
	}
	return ErrorCategoryAPI
}

var (
	ErrMissingAuth         = errors.New("missing authentication information")
	ErrInvalidRole         = errors.New("invalid role")
	ErrAddressBothRoles    = errors.New("address already exists as both fan and creator")
	ErrRegisteredAsFan     = errors.New("this wallet is already registered as a fan")
	ErrRegisteredAsCreator = errors.New("this wallet is already registered as a creator")
)
