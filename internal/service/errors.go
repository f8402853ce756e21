package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrCategoryInUse      = errors.New("category is still referenced by contacts or events")
	ErrTagInUse           = errors.New("tag is still referenced by events")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
)

// lookup maps a missing row to ErrNotFound and passes other errors through.
func lookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
