package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
)

const msgAlreadyUsed = "This value is already used."

// CategoryService manages the global category dictionary and guards deletion.
type CategoryService struct {
	repo     *repository.CategoryRepository
	contacts *repository.ContactRepository
	events   *repository.EventRepository
}

func NewCategoryService(repo *repository.CategoryRepository, contacts *repository.ContactRepository, events *repository.EventRepository) *CategoryService {
	return &CategoryService{repo: repo, contacts: contacts, events: events}
}

func (s *CategoryService) List(ctx context.Context, req repository.PageRequest) (repository.Page[model.Category], error) {
	return s.repo.List(ctx, req)
}

func (s *CategoryService) All(ctx context.Context) ([]model.Category, error) {
	return s.repo.All(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	return category, nil
}

// Save validates the category and persists it. A taken title is reported as a field error.
func (s *CategoryService) Save(ctx context.Context, category *model.Category) error {
	category.Title = strings.TrimSpace(category.Title)
	if errs := model.ValidateCategory(category); len(errs) > 0 {
		return errs
	}

	existing, err := s.repo.FindByTitle(ctx, category.Title)
	switch {
	case err == nil && existing.ID != category.ID:
		return model.FieldErrors{{Field: "title", Message: msgAlreadyUsed}}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if err := s.repo.Save(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.FieldErrors{{Field: "title", Message: msgAlreadyUsed}}
		}
		return err
	}
	return nil
}

// CanBeDeleted reports whether no contact or event references the category.
func (s *CategoryService) CanBeDeleted(ctx context.Context, category *model.Category) (bool, error) {
	contacts, err := s.contacts.CountByCategory(ctx, category.ID)
	if err != nil {
		return false, err
	}
	events, err := s.events.CountByCategory(ctx, category.ID)
	if err != nil {
		return false, err
	}
	return contacts+events == 0, nil
}

// Delete removes the category, or returns ErrCategoryInUse while it is referenced.
func (s *CategoryService) Delete(ctx context.Context, category *model.Category) error {
	ok, err := s.CanBeDeleted(ctx, category)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryInUse
	}
	return s.repo.Delete(ctx, category)
}
