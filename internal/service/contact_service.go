package service

import (
	"context"
	"strings"

	"organizer/internal/model"
	"organizer/internal/repository"
)

// ContactService exposes the address book of one user.
type ContactService struct {
	repo       *repository.ContactRepository
	categories *repository.CategoryRepository
}

func NewContactService(repo *repository.ContactRepository, categories *repository.CategoryRepository) *ContactService {
	return &ContactService{repo: repo, categories: categories}
}

func (s *ContactService) List(ctx context.Context, user *model.User, req repository.PageRequest) (repository.Page[model.Contact], error) {
	return s.repo.ListByAuthor(ctx, user.ID, req)
}

func (s *ContactService) Get(ctx context.Context, user *model.User, id uint) (*model.Contact, error) {
	contact, err := s.repo.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, lookup(err)
	}
	return contact, nil
}

// Save stores the contact as authored by user.
func (s *ContactService) Save(ctx context.Context, user *model.User, contact *model.Contact) error {
	contact.AuthorID = user.ID
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Surname = strings.TrimSpace(contact.Surname)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Telephone = strings.TrimSpace(contact.Telephone)

	errs := model.ValidateContact(contact)
	if contact.CategoryID != nil && !errs.Has("category_id") {
		category, err := s.categories.FindByID(ctx, *contact.CategoryID)
		if err != nil {
			if lookup(err) != ErrNotFound {
				return err
			}
			errs.Add("category_id", msgInvalidChoice)
		} else {
			contact.Category = category
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return s.repo.Save(ctx, contact)
}

func (s *ContactService) Delete(ctx context.Context, user *model.User, contact *model.Contact) error {
	if contact.AuthorID != user.ID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, contact)
}
