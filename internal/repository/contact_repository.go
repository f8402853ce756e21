package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"organizer/internal/model"
)

var contactSort = sortable{
	columns: map[string][]string{
		"id":      {"id"},
		"name":    {"name", "surname"},
		"surname": {"surname", "name"},
		"email":   {"email"},
	},
	defaultKey: "id",
	defaultDir: "desc",
}

// ContactRepository handles contacts. Every read is scoped to the author.
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) ListByAuthor(ctx context.Context, authorID uint, req PageRequest) (Page[model.Contact], error) {
	q := r.db.WithContext(ctx).Model(&model.Contact{}).Where("author_id = ?", authorID)
	return paginate[model.Contact](q, req, contactSort, "Category")
}

func (r *ContactRepository) FindByID(ctx context.Context, authorID, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("author_id = ? AND id = ?", authorID, id).
		First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Save writes the contact row only; Category and Author are referenced by id.
func (r *ContactRepository) Save(ctx context.Context, contact *model.Contact) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(contact).Error; err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, contact *model.Contact) error {
	if err := r.db.WithContext(ctx).Where("author_id = ?", contact.AuthorID).
		Delete(&model.Contact{}, contact.ID).Error; err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// CountByCategory counts contacts of any author referencing the category.
func (r *ContactRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("category_id = ?", categoryID).
		Distinct("id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count contacts by category: %w", err)
	}
	return count, nil
}
