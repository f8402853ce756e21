package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"organizer/internal/model"
)

var categorySort = sortable{
	columns: map[string][]string{
		"id":    {"id"},
		"title": {"title"},
	},
	defaultKey: "title",
	defaultDir: "asc",
}

// CategoryRepository manages the shared category dictionary.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context, req PageRequest) (Page[model.Category], error) {
	return paginate[model.Category](r.db.WithContext(ctx).Model(&model.Category{}), req, categorySort)
}

// All returns every category ordered by title, for select boxes and filters.
func (r *CategoryRepository) All(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByTitle(ctx context.Context, title string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Save inserts a new category or updates an existing one.
func (r *CategoryRepository) Save(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Delete(category).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
