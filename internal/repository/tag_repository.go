package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"organizer/internal/model"
)

var tagSort = sortable{
	columns: map[string][]string{
		"id":    {"id"},
		"title": {"title"},
	},
	defaultKey: "title",
	defaultDir: "asc",
}

// TagRepository handles CRUD for tags.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context, req PageRequest) (Page[model.Tag], error) {
	return paginate[model.Tag](r.db.WithContext(ctx).Model(&model.Tag{}), req, tagSort)
}

func (r *TagRepository) All(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) FindByTitle(ctx context.Context, title string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) Save(ctx context.Context, tag *model.Tag) error {
	if err := r.db.WithContext(ctx).Save(tag).Error; err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, tag *model.Tag) error {
	if err := r.db.WithContext(ctx).Delete(tag).Error; err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
