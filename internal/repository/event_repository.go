package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"organizer/internal/model"
)

// EventFilter narrows event listings. Nil fields are not applied.
type EventFilter struct {
	CategoryID *uint
	TagID      *uint
}

// IsZero reports whether no filter is set.
func (f EventFilter) IsZero() bool {
	return f.CategoryID == nil && f.TagID == nil
}

var eventSort = sortable{
	columns: map[string][]string{
		"date":  {"date_from", "time_from"},
		"end":   {"date_to", "time_to"},
		"title": {"title"},
		"id":    {"id"},
	},
	defaultKey: "date",
	defaultDir: "desc",
}

// EventRepository handles events and their tag links.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) byAuthor(ctx context.Context, authorID uint, filter EventFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Event{}).Where("author_id = ?", authorID)
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.TagID != nil {
		q = q.Where("id IN (SELECT event_id FROM event_tags WHERE tag_id = ?)", *filter.TagID)
	}
	return q
}

// ListByAuthor pages through all events of the author.
func (r *EventRepository) ListByAuthor(ctx context.Context, authorID uint, filter EventFilter, req PageRequest) (Page[model.Event], error) {
	return paginate[model.Event](r.byAuthor(ctx, authorID, filter), req, eventSort, "Category", "Tags")
}

// ListActive pages through events whose [date_from, date_to] range contains day.
func (r *EventRepository) ListActive(ctx context.Context, authorID uint, day model.Date, filter EventFilter, req PageRequest) (Page[model.Event], error) {
	q := r.byAuthor(ctx, authorID, filter).Where("date_from <= ? AND date_to >= ?", day, day)
	return paginate[model.Event](q, req, eventSort, "Category", "Tags")
}

// ListUpcoming pages through events starting strictly after day.
func (r *EventRepository) ListUpcoming(ctx context.Context, authorID uint, day model.Date, filter EventFilter, req PageRequest) (Page[model.Event], error) {
	q := r.byAuthor(ctx, authorID, filter).Where("date_from > ?", day)
	return paginate[model.Event](q, req, eventSort, "Category", "Tags")
}

// AllByAuthor returns every matching event in chronological order.
func (r *EventRepository) AllByAuthor(ctx context.Context, authorID uint, filter EventFilter) ([]model.Event, error) {
	var events []model.Event
	if err := r.byAuthor(ctx, authorID, filter).
		Preload("Category").
		Preload("Tags").
		Order("date_from ASC, time_from ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) FindByID(ctx context.Context, authorID, id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags").
		Where("author_id = ? AND id = ?", authorID, id).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Transaction runs fn with event and tag repositories bound to one database transaction.
// Any error returned by fn rolls back every write made through them.
func (r *EventRepository) Transaction(ctx context.Context, fn func(events *EventRepository, tags *TagRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewEventRepository(tx), NewTagRepository(tx))
	})
}

// Save writes the event row and replaces its tag links in one transaction. Tags must already exist.
func (r *EventRepository) Save(ctx context.Context, event *model.Event) error {
	tags := event.Tags
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(event).Error; err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		assoc := tx.Model(event).Association("Tags")
		var err error
		if len(tags) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(tags)
		}
		if err != nil {
			return fmt.Errorf("save event tags: %w", err)
		}
		event.Tags = tags
		return nil
	})
}

// Delete removes the event's tag links, then the event.
func (r *EventRepository) Delete(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM event_tags WHERE event_id = ?", event.ID).Error; err != nil {
			return fmt.Errorf("delete event tags: %w", err)
		}
		if err := tx.Where("author_id = ?", event.AuthorID).Delete(&model.Event{}, event.ID).Error; err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

// CountByCategory counts events of any author referencing the category.
func (r *EventRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("category_id = ?", categoryID).
		Distinct("id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count events by category: %w", err)
	}
	return count, nil
}

// CountByTag counts events linked to the tag through event_tags.
func (r *EventRepository) CountByTag(ctx context.Context, tagID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("event_tags").
		Where("tag_id = ?", tagID).
		Distinct("event_id").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count events by tag: %w", err)
	}
	return count, nil
}
