package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"organizer/internal/calendar"
	"organizer/internal/model"
	"organizer/internal/repository"
)

const msgInvalidChoice = "This value is not valid."

var idPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// ParseID parses a positive decimal id. Anything else, including leading zeros, is rejected.
func ParseID(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if !idPattern.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// AvailabilityParams selects the reference date, filters and the two independent pages.
type AvailabilityParams struct {
	Date     model.Date
	Filter   repository.EventFilter
	Active   repository.PageRequest
	Upcoming repository.PageRequest
}

// Availability splits a user's events around a reference date.
type Availability struct {
	Date     model.Date
	Filter   repository.EventFilter
	Active   repository.Page[model.Event]
	Upcoming repository.Page[model.Event]
}

// EventService manages a user's events.
type EventService struct {
	repo       *repository.EventRepository
	categories *repository.CategoryRepository
	tags       *TagService
}

func NewEventService(repo *repository.EventRepository, categories *repository.CategoryRepository, tags *TagService) *EventService {
	return &EventService{repo: repo, categories: categories, tags: tags}
}

// ParseFilters turns raw query values into a filter. Malformed ids and ids that do not resolve
// to an existing category or tag are dropped.
func (s *EventService) ParseFilters(ctx context.Context, categoryRaw, tagRaw string) (repository.EventFilter, error) {
	var filter repository.EventFilter

	if id, ok := ParseID(categoryRaw); ok {
		category, err := s.categories.FindByID(ctx, id)
		switch {
		case err == nil:
			filter.CategoryID = &category.ID
		case lookup(err) != ErrNotFound:
			return filter, err
		}
	}

	if id, ok := ParseID(tagRaw); ok {
		tag, err := s.tags.Get(ctx, id)
		switch {
		case err == nil:
			filter.TagID = &tag.ID
		case err != ErrNotFound:
			return filter, err
		}
	}

	return filter, nil
}

func (s *EventService) List(ctx context.Context, user *model.User, filter repository.EventFilter, req repository.PageRequest) (repository.Page[model.Event], error) {
	return s.repo.ListByAuthor(ctx, user.ID, filter, req)
}

// Availability returns the active and upcoming events of user for params.Date.
func (s *EventService) Availability(ctx context.Context, user *model.User, params AvailabilityParams) (Availability, error) {
	out := Availability{Date: params.Date, Filter: params.Filter}

	active, err := s.repo.ListActive(ctx, user.ID, params.Date, params.Filter, params.Active)
	if err != nil {
		return out, err
	}
	upcoming, err := s.repo.ListUpcoming(ctx, user.ID, params.Date, params.Filter, params.Upcoming)
	if err != nil {
		return out, err
	}

	out.Active = active
	out.Upcoming = upcoming
	return out, nil
}

func (s *EventService) Get(ctx context.Context, user *model.User, id uint) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, lookup(err)
	}
	return event, nil
}

// Save validates the event, resolves tagTitles (comma separated) into tags and persists everything
// in one transaction. Nothing is written when validation or any write fails.
func (s *EventService) Save(ctx context.Context, user *model.User, event *model.Event, tagTitles string) error {
	event.AuthorID = user.ID
	event.Title = strings.TrimSpace(event.Title)
	titles := ParseTitles(tagTitles)

	errs := model.ValidateEvent(event)
	if event.CategoryID != nil && !errs.Has("category_id") {
		category, err := s.categories.FindByID(ctx, *event.CategoryID)
		if err != nil {
			if lookup(err) != ErrNotFound {
				return err
			}
			errs.Add("category_id", msgInvalidChoice)
		} else {
			event.Category = category
		}
	}
	errs = append(errs, s.tags.ValidateTitles(titles)...)
	if len(errs) > 0 {
		return errs
	}

	isNew := event.ID == 0
	err := s.repo.Transaction(ctx, func(events *repository.EventRepository, tags *repository.TagRepository) error {
		resolved, err := resolveTags(ctx, tags, titles)
		if err != nil {
			return err
		}
		event.Tags = resolved
		return events.Save(ctx, event)
	})
	if err != nil && isNew {
		event.ID = 0
	}
	return err
}

func (s *EventService) Delete(ctx context.Context, user *model.User, event *model.Event) error {
	if event.AuthorID != user.ID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, event)
}

// Export renders the user's events matching filter as an iCalendar feed.
func (s *EventService) Export(ctx context.Context, user *model.User, filter repository.EventFilter, loc *time.Location, now time.Time) (string, error) {
	events, err := s.repo.AllByAuthor(ctx, user.ID, filter)
	if err != nil {
		return "", err
	}
	return calendar.Export(events, loc, now), nil
}
