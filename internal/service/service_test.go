package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
	"organizer/internal/testutil"
)

type services struct {
	db         *gorm.DB
	users      *UserService
	categories *CategoryService
	tags       *TagService
	contacts   *ContactService
	events     *EventService
	digest     *DigestService
}

func newServices(t *testing.T) services {
	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	contactRepo := repository.NewContactRepository(db)
	eventRepo := repository.NewEventRepository(db)

	tags := NewTagService(tagRepo, eventRepo)
	return services{
		db:         db,
		users:      NewUserService(userRepo).WithCost(bcrypt.MinCost),
		categories: NewCategoryService(categoryRepo, contactRepo, eventRepo),
		tags:       tags,
		contacts:   NewContactService(contactRepo, categoryRepo),
		events:     NewEventService(eventRepo, categoryRepo, tags),
		digest:     NewDigestService(eventRepo),
	}
}

func (s services) register(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := s.users.Register(context.Background(), email, "secret123")
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func (s services) category(t *testing.T, title string) *model.Category {
	t.Helper()
	c := &model.Category{Title: title}
	if err := s.categories.Save(context.Background(), c); err != nil {
		t.Fatalf("save category: %v", err)
	}
	return c
}

func newEvent(categoryID uint, title, from, to string, timeFrom, timeTo model.Clock) *model.Event {
	dateFrom, _ := model.ParseDate(from)
	dateTo, _ := model.ParseDate(to)
	return &model.Event{
		CategoryID: &categoryID,
		Title:      title,
		DateFrom:   dateFrom,
		TimeFrom:   timeFrom,
		DateTo:     dateTo,
		TimeTo:     timeTo,
	}
}
