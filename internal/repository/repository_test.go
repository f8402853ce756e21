package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"gorm.io/gorm"

	"organizer/internal/config"
	"organizer/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

type fixture struct {
	users      *UserRepository
	categories *CategoryRepository
	tags       *TagRepository
	contacts   *ContactRepository
	events     *EventRepository
}

func newFixture(t *testing.T) fixture {
	db := newTestDB(t)
	return fixture{
		users:      NewUserRepository(db),
		categories: NewCategoryRepository(db),
		tags:       NewTagRepository(db),
		contacts:   NewContactRepository(db),
		events:     NewEventRepository(db),
	}
}

func (f fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "x"}
	u.Grant(model.RoleUser)
	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func (f fixture) category(t *testing.T, title string) *model.Category {
	t.Helper()
	c := &model.Category{Title: title}
	if err := f.categories.Save(context.Background(), c); err != nil {
		t.Fatalf("save category: %v", err)
	}
	return c
}

func (f fixture) tag(t *testing.T, title string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Title: title}
	if err := f.tags.Save(context.Background(), tag); err != nil {
		t.Fatalf("save tag: %v", err)
	}
	return tag
}

func (f fixture) event(t *testing.T, author *model.User, cat *model.Category, title, from, to string, tags ...model.Tag) *model.Event {
	t.Helper()
	e := &model.Event{
		CategoryID: &cat.ID,
		AuthorID:   author.ID,
		Title:      title,
		DateFrom:   mustDate(t, from),
		TimeFrom:   model.NewClock(9, 0, 0),
		DateTo:     mustDate(t, to),
		TimeTo:     model.NewClock(10, 0, 0),
		Tags:       tags,
	}
	if err := f.events.Save(context.Background(), e); err != nil {
		t.Fatalf("save event: %v", err)
	}
	return e
}

func mustDate(t *testing.T, raw string) model.Date {
	t.Helper()
	d, err := model.ParseDate(raw)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func eventTitles(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}
