package service

import (
	"context"
	"errors"
	"testing"

	"organizer/internal/model"
	"organizer/internal/repository"
)

func TestCategoryGuardFollowsContacts(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	contact := &model.Contact{CategoryID: &work.ID, Name: "Jan"}
	if err := s.contacts.Save(ctx, user, contact); err != nil {
		t.Fatalf("save contact: %v", err)
	}

	ok, err := s.categories.CanBeDeleted(ctx, work)
	if err != nil || ok {
		t.Fatalf("CanBeDeleted = %v, %v; want false", ok, err)
	}
	if err := s.categories.Delete(ctx, work); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("delete = %v, want ErrCategoryInUse", err)
	}
	if _, err := s.categories.Get(ctx, work.ID); err != nil {
		t.Fatalf("guarded category must survive: %v", err)
	}

	if err := s.contacts.Delete(ctx, user, contact); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	ok, err = s.categories.CanBeDeleted(ctx, work)
	if err != nil || !ok {
		t.Fatalf("CanBeDeleted = %v, %v; want true", ok, err)
	}
	if err := s.categories.Delete(ctx, work); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.categories.Get(ctx, work.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestCategoryGuardFollowsEvents(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	event := newEvent(work.ID, "Review", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0))
	if err := s.events.Save(ctx, user, event, ""); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.categories.CanBeDeleted(ctx, work); ok {
		t.Fatal("category referenced by an event reported deletable")
	}
}

func TestCategoryTitleUnique(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	s.category(t, "Work")

	err := s.categories.Save(ctx, &model.Category{Title: " Work "})
	errs, ok := model.AsFieldErrors(err)
	if !ok || !errs.Has("title") {
		t.Fatalf("expected title error, got %v", err)
	}

	home := s.category(t, "Home")
	home.Title = "Home"
	if err := s.categories.Save(ctx, home); err != nil {
		t.Fatalf("resaving own title must pass: %v", err)
	}

	err = s.categories.Save(ctx, &model.Category{Title: "W"})
	if errs, ok := model.AsFieldErrors(err); !ok || !errs.Has("title") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestTagGuard(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	event := newEvent(work.ID, "Review", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0))
	if err := s.events.Save(ctx, user, event, "urgent"); err != nil {
		t.Fatal(err)
	}
	tag := event.Tags[0]

	if err := s.tags.Delete(ctx, &tag); !errors.Is(err, ErrTagInUse) {
		t.Fatalf("delete = %v, want ErrTagInUse", err)
	}

	if err := s.events.Save(ctx, user, event, ""); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.tags.CanBeDeleted(ctx, &tag); err != nil || !ok {
		t.Fatalf("CanBeDeleted = %v, %v; want true", ok, err)
	}
	if err := s.tags.Delete(ctx, &tag); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestTagSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	tag := &model.Tag{Title: "  errands "}
	if err := s.tags.Save(ctx, tag); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.tags.Get(ctx, tag.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != tag.ID || loaded.Title != "errands" {
		t.Fatalf("loaded %+v, want id %d title %q", loaded, tag.ID, "errands")
	}

	loaded.Title = "chores"
	if err := s.tags.Save(ctx, loaded); err != nil {
		t.Fatalf("rename: %v", err)
	}
	again, err := s.tags.Get(ctx, tag.ID)
	if err != nil {
		t.Fatalf("get after rename: %v", err)
	}
	if again.Title != "chores" {
		t.Errorf("title = %q, want chores", again.Title)
	}

	if _, err := s.tags.Get(ctx, tag.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing tag = %v, want ErrNotFound", err)
	}
}

func TestParseTitles(t *testing.T) {
	got := ParseTitles(" a , b,,a, c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("ParseTitles = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseTitles = %v, want %v", got, want)
		}
	}
	if ParseTitles("  ") != nil {
		t.Error("blank input must yield no titles")
	}
}

func TestContactServiceScope(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	work := s.category(t, "Work")

	contact := &model.Contact{CategoryID: &work.ID, Name: "Jan", Email: "not-an-email"}
	err := s.contacts.Save(ctx, alice, contact)
	if errs, ok := model.AsFieldErrors(err); !ok || !errs.Has("email") {
		t.Fatalf("expected email error, got %v", err)
	}

	contact.Email = "jan@example.com"
	if err := s.contacts.Save(ctx, alice, contact); err != nil {
		t.Fatal(err)
	}
	if contact.AuthorID != alice.ID {
		t.Fatalf("author = %d, want %d", contact.AuthorID, alice.ID)
	}

	page, err := s.contacts.List(ctx, bob, repository.PageRequest{})
	if err != nil || page.Total != 0 {
		t.Fatalf("bob sees %d contacts (%v)", page.Total, err)
	}
	if _, err := s.contacts.Get(ctx, bob, contact.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bob get = %v, want ErrNotFound", err)
	}
	if err := s.contacts.Delete(ctx, bob, contact); !errors.Is(err, ErrForbidden) {
		t.Fatalf("bob delete = %v, want ErrForbidden", err)
	}
}
