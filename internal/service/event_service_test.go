package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
)

func TestEventSaveRejectsEndBeforeStartSameDay(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	event := newEvent(work.ID, "Standup", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(8, 0, 0))
	err := s.events.Save(ctx, user, event, "")
	errs, ok := model.AsFieldErrors(err)
	if !ok || !errs.Has("time_to") {
		t.Fatalf("expected time_to error, got %v", err)
	}
	if event.ID != 0 {
		t.Fatal("rejected event must not be stored")
	}

	event.TimeTo = model.NewClock(10, 0, 0)
	if err := s.events.Save(ctx, user, event, ""); err != nil {
		t.Fatalf("corrected event rejected: %v", err)
	}
	if event.ID == 0 {
		t.Fatal("event not stored")
	}
}

func TestEventSaveValidation(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	tests := []struct {
		name  string
		event *model.Event
		tags  string
		field string
	}{
		{"end date before start", newEvent(work.ID, "Trip", "2024-01-10", "2024-01-09", model.NewClock(8, 0, 0), model.NewClock(20, 0, 0)), "", "date_to"},
		{"short title", newEvent(work.ID, "ab", "2024-01-10", "2024-01-10", model.NewClock(8, 0, 0), model.NewClock(9, 0, 0)), "", "title"},
		{"unknown category", newEvent(999, "Valid", "2024-01-10", "2024-01-10", model.NewClock(8, 0, 0), model.NewClock(9, 0, 0)), "", "category_id"},
		{"bad tag", newEvent(work.ID, "Valid", "2024-01-10", "2024-01-10", model.NewClock(8, 0, 0), model.NewClock(9, 0, 0)), "ok tag, x", "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.events.Save(ctx, user, tt.event, tt.tags)
			errs, ok := model.AsFieldErrors(err)
			if !ok || !errs.Has(tt.field) {
				t.Fatalf("expected error on %s, got %v", tt.field, err)
			}
		})
	}

	// Validation failures must not create tags as a side effect.
	all, err := s.tags.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("tags created by rejected save: %v", all)
	}
}

func TestEventSaveResolvesTags(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")
	existing := &model.Tag{Title: "urgent"}
	if err := s.tags.Save(ctx, existing); err != nil {
		t.Fatal(err)
	}

	event := newEvent(work.ID, "Release", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(9, 0, 0))
	if err := s.events.Save(ctx, user, event, " urgent, backend ,urgent,, "); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.events.Get(ctx, user, event.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	titles := loaded.TagTitles()
	if len(titles) != 2 {
		t.Fatalf("tags = %v", titles)
	}
	for _, tag := range loaded.Tags {
		if tag.Title == "urgent" && tag.ID != existing.ID {
			t.Errorf("existing tag duplicated")
		}
	}
}

func TestParseFilters(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	work := s.category(t, "Work")
	tag := &model.Tag{Title: "urgent"}
	if err := s.tags.Save(ctx, tag); err != nil {
		t.Fatal(err)
	}

	filter, err := s.events.ParseFilters(ctx, "1", "1")
	if err != nil {
		t.Fatal(err)
	}
	if filter.CategoryID == nil || *filter.CategoryID != work.ID || filter.TagID == nil || *filter.TagID != tag.ID {
		t.Errorf("valid ids not applied: %+v", filter)
	}

	for _, raw := range [][2]string{{"", ""}, {"abc", "-1"}, {"01", "0"}, {"42", "42"}} {
		filter, err := s.events.ParseFilters(ctx, raw[0], raw[1])
		if err != nil {
			t.Fatal(err)
		}
		if !filter.IsZero() {
			t.Errorf("ParseFilters(%q, %q) = %+v, want empty", raw[0], raw[1], filter)
		}
	}
}

func TestAvailabilityWithUnresolvedFilter(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")
	home := s.category(t, "Home")

	for _, e := range []*model.Event{
		newEvent(work.ID, "Work today", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0)),
		newEvent(home.ID, "Home today", "2024-01-10", "2024-01-10", model.NewClock(11, 0, 0), model.NewClock(12, 0, 0)),
		newEvent(home.ID, "Home later", "2024-01-20", "2024-01-20", model.NewClock(11, 0, 0), model.NewClock(12, 0, 0)),
	} {
		if err := s.events.Save(ctx, user, e, ""); err != nil {
			t.Fatal(err)
		}
	}

	day, _ := model.ParseDate("2024-01-10")
	run := func(categoryRaw string) Availability {
		t.Helper()
		filter, err := s.events.ParseFilters(ctx, categoryRaw, "")
		if err != nil {
			t.Fatal(err)
		}
		a, err := s.events.Availability(ctx, user, AvailabilityParams{Date: day, Filter: filter})
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	all := run("999")
	if all.Active.Total != 2 || all.Upcoming.Total != 1 {
		t.Errorf("unresolvable filter must be ignored: active=%d upcoming=%d", all.Active.Total, all.Upcoming.Total)
	}

	homeOnly := run("2")
	if homeOnly.Active.Total != 1 || homeOnly.Active.Items[0].Title != "Home today" {
		t.Errorf("category filter not applied: %+v", homeOnly.Active.Items)
	}
	for _, e := range append(homeOnly.Active.Items, homeOnly.Upcoming.Items...) {
		if *e.CategoryID != home.ID {
			t.Errorf("event %q has category %d", e.Title, *e.CategoryID)
		}
	}
}

func TestEventDeleteAndExport(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	work := s.category(t, "Work")

	event := newEvent(work.ID, "Planning", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0))
	if err := s.events.Save(ctx, alice, event, "q1"); err != nil {
		t.Fatal(err)
	}

	ics, err := s.events.Export(ctx, alice, repository.EventFilter{}, time.UTC, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ics, "SUMMARY:Planning") {
		t.Errorf("export missing event:\n%s", ics)
	}
	empty, err := s.events.Export(ctx, bob, repository.EventFilter{}, time.UTC, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(empty, "BEGIN:VEVENT") {
		t.Error("bob's export must not contain alice's events")
	}

	if _, err := s.events.Get(ctx, bob, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob get = %v, want ErrNotFound", err)
	}
	if err := s.events.Delete(ctx, bob, event); !errors.Is(err, ErrForbidden) {
		t.Errorf("bob delete = %v, want ErrForbidden", err)
	}
	if err := s.events.Delete(ctx, alice, event); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.events.Get(ctx, alice, event.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted event still found: %v", err)
	}
}

func TestEventSaveRollsBackNewTagsWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	failInsert := errors.New("insert refused")
	if err := s.db.Callback().Create().Before("gorm:create").Register("test:refuse_event", func(tx *gorm.DB) {
		if tx.Statement.Table == "event" {
			_ = tx.AddError(failInsert)
		}
	}); err != nil {
		t.Fatal(err)
	}

	event := newEvent(work.ID, "Release", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0))
	if err := s.events.Save(ctx, user, event, "fresh, other"); !errors.Is(err, failInsert) {
		t.Fatalf("save = %v, want %v", err, failInsert)
	}
	if event.ID != 0 {
		t.Errorf("failed event kept id %d", event.ID)
	}

	all, err := s.tags.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("tags survived the rolled back save: %v", all)
	}
}

func TestEventRoundTripsEveryField(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	event := newEvent(work.ID, "  Offsite  ", "2024-03-01", "2024-03-02", model.NewClock(8, 30, 0), model.NewClock(17, 15, 0))
	event.Description = "Quarterly planning, bring laptops."
	if err := s.events.Save(ctx, user, event, "travel, planning"); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.events.Get(ctx, user, event.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != event.ID || loaded.AuthorID != user.ID {
		t.Errorf("ids = %d/%d, want %d/%d", loaded.ID, loaded.AuthorID, event.ID, user.ID)
	}
	if loaded.CategoryID == nil || *loaded.CategoryID != work.ID {
		t.Errorf("category id = %v, want %d", loaded.CategoryID, work.ID)
	}
	if loaded.Title != "Offsite" {
		t.Errorf("title = %q, want trimmed", loaded.Title)
	}
	if loaded.Description != event.Description {
		t.Errorf("description = %q", loaded.Description)
	}
	if loaded.DateFrom.String() != "2024-03-01" || loaded.DateTo.String() != "2024-03-02" {
		t.Errorf("dates = %s..%s", loaded.DateFrom, loaded.DateTo)
	}
	if !loaded.TimeFrom.Equal(model.NewClock(8, 30, 0)) || !loaded.TimeTo.Equal(model.NewClock(17, 15, 0)) {
		t.Errorf("times = %s..%s", loaded.TimeFrom, loaded.TimeTo)
	}
	got := loaded.TagTitles()
	sort.Strings(got)
	if strings.Join(got, ",") != "planning,travel" {
		t.Errorf("tags = %v", got)
	}
}
