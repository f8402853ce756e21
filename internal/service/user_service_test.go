package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"organizer/internal/model"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)

	user, err := s.users.Register(ctx, "  Alice@Example.com ", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" || user.Password == "secret123" || !user.HasRole(model.RoleUser) || user.IsAdmin() {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := s.users.Register(ctx, "alice@example.com", "another1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate register = %v, want ErrEmailTaken", err)
	}
	_, err = s.users.Register(ctx, "nope", "123")
	errs, ok := model.AsFieldErrors(err)
	if !ok || !errs.Has("email") || !errs.Has("password") {
		t.Fatalf("expected email and password errors, got %v", err)
	}

	if _, err := s.users.Authenticate(ctx, "ALICE@example.com", "secret123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := s.users.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v", err)
	}
	if _, err := s.users.Authenticate(ctx, "ghost@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email = %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice := s.register(t, "alice@example.com")
	s.register(t, "bob@example.com")
	oldHash := alice.Password

	chat := int64(77)
	if err := s.users.Update(ctx, alice, UserUpdate{Email: "alice@example.com", TelegramChatID: &chat}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if alice.Password != oldHash || alice.TelegramChatID == nil || *alice.TelegramChatID != 77 {
		t.Fatalf("unexpected user after update: %+v", alice)
	}

	if err := s.users.Update(ctx, alice, UserUpdate{Email: "bob@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("taking bob's email = %v", err)
	}
	if alice.Email != "alice@example.com" {
		t.Fatal("failed update must not touch the user")
	}

	if err := s.users.Update(ctx, alice, UserUpdate{Email: "alice@example.com", Password: "newsecret"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.users.Authenticate(ctx, "alice@example.com", "newsecret"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUserDeletePermissions(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	admin, created, err := s.users.CreateAdmin(ctx, "root@example.com", "rootpass")
	if err != nil || !created || !admin.IsAdmin() {
		t.Fatalf("create admin: %v %v %+v", err, created, admin)
	}

	if s.users.CanManage(alice, bob) {
		t.Error("users must not manage each other")
	}
	if !s.users.CanManage(alice, alice) || !s.users.CanManage(admin, bob) {
		t.Error("self and admin management must be allowed")
	}

	if err := s.users.Delete(ctx, alice, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("alice deleting bob = %v", err)
	}
	if err := s.users.Delete(ctx, admin, bob); err != nil {
		t.Fatalf("admin deleting bob: %v", err)
	}
	if err := s.users.Delete(ctx, alice, alice); err != nil {
		t.Fatalf("self delete: %v", err)
	}
	for _, id := range []uint{alice.ID, bob.ID} {
		if _, err := s.users.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("user %d still present: %v", id, err)
		}
	}
}

func TestCreateAdminPromotesExisting(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	alice := s.register(t, "alice@example.com")

	promoted, created, err := s.users.CreateAdmin(ctx, "alice@example.com", "rotated1")
	if err != nil {
		t.Fatal(err)
	}
	if created || promoted.ID != alice.ID || !promoted.IsAdmin() {
		t.Fatalf("expected promotion of existing user, got created=%v %+v", created, promoted)
	}
	if _, err := s.users.Authenticate(ctx, "alice@example.com", "rotated1"); err != nil {
		t.Fatalf("password not rotated: %v", err)
	}
}

func TestDailyDigest(t *testing.T) {
	ctx := context.Background()
	s := newServices(t)
	user := s.register(t, "u@example.com")
	work := s.category(t, "Work")

	for _, e := range []struct {
		event *model.Event
		tags  string
	}{
		{newEvent(work.ID, "Release <v2>", "2024-01-10", "2024-01-10", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0)), "backend"},
		{newEvent(work.ID, "Conference", "2024-01-15", "2024-01-17", model.NewClock(9, 0, 0), model.NewClock(18, 0, 0)), ""},
		{newEvent(work.ID, "Old", "2023-12-01", "2023-12-01", model.NewClock(9, 0, 0), model.NewClock(10, 0, 0)), ""},
	} {
		if err := s.events.Save(ctx, user, e.event, e.tags); err != nil {
			t.Fatal(err)
		}
	}

	text, err := s.digest.DailyDigest(ctx, user, time.Date(2024, time.January, 10, 7, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"2024-01-10", "Release &lt;v2&gt;", "<i>(Work)</i>", "09:00–10:00", "backend", "Conference", "2024-01-15 09:00 → 2024-01-17 18:00"} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Old") {
		t.Errorf("past event in digest:\n%s", text)
	}
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("08:30")
	if err != nil || spec != "0 30 8 * * *" {
		t.Fatalf("spec = %q, %v", spec, err)
	}
	for _, bad := range []string{"8", "24:00", "08:60", "aa:bb"} {
		if _, err := buildDailySpec(bad); err == nil {
			t.Errorf("buildDailySpec(%q) accepted", bad)
		}
	}
}

func TestSchedulerRegistersDailyJob(t *testing.T) {
	s := NewSchedulerService(time.UTC, nil)
	id, err := s.ScheduleDaily("08:00", "digest", func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	next := s.Next(id)
	if next.IsZero() || next.Hour() != 8 || next.Minute() != 0 {
		t.Fatalf("next run = %s", next)
	}
}
