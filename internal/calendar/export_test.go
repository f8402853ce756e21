package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"organizer/internal/model"
)

func TestExport(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	events := []model.Event{
		{
			ID:          7,
			Title:       "Planning",
			Description: "quarterly review",
			DateFrom:    model.NewDate(2024, time.January, 10),
			TimeFrom:    model.NewClock(9, 0, 0),
			DateTo:      model.NewDate(2024, time.January, 10),
			TimeTo:      model.NewClock(10, 30, 0),
			Category:    &model.Category{ID: 1, Title: "Work"},
			Tags:        []model.Tag{{ID: 1, Title: "urgent"}},
		},
		{
			ID:       8,
			Title:    "Trip",
			DateFrom: model.NewDate(2024, time.February, 1),
			TimeFrom: model.NewClock(8, 0, 0),
			DateTo:   model.NewDate(2024, time.February, 3),
			TimeTo:   model.NewClock(18, 0, 0),
		},
	}

	out := Export(events, warsaw, time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC))

	if !strings.Contains(out, "METHOD:PUBLISH") {
		t.Errorf("missing method:\n%s", out)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse exported calendar: %v", err)
	}
	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed))
	}

	first := parsed[0]
	if uid := first.GetProperty(ical.ComponentPropertyUniqueId); uid == nil || uid.Value != EventUID(7) {
		t.Errorf("uid = %v, want %s", uid, EventUID(7))
	}
	start, err := first.GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// 09:00 in Warsaw during winter is 08:00 UTC.
	if want := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %s, want %s", start, want)
	}
	if p := first.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Planning" {
		t.Errorf("summary = %v", p)
	}
	if got := categoryValues(first); strings.Join(got, "|") != "Work|urgent" {
		t.Errorf("categories = %q, want [Work urgent]", got)
	}
	if got := categoryValues(parsed[1]); len(got) != 0 {
		t.Errorf("event without category or tags has categories %q", got)
	}
}

func TestExportKeepsCommasInsideTitles(t *testing.T) {
	events := []model.Event{{
		ID:       1,
		Title:    "Dinner",
		DateFrom: model.NewDate(2024, time.March, 1),
		TimeFrom: model.NewClock(19, 0, 0),
		DateTo:   model.NewDate(2024, time.March, 1),
		TimeTo:   model.NewClock(21, 0, 0),
		Category: &model.Category{ID: 1, Title: "Family"},
		Tags:     []model.Tag{{ID: 1, Title: "food, drinks"}, {ID: 2, Title: "weekend"}},
	}}

	cal, err := ical.ParseCalendar(strings.NewReader(Export(events, time.UTC, time.Now())))
	if err != nil {
		t.Fatalf("parse exported calendar: %v", err)
	}
	got := categoryValues(cal.Events()[0])
	want := []string{"Family", "food, drinks", "weekend"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("categories = %q, want %q", got, want)
	}
}

// categoryValues returns the value of every CATEGORIES property of ev. The parser unescapes text.
func categoryValues(ev *ical.VEvent) []string {
	var out []string
	for _, p := range ev.GetProperties(ical.ComponentPropertyCategories) {
		out = append(out, p.Value)
	}
	return out
}

func TestEventUIDStable(t *testing.T) {
	if EventUID(1) != EventUID(1) {
		t.Fatal("uid must be deterministic")
	}
	if EventUID(1) == EventUID(2) {
		t.Fatal("uids must differ per event")
	}
}
