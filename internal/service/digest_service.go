package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"organizer/internal/model"
	"organizer/internal/repository"
)

const (
	digestActiveLimit   = 20
	digestUpcomingLimit = 5
)

// DigestService builds the HTML summary pushed to Telegram.
type DigestService struct {
	events *repository.EventRepository
}

func NewDigestService(events *repository.EventRepository) *DigestService {
	return &DigestService{events: events}
}

// DailyDigest lists today's active events and the nearest upcoming ones for user.
// now must already be in the display timezone.
func (s *DigestService) DailyDigest(ctx context.Context, user *model.User, now time.Time) (string, error) {
	today := model.DateOf(now)

	active, err := s.events.ListActive(ctx, user.ID, today, repository.EventFilter{}, repository.PageRequest{
		Number: 1, PerPage: digestActiveLimit, Sort: "date", Direction: "asc",
	})
	if err != nil {
		return "", fmt.Errorf("list active events: %w", err)
	}
	upcoming, err := s.events.ListUpcoming(ctx, user.ID, today, repository.EventFilter{}, repository.PageRequest{
		Number: 1, PerPage: digestUpcomingLimit, Sort: "date", Direction: "asc",
	})
	if err != nil {
		return "", fmt.Errorf("list upcoming events: %w", err)
	}

	var b strings.Builder
	b.WriteString("📋 <b>Daily digest</b>\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", today)

	b.WriteString("🔥 <b>Today</b>\n")
	if len(active.Items) == 0 {
		b.WriteString("  nothing scheduled\n")
	}
	for _, e := range active.Items {
		b.WriteString(formatDigestEvent(e, today))
	}
	if more := active.Total - int64(len(active.Items)); more > 0 {
		fmt.Fprintf(&b, "… and %d more\n", more)
	}

	b.WriteString("\n⏭ <b>Upcoming</b>\n")
	if len(upcoming.Items) == 0 {
		b.WriteString("  no upcoming events\n")
	}
	for _, e := range upcoming.Items {
		b.WriteString(formatDigestEvent(e, today))
	}

	return strings.TrimSpace(b.String()), nil
}

func formatDigestEvent(e model.Event, today model.Date) string {
	var sb strings.Builder

	icon := "🟢"
	if e.DateTo.Equal(today) {
		icon = "⏳"
	}
	fmt.Fprintf(&sb, "%s %s", icon, html.EscapeString(e.Title))
	if e.Category != nil {
		fmt.Fprintf(&sb, " <i>(%s)</i>", html.EscapeString(e.Category.Title))
	}

	if e.DateFrom.Equal(e.DateTo) {
		fmt.Fprintf(&sb, "\n   ⏰ %s %s–%s", e.DateFrom, e.TimeFrom, e.TimeTo)
	} else {
		fmt.Fprintf(&sb, "\n   ⏰ %s %s → %s %s", e.DateFrom, e.TimeFrom, e.DateTo, e.TimeTo)
	}
	if tags := e.TagTitles(); len(tags) > 0 {
		fmt.Fprintf(&sb, "\n   🏷 %s", html.EscapeString(strings.Join(tags, ", ")))
	}

	sb.WriteByte('\n')
	return sb.String()
}
