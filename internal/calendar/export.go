package calendar

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"organizer/internal/model"
)

const productID = "-//organizer//events//EN"

// EventUID returns a stable identifier for an event, derived from its id.
func EventUID(id uint) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("organizer:event:"+strconv.FormatUint(uint64(id), 10))).String() + "@organizer"
}

// Export renders events as an iCalendar feed. Wall clock times are interpreted in loc.
func Export(events []model.Event, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRTimezone(loc.String())

	for _, e := range events {
		ev := cal.AddEvent(EventUID(e.ID))
		ev.SetDtStampTime(now)
		ev.SetStartAt(e.Start(loc))
		ev.SetEndAt(e.End(loc))
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}

		// One CATEGORIES line per title: commas inside a single value are escaped as text.
		if e.Category != nil {
			ev.AddCategory(e.Category.Title)
		}
		for _, title := range e.TagTitles() {
			ev.AddCategory(title)
		}
	}

	return cal.Serialize()
}
