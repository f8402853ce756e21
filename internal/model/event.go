package model

import "time"

// Event is a dated entry in the organizer. Start and end are stored as separate date and time
// columns; the pair is validated by ValidateSchedule.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  *uint     `gorm:"index" json:"category_id" validate:"required"`
	Category    *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty" validate:"-"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id" validate:"required"`
	Author      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-" validate:"-"`
	Title       string    `gorm:"size:64;not null" json:"title" validate:"required,min=3,max=64"`
	Description string    `gorm:"type:text" json:"description" validate:"max=675"`
	TimeFrom    Clock     `gorm:"not null" json:"time_from" validate:"-"`
	DateFrom    Date      `gorm:"not null;index" json:"date_from" validate:"-"`
	TimeTo      Clock     `gorm:"not null" json:"time_to" validate:"-"`
	DateTo      Date      `gorm:"not null;index" json:"date_to" validate:"-"`
	Tags        []Tag     `gorm:"many2many:event_tags;constraint:OnDelete:CASCADE" json:"tags" validate:"-"`
}

func (Event) TableName() string { return "event" }

// Start returns the first instant of the event in loc.
func (e Event) Start(loc *time.Location) time.Time {
	return e.DateFrom.At(e.TimeFrom, loc)
}

// End returns the last instant of the event in loc.
func (e Event) End(loc *time.Location) time.Time {
	return e.DateTo.At(e.TimeTo, loc)
}

// ActiveOn reports whether day lies within [DateFrom, DateTo].
func (e Event) ActiveOn(day Date) bool {
	return !day.Before(e.DateFrom) && !day.After(e.DateTo)
}

// UpcomingOn reports whether the event starts strictly after day.
func (e Event) UpcomingOn(day Date) bool {
	return e.DateFrom.After(day)
}

// TagTitles lists the titles of the attached tags in order.
func (e Event) TagTitles() []string {
	titles := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		titles = append(titles, tag.Title)
	}
	return titles
}
